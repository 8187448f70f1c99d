// Package scheduler runs background work of the client: named units of
// work that either fire at fixed daily slots or run once, retried with an
// exponential backoff when they ask for it.
//
// A name identifies one unit. Whatever the enqueue policy, two runs under
// the same name never overlap: a replacement waits for its predecessor to
// finish.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/marketsales/internal/clock"
	"github.com/dmitrijs2005/marketsales/internal/logging"
)

var (
	ErrStopped      = errors.New("scheduler stopped")
	ErrKindMismatch = errors.New("work name is taken by work of another kind")
)

// PeriodicPolicy decides what happens when periodic work is enqueued under
// a name that is already scheduled.
type PeriodicPolicy int

const (
	// PeriodicKeepExisting leaves the scheduled work untouched.
	PeriodicKeepExisting PeriodicPolicy = iota
	// PeriodicUpdate swaps worker and slots in place. A pending wait keeps
	// its deadline; the new slots apply from the following one.
	PeriodicUpdate
	// PeriodicReplace cancels the scheduled work and starts over.
	PeriodicReplace
)

// OncePolicy decides what happens when one-shot work is enqueued under a
// name that is already pending or running.
type OncePolicy int

const (
	OnceKeep OncePolicy = iota
	OnceReplace
	// OnceAppendOrReplace queues the new run after the running one. A run
	// that is still queued is replaced.
	OnceAppendOrReplace
)

type Options struct {
	Retry RetryPolicy
	// Location interprets slots; nil means time.Local.
	Location *time.Location
}

type Scheduler struct {
	clock  clock.Clock
	logger logging.Logger
	retry  RetryPolicy
	loc    *time.Location

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
	work    map[string]*unit
}

type unit struct {
	name     string
	periodic bool

	// guarded by Scheduler.mu
	worker  Worker
	slots   []Slot
	started bool

	// after is closed once the previous unit under the same name is done.
	after  <-chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// tail is what a unit taking over u's name has to wait for.
func (u *unit) tail() <-chan struct{} {
	if u.started {
		return u.done
	}
	return u.after
}

func New(clk clock.Clock, logger logging.Logger, opts Options) *Scheduler {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		clock:  clk,
		logger: logger.With("module", "scheduler"),
		retry:  opts.Retry.withDefaults(),
		loc:    loc,
		ctx:    ctx,
		cancel: cancel,
		work:   make(map[string]*unit),
	}
}

// EnqueuePeriodic schedules w to run at every slot.
func (s *Scheduler) EnqueuePeriodic(name string, slots []Slot, w Worker, policy PeriodicPolicy) error {
	if len(slots) == 0 {
		return fmt.Errorf("periodic work %q has no slots", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, after, err := s.lookup(name, true)
	if err != nil {
		return err
	}
	if existing != nil {
		switch policy {
		case PeriodicKeepExisting:
			return nil
		case PeriodicUpdate:
			existing.worker = w
			existing.slots = slots
			s.logger.Info(s.ctx, "periodic work updated", "work", name, "slots", fmt.Sprint(slots))
			return nil
		case PeriodicReplace:
			existing.cancel()
			after = existing.tail()
		}
	}

	s.start(&unit{name: name, periodic: true, worker: w, slots: slots, after: after})
	s.logger.Info(s.ctx, "periodic work scheduled", "work", name, "slots", fmt.Sprint(slots))
	return nil
}

// EnqueueOnce runs w once, as soon as no other run holds the name.
func (s *Scheduler) EnqueueOnce(name string, w Worker, policy OncePolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, after, err := s.lookup(name, false)
	if err != nil {
		return err
	}
	if existing != nil {
		switch policy {
		case OnceKeep:
			return nil
		case OnceReplace:
			existing.cancel()
			after = existing.tail()
		case OnceAppendOrReplace:
			if existing.started {
				after = existing.done
			} else {
				existing.cancel()
				after = existing.after
			}
		}
	}

	s.start(&unit{name: name, worker: w, after: after})
	return nil
}

// lookup returns the live unit under name, if any. A cancelled unit that
// has not finished yet is not live, but its successor must still wait for
// it; after carries that wait. Callers hold s.mu.
func (s *Scheduler) lookup(name string, periodic bool) (*unit, <-chan struct{}, error) {
	if s.stopped {
		return nil, nil, ErrStopped
	}
	u, ok := s.work[name]
	if !ok {
		return nil, nil, nil
	}
	if u.periodic != periodic {
		return nil, nil, fmt.Errorf("%w: %s", ErrKindMismatch, name)
	}
	if u.ctx.Err() != nil {
		return nil, u.tail(), nil
	}
	return u, nil, nil
}

// Cancel stops the work under name. A running worker sees its context
// cancelled.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.work[name]; ok {
		u.cancel()
	}
}

// Done returns a channel closed once the current work under name has
// finished. For an unknown name the channel is already closed.
func (s *Scheduler) Done(name string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.work[name]; ok {
		return u.done
	}
	done := make(chan struct{})
	close(done)
	return done
}

// Stop cancels all work and waits for running workers to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// start registers u and launches it. Callers hold s.mu.
func (s *Scheduler) start(u *unit) {
	u.ctx, u.cancel = context.WithCancel(s.ctx)
	u.done = make(chan struct{})
	s.work[u.name] = u

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(u.done)
		defer s.forget(u)
		defer u.cancel()

		if u.after != nil {
			select {
			case <-u.after:
			case <-u.ctx.Done():
				return
			}
		}

		s.mu.Lock()
		if u.ctx.Err() != nil {
			s.mu.Unlock()
			return
		}
		u.started = true
		s.mu.Unlock()

		if u.periodic {
			s.loop(u)
			return
		}
		s.execute(u)
	}()
}

func (s *Scheduler) forget(u *unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.work[u.name] == u {
		delete(s.work, u.name)
	}
}

// loop waits for each slot in turn and runs the worker.
func (s *Scheduler) loop(u *unit) {
	for {
		s.mu.Lock()
		slots := u.slots
		s.mu.Unlock()

		now := s.clock.Now()
		at := Next(now, slots, s.loc)
		s.logger.Debug(u.ctx, "waiting for next slot", "work", u.name, "at", at.Format(time.RFC3339))

		select {
		case <-s.clock.After(at.Sub(now)):
		case <-u.ctx.Done():
			return
		}

		s.execute(u)
		if u.ctx.Err() != nil {
			return
		}
	}
}

// execute runs the worker until it succeeds, the backoff gives up or the
// unit is cancelled.
func (s *Scheduler) execute(u *unit) {
	backoff := s.retry.backoff()
	for attempt := 1; ; attempt++ {
		s.mu.Lock()
		w := u.worker
		s.mu.Unlock()

		if w.Run(u.ctx) == Success {
			s.logger.Debug(u.ctx, "work done", "work", u.name, "attempt", attempt)
			return
		}
		if u.ctx.Err() != nil {
			return
		}

		delay, stop := backoff.Next()
		if stop {
			s.logger.Error(u.ctx, "work dropped, retries exhausted", "work", u.name, "attempts", attempt)
			return
		}
		s.logger.Warn(u.ctx, "work will be retried", "work", u.name, "attempt", attempt, "delay", delay.String())

		select {
		case <-s.clock.After(delay):
		case <-u.ctx.Done():
			return
		}
	}
}
