package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/marketsales/internal/client/identity"
	"github.com/dmitrijs2005/marketsales/internal/client/models"
	"github.com/dmitrijs2005/marketsales/internal/common"
	"github.com/dmitrijs2005/marketsales/internal/logging"
)

// BootState is the progress of the boot sequence as shown to the user. The
// set of states is closed: Idle, InProgress, Ready and Failed.
type BootState interface {
	bootState()
}

type (
	Idle       struct{}
	InProgress struct{ Message string }
	Ready      struct{}
	Failed     struct{ Message string }
)

func (Idle) bootState()       {}
func (InProgress) bootState() {}
func (Ready) bootState()      {}
func (Failed) bootState()     {}

// TicketObserver is the part of the record store the boot sequence needs.
type TicketObserver interface {
	ObserveTickets(ctx context.Context, userID string) <-chan []models.Ticket
}

// Boot runs the startup reconciliation: a cold import when the user has no
// local tickets, otherwise push then pull; event transitions in both cases.
type Boot struct {
	identity identity.Provider
	tickets  TicketObserver
	engine   Reconciler
	logger   logging.Logger
}

func NewBoot(id identity.Provider, tickets TicketObserver, engine Reconciler, logger logging.Logger) *Boot {
	return &Boot{identity: id, tickets: tickets, engine: engine, logger: logger.With("module", "boot")}
}

// Run starts the sequence and returns its progress. The channel ends with
// Ready or a single Failed and is then closed. Once ctx is cancelled
// nothing more is sent; records already stored stay stored.
func (b *Boot) Run(ctx context.Context) <-chan BootState {
	out := make(chan BootState)
	go func() {
		defer close(out)
		b.run(ctx, out)
	}()
	return out
}

func (b *Boot) run(ctx context.Context, out chan<- BootState) {
	emit := func(s BootState) bool {
		if ctx.Err() != nil {
			return false
		}
		select {
		case out <- s:
			return true
		case <-ctx.Done():
			return false
		}
	}
	fail := func(step string, err error) {
		if ctx.Err() != nil {
			return
		}
		b.logger.Error(ctx, "boot failed", "step", step, "error", err)
		emit(Failed{Message: failureMessage(step, err)})
	}

	if !emit(InProgress{Message: "Checking session"}) {
		return
	}
	userID, ok := b.identity.CurrentUser()
	if !ok {
		fail("session", common.ErrNoUser)
		return
	}

	if !emit(InProgress{Message: "Checking local data"}) {
		return
	}
	empty, err := b.localEmpty(ctx, userID)
	if err != nil {
		fail("local data", err)
		return
	}

	if empty {
		if !emit(InProgress{Message: "Importing your data"}) {
			return
		}
		if _, err := b.engine.ColdStartImport(ctx, userID); err != nil {
			fail("import", err)
			return
		}
	} else {
		if !emit(InProgress{Message: "Sending pending changes"}) {
			return
		}
		if _, err := b.engine.PushPendingChanges(ctx, userID); err != nil {
			fail("push", err)
			return
		}
		if !emit(InProgress{Message: "Fetching remote changes"}) {
			return
		}
		if _, err := b.engine.PullSelective(ctx, userID); err != nil {
			fail("pull", err)
			return
		}
	}

	if !emit(InProgress{Message: "Updating event statuses"}) {
		return
	}
	if _, err := b.engine.ApplyAutomaticStateTransitions(ctx, userID); err != nil {
		fail("transitions", err)
		return
	}

	emit(Ready{})
}

var errStoreClosed = errors.New("local store stopped reporting tickets")

// localEmpty waits for the first emission of the ticket observer.
func (b *Boot) localEmpty(ctx context.Context, userID string) (bool, error) {
	obsCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	select {
	case list, ok := <-b.tickets.ObserveTickets(obsCtx, userID):
		if !ok {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			return false, errStoreClosed
		}
		return len(list) == 0, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func failureMessage(step string, err error) string {
	switch {
	case errors.Is(err, common.ErrNoUser):
		return "No user is signed in"
	case errors.Is(err, common.ErrUnauthorized):
		return "The server did not accept your credentials"
	case errors.Is(err, common.ErrUnavailable):
		return "The server is unreachable, try again later"
	case errors.Is(err, errStoreClosed):
		return "Local storage is unavailable"
	}
	switch step {
	case "import":
		return "Could not import your data"
	case "push":
		return "Could not save pending changes"
	case "pull":
		return "Could not fetch remote changes"
	case "transitions":
		return "Could not update event statuses"
	default:
		return "Startup failed"
	}
}
