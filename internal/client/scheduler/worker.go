package scheduler

import (
	"context"

	"github.com/dmitrijs2005/marketsales/internal/client/identity"
	"github.com/dmitrijs2005/marketsales/internal/client/services"
	"github.com/dmitrijs2005/marketsales/internal/logging"
)

// Result tells the scheduler what to do after a worker run.
type Result int

const (
	Success Result = iota
	Retry
)

func (r Result) String() string {
	if r == Retry {
		return "retry"
	}
	return "success"
}

type Worker interface {
	Run(ctx context.Context) Result
}

// WorkerFunc adapts a function to Worker.
type WorkerFunc func(ctx context.Context) Result

func (f WorkerFunc) Run(ctx context.Context) Result { return f(ctx) }

// Transitioner advances time-driven event statuses for a user.
type Transitioner interface {
	ApplyAutomaticStateTransitions(ctx context.Context, userID string) (int, error)
}

// TransitionWorker applies automatic event transitions for whoever is
// signed in. With nobody signed in there is nothing to do.
type TransitionWorker struct {
	identity identity.Provider
	engine   Transitioner
	logger   logging.Logger
}

func NewTransitionWorker(id identity.Provider, engine Transitioner, logger logging.Logger) *TransitionWorker {
	return &TransitionWorker{identity: id, engine: engine, logger: logger.With("module", "transition-worker")}
}

func (w *TransitionWorker) Run(ctx context.Context) Result {
	userID, ok := w.identity.CurrentUser()
	if !ok || !identity.IsReal(userID) {
		w.logger.Debug(ctx, "no user signed in, skipping transitions")
		return Success
	}

	n, err := w.engine.ApplyAutomaticStateTransitions(ctx, userID)
	if err != nil {
		w.logger.Warn(ctx, "event transitions failed", "user", userID, "error", err)
		return Retry
	}
	w.logger.Info(ctx, "event transitions applied", "user", userID, "changed", n)
	return Success
}

// Syncer exchanges pending and remote changes for a user.
type Syncer interface {
	PushPendingChanges(ctx context.Context, userID string) (services.PushReport, error)
	PullSelective(ctx context.Context, userID string) (services.PullReport, error)
}

// SyncWorker pushes then pulls for whoever is signed in. Records that
// fail to push stay pending for the next run and do not trigger a retry.
type SyncWorker struct {
	identity identity.Provider
	engine   Syncer
	logger   logging.Logger
}

func NewSyncWorker(id identity.Provider, engine Syncer, logger logging.Logger) *SyncWorker {
	return &SyncWorker{identity: id, engine: engine, logger: logger.With("module", "sync-worker")}
}

func (w *SyncWorker) Run(ctx context.Context) Result {
	userID, ok := w.identity.CurrentUser()
	if !ok {
		return Success
	}

	if _, err := w.engine.PushPendingChanges(ctx, userID); err != nil {
		w.logger.Warn(ctx, "push failed", "user", userID, "error", err)
		return Retry
	}
	if _, err := w.engine.PullSelective(ctx, userID); err != nil {
		w.logger.Warn(ctx, "pull failed", "user", userID, "error", err)
		return Retry
	}
	return Success
}
