package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/marketsales/internal/client/scheduler"
	"github.com/spf13/cobra"
)

// Unique work names of the schedule daemon.
const (
	workTransitions    = "event-transitions"
	workTransitionsNow = "event-transitions-now"
	workSync           = "sync"
)

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run scheduled work until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				return app.Schedule(ctx)
			})
		},
	}
}

// Schedule runs event transitions at the configured daily slots plus once
// right away, and a sync each time the remote becomes reachable. It returns
// once ctx is done and every worker has stopped.
func (app *App) Schedule(ctx context.Context) error {
	c := app.config
	slots, err := scheduler.ParseSlots(c.ScheduleSlots)
	if err != nil {
		return err
	}

	sched := scheduler.New(app.clock, app.logger, scheduler.Options{
		Retry: scheduler.RetryPolicy{Base: c.RetryBase, Cap: c.RetryCap, MaxRetries: uint64(c.RetryMax)},
	})
	defer sched.Stop()

	transitions := scheduler.NewTransitionWorker(app.session, app.engine, app.logger)
	if err := sched.EnqueuePeriodic(workTransitions, slots, transitions, scheduler.PeriodicUpdate); err != nil {
		return err
	}
	if err := sched.EnqueueOnce(workTransitionsNow, transitions, scheduler.OnceAppendOrReplace); err != nil {
		return err
	}

	syncer := scheduler.NewSyncWorker(app.session, app.engine, app.logger)
	app.logger.Info(ctx, "schedule started", "slots", c.ScheduleSlots)
	app.watchRemote(ctx, c.OnlineCheckInterval, func() {
		if err := sched.EnqueueOnce(workSync, syncer, scheduler.OnceKeep); err != nil {
			app.logger.Warn(ctx, "could not enqueue sync", "error", err)
		}
	})

	app.logger.Info(context.Background(), "schedule stopping")
	return nil
}
