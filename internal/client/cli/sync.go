package cli

import (
	"context"

	"github.com/dmitrijs2005/marketsales/internal/client/services"
	"github.com/spf13/cobra"
)

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Send pending local changes to the remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				user, err := app.user()
				if err != nil {
					return err
				}
				r, err := app.engine.PushPendingChanges(ctx, user)
				app.printf("pushed %d, failed %d, stale %d\n", r.Pushed, r.Failed, r.Stale)
				return err
			})
		},
	}
}

func pullLike(use, short string, run func(services.Reconciler, context.Context, string) (services.PullReport, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				user, err := app.user()
				if err != nil {
					return err
				}
				r, err := run(app.engine, ctx, user)
				if err != nil {
					return err
				}
				app.printf("events %d, tickets %d, lines %d, skipped %d\n", r.Events, r.Tickets, r.Lines, r.Malformed)
				return nil
			})
		},
	}
}

func newPullCmd() *cobra.Command {
	return pullLike("pull", "Fetch remote changes since the last pull", services.Reconciler.PullSelective)
}

func newImportCmd() *cobra.Command {
	return pullLike("import", "Import everything the remote holds for the user", services.Reconciler.ColdStartImport)
}

func newTransitionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transitions",
		Short: "Advance event statuses that depend on time",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				user, err := app.user()
				if err != nil {
					return err
				}
				n, err := app.engine.ApplyAutomaticStateTransitions(ctx, user)
				if err != nil {
					return err
				}
				app.printf("%d events updated\n", n)
				return nil
			})
		},
	}
}
