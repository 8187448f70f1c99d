package cli

import (
	"context"

	"github.com/dmitrijs2005/marketsales/internal/client/config"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the client command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "client",
		Short:         "Market sales client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newBootCmd(),
		newPushCmd(),
		newPullCmd(),
		newImportCmd(),
		newTransitionsCmd(),
		newScheduleCmd(),
		newEventCmd(),
		newSaleCmd(),
		newRefundCmd(),
	)
	return root
}

// withApp runs fn with an App built from the command's flags and closes
// it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	app, err := NewApp(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(cmd.Context(), app)
}
