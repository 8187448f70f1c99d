package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/marketsales/internal/client/services"
	"github.com/spf13/cobra"
)

func newBootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "boot",
		Short: "Run the startup reconciliation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *App) error {
				return app.Boot(ctx)
			})
		},
	}
}

// Boot runs the boot sequence and prints its progress. It fails when the
// sequence ends in Failed or stops without reaching Ready.
func (app *App) Boot(ctx context.Context) error {
	boot := services.NewBoot(app.session, app.store, app.engine, app.logger)

	var last services.BootState = services.Idle{}
	for state := range boot.Run(ctx) {
		renderBootState(app.out, state)
		last = state
	}

	switch s := last.(type) {
	case services.Ready:
		return nil
	case services.Failed:
		return fmt.Errorf("boot failed: %s", s.Message)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.New("boot stopped before finishing")
}

func renderBootState(w io.Writer, state services.BootState) {
	switch s := state.(type) {
	case services.Idle:
		fmt.Fprintln(w, "idle")
	case services.InProgress:
		fmt.Fprintf(w, "... %s\n", s.Message)
	case services.Ready:
		fmt.Fprintln(w, "ready")
	case services.Failed:
		fmt.Fprintf(w, "failed: %s\n", s.Message)
	}
}
