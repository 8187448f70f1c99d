package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/marketsales/internal/server"
	"github.com/dmitrijs2005/marketsales/internal/server/auth"
	"github.com/dmitrijs2005/marketsales/internal/server/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Market sales document server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newServeCmd(), newTokenCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC document service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			app, err := server.NewApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		userID   string
		validity time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if validity <= 0 {
				validity = cfg.AccessTokenValidityDuration
			}
			tok, err := auth.GenerateToken(userID, []byte(cfg.SecretKey), validity)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id the token is issued to")
	cmd.Flags().DurationVar(&validity, "valid-for", 0, "token validity, defaults to the configured one")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
