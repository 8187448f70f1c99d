// Package server wires the document server: configuration, logging, the
// PostgreSQL document repository and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/marketsales/internal/logging"
	"github.com/dmitrijs2005/marketsales/internal/server/config"
	gs "github.com/dmitrijs2005/marketsales/internal/server/grpc"
	"github.com/dmitrijs2005/marketsales/internal/server/repositories/repomanager"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	logCloser io.Closer
	db        *sql.DB
	manager   repomanager.RepositoryManager
}

// NewApp opens the log sink and the database and applies pending migrations.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, closer, err := logging.New(logging.Options{Level: c.LogLevel, File: c.LogFile})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(ctx, db); err != nil {
		db.Close()
		closer.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return &App{config: c, logger: logger, logCloser: closer, db: db, manager: manager}, nil
}

// Run serves until SIGINT, SIGTERM or ctx cancellation.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer app.close()

	app.logger.Info(ctx, "Starting app...")

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.manager.Documents(app.db), app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		return err
	}
	return nil
}

func (app *App) close() {
	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "closing database", "error", err)
	}
	app.logCloser.Close()
}
