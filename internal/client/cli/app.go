package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/marketsales/internal/client/client"
	"github.com/dmitrijs2005/marketsales/internal/client/config"
	"github.com/dmitrijs2005/marketsales/internal/client/draftcache"
	"github.com/dmitrijs2005/marketsales/internal/client/identity"
	"github.com/dmitrijs2005/marketsales/internal/client/remote"
	"github.com/dmitrijs2005/marketsales/internal/client/services"
	"github.com/dmitrijs2005/marketsales/internal/client/store"
	"github.com/dmitrijs2005/marketsales/internal/clock"
	"github.com/dmitrijs2005/marketsales/internal/filex"
	"github.com/dmitrijs2005/marketsales/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App holds everything a command needs.
type App struct {
	config  *config.Config
	logger  logging.Logger
	closers []io.Closer

	clock   clock.Clock
	db      *sql.DB
	store   *store.Store
	remote  remote.Store
	session *identity.Session
	drafts  *draftcache.Cache
	engine  services.Reconciler
	commits services.CommitService
	out     io.Writer

	modeMu sync.Mutex
	mode   Mode
}

// openRemote builds the remote backend selected by the configuration.
// Tests replace it.
var openRemote = newRemote

func newRemote(ctx context.Context, c *config.Config) (remote.Store, io.Closer, error) {
	switch c.Remote {
	case config.RemoteGRPC:
		rc, err := client.NewGRPCClient(c.ServerAddr, c.AccessToken, c.RequestTimeout)
		if err != nil {
			return nil, nil, err
		}
		return rc, rc, nil
	case config.RemoteS3:
		rs, err := client.NewS3Store(ctx, client.S3Options{
			Bucket:    c.S3.Bucket,
			Region:    c.S3.Region,
			Endpoint:  c.S3.Endpoint,
			AccessKey: c.S3.AccessKey,
			SecretKey: c.S3.SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return rs, nil, nil
	case config.RemoteMemory:
		return remote.NewMemoryStore(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown remote backend %q", c.Remote)
}

// sessionUser picks the acting user: the subject of the access token when
// there is one, the configured user id otherwise.
func sessionUser(c *config.Config) (string, error) {
	if c.AccessToken != "" {
		return identity.UserFromToken(c.AccessToken)
	}
	return c.UserID, nil
}

func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	logger, logCloser, err := logging.New(logging.Options{Level: c.LogLevel, File: c.LogFile})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	app := &App{config: c, logger: logger, clock: clock.Real(), out: out, mode: ModeOffline}
	app.closers = append(app.closers, logCloser)

	if err := app.init(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	userID, err := sessionUser(c)
	if err != nil {
		return fmt.Errorf("access token: %w", err)
	}
	app.session = identity.NewSession(userID)

	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return err
	}
	app.db, err = client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	app.closers = append(app.closers, app.db)
	app.store = store.New(app.db, app.logger)

	rs, closer, err := openRemote(ctx, c)
	if err != nil {
		return fmt.Errorf("remote init error: %w", err)
	}
	app.remote = rs
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	app.drafts = draftcache.New()
	app.engine = services.NewReconcileService(app.store, app.remote, app.clock, app.logger, services.ReconcileOptions{
		PullWindow:        c.PullWindow,
		ImportConcurrency: c.ImportConcurrency,
	})
	app.commits = services.NewCommitService(app.store, app.drafts, app.clock, app.logger)
	return nil
}

// Close releases resources in reverse order of acquisition.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}

func (app *App) user() (string, error) {
	return identity.Require(app.session)
}

func (app *App) printf(format string, args ...any) {
	fmt.Fprintf(app.out, format, args...)
}
