package cli

import (
	"context"
	"time"
)

func (app *App) setMode(ctx context.Context, mode Mode) bool {
	app.modeMu.Lock()
	defer app.modeMu.Unlock()
	if app.mode == mode {
		return false
	}
	app.mode = mode
	app.logger.Info(ctx, "switched mode", "mode", string(mode))
	return true
}

func (app *App) Mode() Mode {
	app.modeMu.Lock()
	defer app.modeMu.Unlock()
	return app.mode
}

// watchRemote probes the remote every interval and tracks the online mode.
// onOnline runs each time the remote becomes reachable again.
func (app *App) watchRemote(ctx context.Context, interval time.Duration, onOnline func()) {
	probe := func() {
		pctx, cancel := context.WithTimeout(ctx, app.config.RequestTimeout)
		err := app.remote.Ping(pctx)
		cancel()

		if err != nil {
			if app.setMode(ctx, ModeOffline) {
				app.logger.Warn(ctx, "remote unreachable", "error", err)
			}
			return
		}
		if app.setMode(ctx, ModeOnline) && onOnline != nil {
			onOnline()
		}
	}

	probe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probe()
		case <-ctx.Done():
			return
		}
	}
}
