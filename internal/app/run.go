package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/shadergen/internal/ctxlog"
)

// Run executes the main application logic based on the app's configuration.
// In watch mode it keeps rebuilding until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	a.healthCheckServer(ctx)
	defer a.closeHealthCheckServer(ctx)
	if a.publisher != nil {
		defer a.publisher.Close()
	}

	if a.config.MigratePath != "" {
		return a.migrate(ctx)
	}

	err := a.build(ctx)
	a.setBuildResult(err)
	if !a.config.Watch {
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		a.logger.Debug("App.Run method finished.")
		return nil
	}
	if err != nil {
		a.logger.Error("Build failed, waiting for changes.", "error", err)
	}
	return a.watch(ctx)
}
