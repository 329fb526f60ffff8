package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/specialistvlad/shadergen/internal/config"
	"github.com/specialistvlad/shadergen/internal/ctxlog"
	"github.com/specialistvlad/shadergen/internal/publish"
	"github.com/specialistvlad/shadergen/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	loader    config.Loader
	registry  *registry.Registry
	publisher *publish.Publisher

	httpServer *http.Server

	mu sync.Mutex
	// lastErr is the result of the latest build, reported by the healthcheck.
	lastErr error
	built   bool
}

// NewApp is the constructor for the main application. Generated shaders are
// written to outW and logs to logW. It returns a fully initialized App
// instance, including its own isolated logger and registry.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.ValidateRegistry(ctx); err != nil {
		// A unit with a broken config struct is a programmer error.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   loader,
		registry: reg,
	}
	if cfg.PublishURL != "" {
		p, err := publish.New(publish.Options{
			URL:                cfg.PublishURL,
			Namespace:          cfg.PublishNamespace,
			Timeout:            cfg.PublishTimeout,
			InsecureSkipVerify: cfg.PublishInsecure,
		})
		if err != nil {
			// NewConfig rejects unusable URLs.
			panic(err)
		}
		a.publisher = p
	}
	return a
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

func (a *App) setBuildResult(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastErr, a.built = err, true
}

func (a *App) buildResult() (built bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.built, a.lastErr
}
