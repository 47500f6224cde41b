package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Open-EO/openeo-graph-engine/internal/ctxlog"
	"github.com/Open-EO/openeo-graph-engine/internal/engine"
	"github.com/Open-EO/openeo-graph-engine/internal/memstore"
	"github.com/Open-EO/openeo-graph-engine/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	registry   *registry.Registry
	engine     *engine.Engine
	config     *Config
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry and
// engine. Startup problems that indicate a broken installation (unparsable
// manifests, a manifest/handler mismatch) panic rather than limp along.
func NewApp(outW io.Writer, config *Config, modules ...registry.Module) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New(memstore.New())
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if config.ProcessesPath != "" {
		if err := reg.LoadManifests(ctx, config.ProcessesPath); err != nil {
			panic(fmt.Errorf("failed to load process manifests: %w", err))
		}
	}

	// A mismatch between a manifest and its compiled handler is a
	// programmer error, so we panic.
	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	eng := engine.New(reg,
		engine.WithWorkers(config.WorkerCount),
		engine.WithMaxDepth(config.MaxDepth),
	)

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		engine:   eng,
		config:   config,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Engine returns the application's engine. This is primarily for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}
