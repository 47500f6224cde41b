package app

import (
	"context"
	"fmt"
	"os"

	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/Open-EO/openeo-graph-engine/internal/ctxlog"
)

// Run executes the main application logic: load the graph document, bind
// parameters, then validate or evaluate depending on configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer(ctx)
	defer a.closeHealthCheckServer(ctx)

	if a.config.ProcessesPath != "" {
		if err := a.loadUserDefined(ctx); err != nil {
			return err
		}
	}

	doc, err := os.ReadFile(a.config.GraphPath)
	if err != nil {
		return fmt.Errorf("failed to read process graph %s: %w", a.config.GraphPath, err)
	}

	if a.config.ValidateOnly {
		a.logger.Debug("Validating process graph...", "path", a.config.GraphPath)
		if errs := a.engine.Validate(ctx, doc); len(errs) > 0 {
			return errs
		}
		fmt.Fprintln(a.outW, "Process graph is valid.")
		return nil
	}

	params, err := ParseParams(a.config.Params)
	if err != nil {
		return err
	}

	a.logger.Info("Starting process graph evaluation.", "path", a.config.GraphPath)
	result, err := a.engine.Evaluate(ctx, doc, params)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	a.logger.Info("Evaluation finished.")

	out, err := ctyjson.Marshal(result, result.Type())
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(a.outW, string(out))

	a.logger.Debug("App.Run method finished.")
	return nil
}
