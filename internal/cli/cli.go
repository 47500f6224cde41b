package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/Open-EO/openeo-graph-engine/internal/app"
	"github.com/Open-EO/openeo-graph-engine/internal/executor"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("openeo-graph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
openeo-graph - An openEO process graph validator and evaluator.

Usage:
  openeo-graph [options] [GRAPH_PATH]

Arguments:
  GRAPH_PATH
    Path to a process graph JSON document.

Options:
`)
		flagSet.PrintDefaults()
	}

	graphFlag := flagSet.String("graph", "", "Path to the process graph JSON document.")
	gFlag := flagSet.String("g", "", "Path to the process graph JSON document (shorthand).")
	paramsFlag := flagSet.String("params", "", "JSON object binding the graph's from_argument parameters.")
	validateFlag := flagSet.Bool("validate", false, "Validate the graph without evaluating it.")
	processesPathFlag := flagSet.String("processes-path", "processes", "Path to the directory containing process definitions.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", executor.DefaultWorkers, "Number of concurrent workers for the evaluator.")
	maxDepthFlag := flagSet.Int("max-depth", executor.DefaultMaxDepth, "Maximum nesting depth for user-defined process evaluation.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *graphFlag != "" {
		path = *graphFlag
	} else if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 1 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must be at least 1"}
	}
	if *maxDepthFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid max-depth: must not be negative"}
	}

	config, err := app.NewConfig(app.Config{
		GraphPath:       path,
		ProcessesPath:   *processesPathFlag,
		Params:          *paramsFlag,
		ValidateOnly:    *validateFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		WorkerCount:     *workersFlag,
		MaxDepth:        *maxDepthFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
