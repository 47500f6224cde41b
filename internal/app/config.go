package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath     string // process graph JSON document
	ProcessesPath string // hcl manifests + user-defined process JSON files

	// Params is a raw JSON object binding the graph's from_argument
	// references, e.g. `{"nir": 0.5, "red": 0.2}`. Empty means no bindings.
	Params string

	ValidateOnly bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	WorkerCount     int
	MaxDepth        int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
