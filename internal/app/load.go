package app

import (
	"context"
	"fmt"
	"os"

	"github.com/Open-EO/openeo-graph-engine/internal/ctxlog"
	"github.com/Open-EO/openeo-graph-engine/internal/fsutil"
)

// localOwner is the owner key for user-defined processes loaded from disk.
const localOwner = "local"

// loadUserDefined walks the processes path for .json files and registers
// each as a user-defined process. Built-in manifests living in the same
// tree are .hcl files and are loaded separately.
func (a *App) loadUserDefined(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	filePaths, err := fsutil.FindFilesByExtension(a.config.ProcessesPath, ".json")
	if err != nil {
		return fmt.Errorf("failed to walk processes directory %s: %w", a.config.ProcessesPath, err)
	}
	if len(filePaths) == 0 {
		logger.Debug("No user-defined process files found.", "path", a.config.ProcessesPath)
		return nil
	}

	for _, filePath := range filePaths {
		doc, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read user-defined process file %s: %w", filePath, err)
		}
		proc, err := a.registry.PutUserDefined(ctx, localOwner, doc)
		if err != nil {
			return fmt.Errorf("invalid user-defined process file %s: %w", filePath, err)
		}
		logger.Debug("User-defined process registered.", "id", proc.Spec().ID, "file", filePath)
	}

	logger.Info("User-defined processes loaded.", "count", len(filePaths))
	return nil
}
