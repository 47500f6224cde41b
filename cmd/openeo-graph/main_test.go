package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGraph(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return shouldExit=true.
	out := &bytes.Buffer{}
	err := run(out, []string{"-h"})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_NoGraphPathPrintsUsage(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, nil)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// An unparsable manifest in the processes path panics during app
	// startup; run must recover it into an error.
	graphPath := writeGraph(t, `{"r": {"process_id": "sum", "arguments": {"data": [1]}, "result": true}}`)

	processesDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(processesDir, "broken.hcl"), []byte(`
process "broken" {
  lifecycle {
`), 0o600))

	out := &bytes.Buffer{}
	err := run(out, []string{"-processes-path", processesDir, "-log-level", "error", graphPath})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "application startup panicked")
}

func TestRun_EvaluatesGraph(t *testing.T) {
	t.Parallel()

	graphPath := writeGraph(t, `{
		"twice": {"process_id": "product", "arguments": {"data": [2, {"from_argument": "x"}]}, "result": true}
	}`)

	out := &bytes.Buffer{}
	err := run(out, []string{
		"-processes-path", "../../processes",
		"-params", `{"x": 21}`,
		"-log-level", "error",
		"-log-format", "text",
		graphPath,
	})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "42")
}

func TestRun_ValidateOnly(t *testing.T) {
	t.Parallel()

	graphPath := writeGraph(t, `{
		"r": {"process_id": "sum", "arguments": {"data": [1, 2]}, "result": true}
	}`)

	out := &bytes.Buffer{}
	err := run(out, []string{
		"-processes-path", "../../processes",
		"-validate",
		"-log-level", "error",
		graphPath,
	})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "valid")
}

func TestRun_InvalidFlagValue(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, []string{"-log-level", "loud", "graph.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log-level")
}
