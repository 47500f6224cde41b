// Package registry provides the central lookup table for available processes.
//
// The Registry is responsible for storing mappings between process
// identifiers used in graph documents (e.g., "sum") and the definitions and
// compiled Go functions that implement them. Built-in processes are declared
// by HCL manifests shipped next to their Go handlers and registered at
// process-wide startup; they are immutable thereafter. User-defined
// processes, each a stored process graph plus JSON Schema parameter
// declarations, may be added, updated, or removed between evaluations
// through an opaque owner key.
//
// During startup, the registry is populated and then validated to ensure
// that the Go code and the public-facing manifests are perfectly in sync,
// preventing a wide class of runtime errors.
//
// An evaluation never reads the live registry: it takes a Snapshot at start
// and resolves every lookup against that frozen view, so a definition can
// not mutate mid-flight under a running graph.
package registry
