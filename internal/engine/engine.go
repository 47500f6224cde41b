// Package engine is the public entry point tying the pipeline together:
// decode, structural validation, dependency analysis, then concurrent
// evaluation against a registry snapshot taken when the run starts.
package engine

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/Open-EO/openeo-graph-engine/internal/dag"
	"github.com/Open-EO/openeo-graph-engine/internal/executor"
	"github.com/Open-EO/openeo-graph-engine/internal/pgraph"
	"github.com/Open-EO/openeo-graph-engine/internal/registry"
)

// Engine validates and evaluates process graph documents. It is safe for
// concurrent use; each evaluation pins its own registry snapshot, so
// processes registered or removed mid-run are invisible to that run.
type Engine struct {
	reg      *registry.Registry
	workers  int
	maxDepth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the evaluation worker pool size.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithMaxDepth sets the user-defined process recursion limit.
func WithMaxDepth(n int) Option {
	return func(e *Engine) { e.maxDepth = n }
}

// New creates an Engine over a process registry.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		reg:      reg,
		workers:  executor.DefaultWorkers,
		maxDepth: executor.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate checks a process graph document without evaluating anything:
// decoding, result node cardinality, reference integrity, cycles, and
// process resolvability against a fresh registry snapshot. All failures
// accumulate into one list so the submitter sees everything at once.
func (e *Engine) Validate(ctx context.Context, doc []byte) pgraph.ErrorList {
	graph, errs := e.decode(doc)
	if graph == nil {
		return errs
	}

	// Cycle detection needs resolvable references; with a dangling one it
	// would only repeat the reference errors already collected. Other
	// structural failures (malformed nodes, result cardinality) leave the
	// edge set intact, so a co-present cycle is still reported.
	dangling := false
	for _, verr := range errs {
		if verr.Kind == pgraph.KindDanglingReference {
			dangling = true
			break
		}
	}
	if !dangling {
		if _, err := dag.Build(graph); err != nil {
			errs = append(errs, pgraph.AsList(err)...)
		}
	}

	snap, err := e.reg.Snapshot(ctx)
	if err != nil {
		return append(errs, pgraph.AsList(err)...)
	}
	for _, id := range graph.SortedIDs() {
		node := graph.Nodes[id]
		if node.ProcessID == "" {
			continue
		}
		if _, ok := snap.Lookup(node.ProcessID); !ok {
			errs = append(errs, &pgraph.Error{
				Kind:    pgraph.KindUnknownProcess,
				Node:    id,
				Message: "no process with id '" + node.ProcessID + "' is registered",
			})
		}
	}
	return errs
}

// Evaluate validates and then runs a process graph document, returning the
// output of its result node. params binds the document's from_argument
// references. Validation failures are returned before any process runs.
func (e *Engine) Evaluate(ctx context.Context, doc []byte, params map[string]cty.Value) (cty.Value, error) {
	graph, errs := e.decode(doc)
	if err := errs.ErrOrNil(); err != nil {
		return cty.NilVal, err
	}

	snap, err := e.reg.Snapshot(ctx)
	if err != nil {
		return cty.NilVal, err
	}
	exec := executor.New(snap,
		executor.WithWorkers(e.workers),
		executor.WithMaxDepth(e.maxDepth),
	)
	return exec.Run(ctx, graph, params)
}

func (e *Engine) decode(doc []byte) (*pgraph.Graph, pgraph.ErrorList) {
	graph, errs := pgraph.Decode(doc)
	if graph == nil {
		return nil, errs
	}
	errs = append(errs, graph.Validate()...)
	return graph, errs
}
