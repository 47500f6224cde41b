// Package executor evaluates a validated process graph with a bounded worker
// pool. Nodes become ready when their last dependency completes, workers pick
// ready nodes off a channel, and a failure cancels the shared context and
// transitively skips everything downstream of the failed node. A node is
// never dispatched twice and its output is recorded exactly once.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/Open-EO/openeo-graph-engine/internal/ctxlog"
	"github.com/Open-EO/openeo-graph-engine/internal/dag"
	"github.com/Open-EO/openeo-graph-engine/internal/pgraph"
	"github.com/Open-EO/openeo-graph-engine/internal/registry"
	"github.com/Open-EO/openeo-graph-engine/internal/schema"
)

const (
	// DefaultWorkers is the worker pool size used when none is configured.
	DefaultWorkers = 4
	// DefaultMaxDepth is the sub-evaluation depth limit used when none is
	// configured. Depth 0 is the top-level graph, each user-defined process
	// invocation adds one.
	DefaultMaxDepth = 16
)

// Executor runs process graphs against a fixed registry snapshot. It is
// stateless between evaluations and safe for concurrent use.
type Executor struct {
	snap     *registry.Snapshot
	workers  int
	maxDepth int
}

// Option configures an Executor.
type Option func(*Executor)

// WithWorkers sets the worker pool size. Values below 1 are coerced to 1.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// WithMaxDepth sets the maximum sub-evaluation depth for user-defined
// process chains.
func WithMaxDepth(n int) Option {
	return func(e *Executor) {
		if n < 0 {
			n = 0
		}
		e.maxDepth = n
	}
}

// New creates an Executor over a registry snapshot. The snapshot pins the
// set of resolvable processes for every evaluation run through this
// executor, so concurrent registry mutations cannot be observed mid-run.
func New(snap *registry.Snapshot, opts ...Option) *Executor {
	e := &Executor{
		snap:     snap,
		workers:  DefaultWorkers,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run evaluates a process graph and returns the output of its result node.
// params binds the graph's from_argument references; declared defaults for
// user-defined process parameters are applied by the binder before the
// sub-graph runs, so params here only needs the caller-supplied values.
func (e *Executor) Run(ctx context.Context, src *pgraph.Graph, params map[string]cty.Value) (cty.Value, error) {
	return e.evaluate(ctx, src, params, 0)
}

// subEvaluator re-enters the executor one recursion frame deeper. It is
// handed to user-defined processes so their embedded graph runs with the
// same snapshot, pool and depth accounting as the top-level graph.
type subEvaluator struct {
	exec  *Executor
	depth int
}

func (s subEvaluator) Evaluate(ctx context.Context, g *pgraph.Graph, params map[string]cty.Value) (cty.Value, error) {
	return s.exec.evaluate(ctx, g, params, s.depth)
}

func (e *Executor) evaluate(ctx context.Context, src *pgraph.Graph, params map[string]cty.Value, depth int) (cty.Value, error) {
	if depth > e.maxDepth {
		return cty.NilVal, &pgraph.Error{
			Kind:    pgraph.KindRecursionLimit,
			Message: fmt.Sprintf("user-defined process nesting exceeds the depth limit of %d", e.maxDepth),
		}
	}

	// Structural integrity is re-checked per frame: sub-graphs of
	// user-defined processes arrive here without passing through the
	// engine's front door.
	if errs := src.Validate(); len(errs) > 0 {
		return cty.NilVal, errs
	}
	graph, err := dag.Build(src)
	if err != nil {
		return cty.NilVal, err
	}
	if errs := e.checkProcesses(src); len(errs) > 0 {
		return cty.NilVal, errs
	}

	logger := ctxlog.FromContext(ctx).With("depth", depth, "nodes", len(graph.Nodes))
	logger.Debug("Starting graph evaluation")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(len(graph.Nodes))

	ectx := newContext(params)
	readyChan := make(chan *dag.Node, len(graph.Nodes))
	for _, id := range graph.TopoOrder() {
		if node := graph.Nodes[id]; node.DepCount() == 0 {
			readyChan <- node
		}
	}

	workers := e.workers
	if workers > len(graph.Nodes) {
		workers = len(graph.Nodes)
	}
	for i := 0; i < workers; i++ {
		go e.worker(runCtx, i, graph, ectx, readyChan, cancel, &wg, depth)
	}

	wg.Wait()
	close(readyChan)

	result := graph.Nodes[src.Result]
	if result.GetState() == dag.Done {
		logger.Debug("Graph evaluation finished", "result_node", result.ID)
		return result.Output, nil
	}
	return cty.NilVal, e.rootCause(ctx, graph)
}

// checkProcesses verifies every node names a process resolvable in the
// snapshot before any node is dispatched. Errors accumulate across nodes in
// topological id order.
func (e *Executor) checkProcesses(src *pgraph.Graph) pgraph.ErrorList {
	var errs pgraph.ErrorList
	for _, id := range src.SortedIDs() {
		node := src.Nodes[id]
		if _, ok := e.snap.Lookup(node.ProcessID); !ok {
			errs = append(errs, &pgraph.Error{
				Kind:    pgraph.KindUnknownProcess,
				Node:    id,
				Message: fmt.Sprintf("no process with id '%s' is registered", node.ProcessID),
			})
		}
	}
	return errs
}

func (e *Executor) worker(ctx context.Context, workerID int, graph *dag.Graph, ectx *Context, readyChan chan *dag.Node, cancel context.CancelFunc, wg *sync.WaitGroup, depth int) {
	logger := ctxlog.FromContext(ctx).With("worker_id", workerID)

	for node := range readyChan {
		if ctx.Err() != nil {
			node.Skip(ctx.Err(), wg)
			continue
		}

		node.SetState(dag.Running)
		logger.Debug("Evaluating node", "node", node.ID, "process", node.Source.ProcessID)

		output, err := e.runNode(ctx, node, ectx, depth)
		if err != nil {
			node.Err = err
			node.SetState(dag.Failed)
			logger.Debug("Node failed", "node", node.ID, "error", err)
			cancel()
			e.skipDependents(node, wg)
			wg.Done()
			continue
		}

		node.Output = output
		if serr := ectx.SetOutput(node.ID, output); serr != nil {
			node.Err = serr
			node.SetState(dag.Failed)
			cancel()
			e.skipDependents(node, wg)
			wg.Done()
			continue
		}
		node.SetState(dag.Done)

		for _, dependent := range node.Dependents {
			if dependent.DecrementDepCount() == 0 {
				readyChan <- dependent
			}
		}
		wg.Done()
	}
}

// runNode executes the full per-node pipeline: lookup, argument resolution,
// parameter binding, invocation, return check. A binding failure rejects the
// node without dispatching the process implementation.
func (e *Executor) runNode(ctx context.Context, node *dag.Node, ectx *Context, depth int) (cty.Value, error) {
	proc, ok := e.snap.Lookup(node.Source.ProcessID)
	if !ok {
		// Unreachable after checkProcesses, kept as a guard against a
		// snapshot/graph mix-up.
		return cty.NilVal, &pgraph.Error{
			Kind:    pgraph.KindUnknownProcess,
			Node:    node.ID,
			Message: fmt.Sprintf("no process with id '%s' is registered", node.Source.ProcessID),
		}
	}

	args, err := resolveArguments(node, ectx)
	if err != nil {
		return cty.NilVal, err
	}

	bound, errs := schema.Bind(proc.Spec(), node.ID, args)
	if len(errs) > 0 {
		return cty.NilVal, errs
	}

	output, err := proc.Invoke(ctx, registry.Call{
		Node:      node.ID,
		Arguments: bound,
		Evaluator: subEvaluator{exec: e, depth: depth + 1},
	})
	if err != nil {
		var perr *pgraph.Error
		var plist pgraph.ErrorList
		if errors.As(err, &perr) || errors.As(err, &plist) {
			return cty.NilVal, err
		}
		return cty.NilVal, &pgraph.Error{
			Kind:  pgraph.KindProcessExecution,
			Node:  node.ID,
			Cause: err,
		}
	}

	checked, perr := schema.CheckReturn(proc.Spec(), node.ID, output)
	if perr != nil {
		return cty.NilVal, perr
	}
	return checked, nil
}

// skipDependents transitively marks everything downstream of a failed node
// as skipped. The sync.Once inside Skip keeps the recursion from revisiting
// a node when multiple failed paths converge on it.
func (e *Executor) skipDependents(node *dag.Node, wg *sync.WaitGroup) {
	for _, dependent := range node.Dependents {
		if dependent.Skip(&skipError{upstream: node.ID}, wg) {
			e.skipDependents(dependent, wg)
		}
	}
}

// skipError marks a node that never ran because an upstream dependency
// failed. It lets root-cause collection tell original failures apart from
// their fallout.
type skipError struct {
	upstream string
}

func (e *skipError) Error() string {
	return fmt.Sprintf("skipped due to upstream failure of '%s'", e.upstream)
}

// rootCause picks the failure to report for an evaluation whose result node
// did not complete: the first originating failure in topological order,
// ignoring skip markers and cancellation fallout. Topological order makes
// the choice reproducible when several independent branches fail.
func (e *Executor) rootCause(ctx context.Context, graph *dag.Graph) error {
	var fallback error
	for _, id := range graph.TopoOrder() {
		node := graph.Nodes[id]
		if node.GetState() != dag.Failed || node.Err == nil {
			continue
		}
		var skip *skipError
		if errors.As(node.Err, &skip) {
			continue
		}
		if errors.Is(node.Err, context.Canceled) || errors.Is(node.Err, context.DeadlineExceeded) {
			if fallback == nil {
				fallback = node.Err
			}
			continue
		}
		return node.Err
	}
	if fallback != nil {
		return fallback
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.New("evaluation finished without a result and without a recorded failure")
}
