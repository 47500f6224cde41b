package dag

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Open-EO/openeo-graph-engine/internal/pgraph"
	"github.com/zclconf/go-cty/cty"
)

// Graph is the derived dependency graph over a validated process graph. An
// edge from node A to node B exists iff some argument of A contains a
// from_node reference to B. The graph is built once per evaluation and is
// structurally immutable afterwards; only per-node execution state mutates.
type Graph struct {
	Nodes map[string]*Node

	// order is the deterministic topological evaluation order computed
	// during Build.
	order []string
}

// Node is a single vertex in the execution graph, wrapping one process
// graph node together with its mutable execution state.
type Node struct {
	// ID is the node identifier from the source document.
	ID string
	// Source is the decoded process graph node this vertex executes.
	Source *pgraph.Node

	// Deps holds the nodes this node depends on (predecessors).
	Deps map[string]*Node
	// Dependents holds the nodes that depend on this node (successors).
	Dependents map[string]*Node

	// Output stores the node's computed value once it reaches Done. It is
	// written exactly once, by the worker that ran the node.
	Output cty.Value
	// Err stores the failure that moved the node to Failed.
	Err error

	// depCount is an atomic counter of unmet dependencies, used by the
	// executor to detect readiness.
	depCount atomic.Int32
	// state is the node's current execution state, managed atomically.
	state atomic.Int32
	// skipOnce ensures a node is marked as skipped exactly once even when
	// several failed upstream paths converge on it.
	skipOnce sync.Once
}

// State represents the execution state of a node in the graph.
type State int32

const (
	// Pending indicates the node is waiting for its dependencies to complete.
	Pending State = iota
	// Running indicates the node is currently being executed by a worker.
	Running
	// Done indicates the node has completed execution successfully.
	Done
	// Failed indicates the node has failed execution or was skipped.
	Failed
)

// SetState atomically sets the node's execution state.
func (n *Node) SetState(s State) {
	n.state.Store(int32(s))
}

// GetState atomically retrieves the node's execution state.
func (n *Node) GetState() State {
	return State(n.state.Load())
}

// DepCount atomically returns the current number of unmet dependencies.
func (n *Node) DepCount() int32 {
	return n.depCount.Load()
}

// DecrementDepCount atomically decrements the dependency counter and returns
// the new value.
func (n *Node) DecrementDepCount() int32 {
	return n.depCount.Add(-1)
}

// Skip marks a node as failed without running it and decrements the
// WaitGroup counter. It uses a sync.Once so converging failure paths mark the
// node exactly once; it returns true for the caller that won.
func (n *Node) Skip(err error, wg *sync.WaitGroup) bool {
	var wasSkipped bool
	n.skipOnce.Do(func() {
		n.SetState(Failed)
		n.Err = err
		wg.Done()
		wasSkipped = true
	})
	return wasSkipped
}

// TopoOrder returns the evaluation order computed during Build: every node
// appears after all nodes it references. Ties are broken by lexicographic
// node id, so the order is reproducible for identical documents.
func (g *Graph) TopoOrder() []string {
	return g.order
}

// sortedKeys returns the keys of a node map in lexicographic order.
func sortedKeys(nodes map[string]*Node) []string {
	keys := make([]string, 0, len(nodes))
	for k := range nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
