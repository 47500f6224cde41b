// Package dag derives the dependency graph of a validated process graph,
// rejects cycles and dangling references, and produces a deterministic
// topological evaluation order.
package dag

import (
	"fmt"
	"strings"

	"github.com/Open-EO/openeo-graph-engine/internal/pgraph"
)

// Build constructs the dependency graph for a decoded process graph.
//
// It runs in three passes: node creation, reference linking, and cycle
// detection combined with topological ordering. Dangling references are
// reported as a distinct failure kind from cycles, since they indicate
// authoring typos rather than logical errors; all dangling references are
// accumulated before returning.
func Build(src *pgraph.Graph) (*Graph, error) {
	graph := &Graph{Nodes: make(map[string]*Node, len(src.Nodes))}

	// First pass: create all vertices.
	for _, id := range src.SortedIDs() {
		graph.Nodes[id] = &Node{
			ID:         id,
			Source:     src.Nodes[id],
			Deps:       make(map[string]*Node),
			Dependents: make(map[string]*Node),
		}
	}

	// Second pass: link every from_node reference as a dependency edge.
	// A self-reference is linked like any other edge and surfaces as a
	// one-node cycle below.
	var errs pgraph.ErrorList
	for _, id := range src.SortedIDs() {
		node := graph.Nodes[id]
		for _, ref := range src.Nodes[id].NodeRefs() {
			dep, ok := graph.Nodes[ref.Target]
			if !ok {
				errs = append(errs, &pgraph.Error{
					Kind:     pgraph.KindDanglingReference,
					Node:     id,
					Argument: ref.Path,
					Message:  fmt.Sprintf("references nonexistent node '%s'", ref.Target),
				})
				continue
			}
			node.Deps[ref.Target] = dep
			dep.Dependents[id] = node
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	// Third pass: order the graph, failing on cycles.
	order, cycle := graph.sortTopological()
	if cycle != nil {
		return nil, pgraph.ErrorList{{
			Kind:    pgraph.KindCyclicDependency,
			Node:    cycle[0],
			Message: fmt.Sprintf("cyclic reference chain: %s -> %s", strings.Join(cycle, " -> "), cycle[0]),
		}}
	}
	graph.order = order

	// Initialize the readiness counters the executor consumes.
	for _, node := range graph.Nodes {
		node.depCount.Store(int32(len(node.Deps)))
	}

	return graph, nil
}

// sortTopological computes a topological order via depth-first traversal
// with three-coloring: unvisited, in-progress, and done. Visiting an
// in-progress node signals a cycle, which is returned as the member node ids
// in encountered order. Nodes and their dependencies are visited in
// lexicographic order so the resulting order is deterministic.
func (g *Graph) sortTopological() (order []string, cycle []string) {
	const (
		white = iota // unvisited
		gray         // in the current traversal stack
		black        // fully visited
	)

	colors := make(map[string]int, len(g.Nodes))
	var path []string

	var visit func(n *Node) bool
	visit = func(n *Node) bool {
		colors[n.ID] = gray
		path = append(path, n.ID)

		for _, depID := range sortedKeys(n.Deps) {
			switch colors[depID] {
			case gray:
				// The cycle is the stack slice from the in-progress
				// node to the current one.
				for i, id := range path {
					if id == depID {
						cycle = append(cycle, path[i:]...)
						break
					}
				}
				return false
			case white:
				if !visit(n.Deps[depID]) {
					return false
				}
			}
		}

		path = path[:len(path)-1]
		colors[n.ID] = black
		order = append(order, n.ID)
		return true
	}

	for _, id := range sortedKeys(g.Nodes) {
		if colors[id] == white {
			if !visit(g.Nodes[id]) {
				return nil, cycle
			}
		}
	}
	return order, nil
}
