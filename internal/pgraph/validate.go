package pgraph

import (
	"fmt"
	"strings"
)

// Validate re-checks the graph's structural invariants: exactly one result
// node, and every from_node reference resolving to an existing node. All
// violations found are accumulated. On success the Result field is populated
// with the id of the single result node.
//
// Cycle detection is the dependency resolver's concern (package dag); unknown
// process ids are checked against the registry by the engine.
func (g *Graph) Validate() ErrorList {
	var errs ErrorList

	var resultIDs []string
	for _, id := range g.SortedIDs() {
		node := g.Nodes[id]
		if node.Result {
			resultIDs = append(resultIDs, id)
		}
		for _, ref := range node.NodeRefs() {
			if _, ok := g.Nodes[ref.Target]; !ok {
				errs = append(errs, &Error{
					Kind:     KindDanglingReference,
					Node:     id,
					Argument: ref.Path,
					Message:  fmt.Sprintf("references nonexistent node '%s'", ref.Target),
				})
			}
		}
	}

	switch len(resultIDs) {
	case 0:
		errs = append(errs, &Error{
			Kind:    KindAmbiguousResult,
			Message: "no node is marked with 'result': true",
		})
	case 1:
		g.Result = resultIDs[0]
	default:
		errs = append(errs, &Error{
			Kind: KindAmbiguousResult,
			Message: fmt.Sprintf("multiple nodes are marked with 'result': true: %s",
				strings.Join(resultIDs, ", ")),
		})
	}

	return errs
}
