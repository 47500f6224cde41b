package pgraph

import (
	"encoding/json"
	"sort"
)

// Graph is a validated, in-memory process graph. It is constructed once per
// submission by Decode, checked by Validate, and treated as immutable
// afterwards.
type Graph struct {
	Nodes map[string]*Node

	// Result is the id of the single result node. It is populated by
	// Validate and empty until then.
	Result string
}

// Node is one process invocation within a graph.
type Node struct {
	ID          string
	ProcessID   string
	Arguments   map[string]Argument
	Result      bool
	Description string

	nodeRefs  []Ref
	paramRefs []Ref
}

// NodeRefs returns every from_node reference occurring in the node's
// arguments, in deterministic (sorted argument, positional element) order.
func (n *Node) NodeRefs() []Ref {
	return n.nodeRefs
}

// ParamRefs returns every from_argument reference occurring in the node's
// arguments, in deterministic order.
func (n *Node) ParamRefs() []Ref {
	return n.paramRefs
}

// SortedIDs returns all node ids in lexicographic order. Iterating Nodes
// through this keeps every derived artifact (validation output, evaluation
// order) reproducible for identical documents.
func (g *Graph) SortedIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// nodeBody is the wire shape of a single node entry.
type nodeBody struct {
	ProcessID   *string                    `json:"process_id"`
	Arguments   map[string]json.RawMessage `json:"arguments"`
	Result      bool                       `json:"result"`
	Description string                     `json:"description"`
}

// Decode parses a raw process graph document into a Graph, normalizing every
// argument value into the tagged Argument variant. It accumulates all shape
// errors (unparsable document, missing node fields, malformed reference
// objects) rather than stopping at the first, and returns the best-effort
// graph alongside them so structural validation can still run.
func Decode(doc []byte) (*Graph, ErrorList) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, ErrorList{{
			Kind:    KindMalformedGraph,
			Message: "process graph is not a JSON object",
			Cause:   err,
		}}
	}

	graph := &Graph{Nodes: make(map[string]*Node, len(raw))}
	var errs ErrorList

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		var body nodeBody
		if err := json.Unmarshal(raw[id], &body); err != nil {
			errs = append(errs, &Error{
				Kind:    KindMalformedGraph,
				Node:    id,
				Message: "node body is not a JSON object",
				Cause:   err,
			})
			continue
		}

		malformed := false
		if body.ProcessID == nil || *body.ProcessID == "" {
			errs = append(errs, &Error{
				Kind:    KindMalformedGraph,
				Node:    id,
				Message: "missing required field 'process_id'",
			})
			malformed = true
		}
		if body.Arguments == nil {
			errs = append(errs, &Error{
				Kind:    KindMalformedGraph,
				Node:    id,
				Message: "missing required field 'arguments'",
			})
			malformed = true
		}
		if malformed {
			continue
		}

		dec := &argDecoder{node: id}
		args := make(map[string]Argument, len(body.Arguments))

		argNames := make([]string, 0, len(body.Arguments))
		for name := range body.Arguments {
			argNames = append(argNames, name)
		}
		sort.Strings(argNames)

		for _, name := range argNames {
			if arg := dec.decode(body.Arguments[name], name); arg != nil {
				args[name] = arg
			}
		}
		errs = append(errs, dec.errs...)

		graph.Nodes[id] = &Node{
			ID:          id,
			ProcessID:   *body.ProcessID,
			Arguments:   args,
			Result:      body.Result,
			Description: body.Description,
			nodeRefs:    dec.nodeRefs,
			paramRefs:   dec.paramRefs,
		}
	}

	return graph, errs
}
