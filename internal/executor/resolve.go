package executor

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/Open-EO/openeo-graph-engine/internal/dag"
	"github.com/Open-EO/openeo-graph-engine/internal/pgraph"
)

// resolveArguments materializes the concrete argument values for a node
// that is about to run. All upstream outputs are guaranteed present: the
// scheduler only dispatches a node once every dependency completed.
func resolveArguments(node *dag.Node, ectx *Context) (map[string]cty.Value, error) {
	resolved := make(map[string]cty.Value, len(node.Source.Arguments))
	for name, arg := range node.Source.Arguments {
		v, err := resolveArgument(node.ID, name, arg, ectx)
		if err != nil {
			return nil, err
		}
		resolved[name] = v
	}
	return resolved, nil
}

func resolveArgument(nodeID, path string, arg pgraph.Argument, ectx *Context) (cty.Value, error) {
	switch a := arg.(type) {
	case pgraph.Literal:
		return a.Value, nil

	case pgraph.NodeRef:
		v, ok := ectx.Output(a.Node)
		if !ok {
			return cty.NilVal, fmt.Errorf("output of node '%s' not yet computed while resolving '%s' of node '%s': scheduling invariant violated", a.Node, path, nodeID)
		}
		return v, nil

	case pgraph.ParamRef:
		v, ok := ectx.Param(a.Name)
		if !ok {
			return cty.NilVal, &pgraph.Error{
				Kind:     pgraph.KindUnboundParameter,
				Node:     nodeID,
				Argument: path,
				Message:  fmt.Sprintf("parameter '%s' was not bound for this evaluation", a.Name),
			}
		}
		return v, nil

	case pgraph.List:
		if len(a.Elems) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(a.Elems))
		for i, elem := range a.Elems {
			v, err := resolveArgument(nodeID, fmt.Sprintf("%s[%d]", path, i), elem, ectx)
			if err != nil {
				return cty.NilVal, err
			}
			elems[i] = v
		}
		return cty.TupleVal(elems), nil

	case pgraph.Object:
		if len(a.Attrs) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(a.Attrs))
		for key, attr := range a.Attrs {
			v, err := resolveArgument(nodeID, path+"."+key, attr, ectx)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[key] = v
		}
		return cty.ObjectVal(attrs), nil

	default:
		return cty.NilVal, fmt.Errorf("unhandled argument variant %T at '%s' of node '%s'", arg, path, nodeID)
	}
}
