package pgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Argument is the tagged variant an argument value is normalized into at
// decode time. Implementations: Literal, NodeRef, ParamRef, List, Object.
type Argument interface {
	isArgument()
}

// Literal is a plain JSON value with no further graph semantics.
type Literal struct {
	Value cty.Value
}

// NodeRef is a {"from_node": "<id>"} reference to a sibling node's output.
type NodeRef struct {
	Node string
}

// ParamRef is a {"from_argument": "<name>"} reference to a parameter bound
// by the enclosing invocation.
type ParamRef struct {
	Name string
}

// List is a JSON array whose elements may themselves contain references.
type List struct {
	Elems []Argument
}

// Object is a JSON object (without reference keys) whose attribute values
// may themselves contain references.
type Object struct {
	Attrs map[string]Argument
}

func (Literal) isArgument()  {}
func (NodeRef) isArgument()  {}
func (ParamRef) isArgument() {}
func (List) isArgument()     {}
func (Object) isArgument()   {}

// Reference keys of the wire format.
const (
	fromNodeKey     = "from_node"
	fromArgumentKey = "from_argument"
)

// Ref records one reference occurrence inside a node's arguments together
// with the argument path it was found at, e.g. "data[2]".
type Ref struct {
	Target string
	Path   string
}

// argDecoder accumulates decode errors and reference occurrences for one node.
type argDecoder struct {
	node      string
	errs      ErrorList
	nodeRefs  []Ref
	paramRefs []Ref
}

// decode classifies a raw JSON argument value, recursing into arrays and
// objects. path identifies the value's position for error reporting.
func (d *argDecoder) decode(raw json.RawMessage, path string) Argument {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		d.malformed(path, "empty argument value")
		return nil
	}

	switch trimmed[0] {
	case '{':
		return d.decodeObject(trimmed, path)
	case '[':
		return d.decodeList(trimmed, path)
	default:
		return d.decodeScalar(trimmed, path)
	}
}

func (d *argDecoder) decodeObject(raw json.RawMessage, path string) Argument {
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &attrs); err != nil {
		d.malformed(path, "invalid JSON object: %v", err)
		return nil
	}

	if target, ok := attrs[fromNodeKey]; ok {
		id, err := decodeRefTarget(target)
		if err != nil {
			d.malformed(path, "'%s' value must be a string: %v", fromNodeKey, err)
			return nil
		}
		d.nodeRefs = append(d.nodeRefs, Ref{Target: id, Path: path})
		return NodeRef{Node: id}
	}

	if name, ok := attrs[fromArgumentKey]; ok {
		id, err := decodeRefTarget(name)
		if err != nil {
			d.malformed(path, "'%s' value must be a string: %v", fromArgumentKey, err)
			return nil
		}
		d.paramRefs = append(d.paramRefs, Ref{Target: id, Path: path})
		return ParamRef{Name: id}
	}

	// Attribute iteration is sorted so reference collection order, and with
	// it the derived evaluation order, is deterministic for a given document.
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := Object{Attrs: make(map[string]Argument, len(attrs))}
	for _, k := range keys {
		child := d.decode(attrs[k], path+"."+k)
		if child != nil {
			obj.Attrs[k] = child
		}
	}
	return obj
}

func (d *argDecoder) decodeList(raw json.RawMessage, path string) Argument {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		d.malformed(path, "invalid JSON array: %v", err)
		return nil
	}

	list := List{Elems: make([]Argument, 0, len(elems))}
	for i, elem := range elems {
		child := d.decode(elem, fmt.Sprintf("%s[%d]", path, i))
		if child != nil {
			list.Elems = append(list.Elems, child)
		}
	}
	return list
}

func (d *argDecoder) decodeScalar(raw json.RawMessage, path string) Argument {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		d.malformed(path, "invalid JSON value: %v", err)
		return nil
	}

	switch val := v.(type) {
	case nil:
		return Literal{Value: cty.NullVal(cty.DynamicPseudoType)}
	case bool:
		return Literal{Value: cty.BoolVal(val)}
	case string:
		return Literal{Value: cty.StringVal(val)}
	case json.Number:
		num, err := cty.ParseNumberVal(val.String())
		if err != nil {
			d.malformed(path, "invalid number %q: %v", val.String(), err)
			return nil
		}
		return Literal{Value: num}
	default:
		d.malformed(path, "unsupported JSON value of type %T", v)
		return nil
	}
}

func (d *argDecoder) malformed(path, format string, args ...any) {
	d.errs = append(d.errs, &Error{
		Kind:     KindMalformedGraph,
		Node:     d.node,
		Argument: path,
		Message:  fmt.Sprintf(format, args...),
	})
}

func decodeRefTarget(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("reference target must not be empty")
	}
	return s, nil
}
