package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/Open-EO/openeo-graph-engine/internal/pgraph"
	"github.com/Open-EO/openeo-graph-engine/internal/schema"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Evaluator is the sub-evaluation capability handed to a process invocation.
// The executor implements it; a user-defined process uses it to run its
// stored graph with the call's arguments as parameter bindings.
type Evaluator interface {
	Evaluate(ctx context.Context, g *pgraph.Graph, params map[string]cty.Value) (cty.Value, error)
}

// Call carries one process invocation: the invoking node id (for error
// context), the bound and schema-checked arguments, and the evaluator for
// recursive sub-evaluation.
type Call struct {
	Node      string
	Arguments map[string]cty.Value
	Evaluator Evaluator
}

// Process is the single capability the evaluator dispatches to. Built-in
// processes (native Go handlers) and user-defined ones (stored process
// graphs) both implement it, so the evaluator never needs to know which
// kind it is invoking.
type Process interface {
	Spec() *schema.ProcessSpec
	Invoke(ctx context.Context, call Call) (cty.Value, error)
}

// Handler holds the compiled Go parts of a built-in process implementation.
type Handler struct {
	// NewInput returns a pointer to a fresh input struct for one
	// invocation. Fields are bound by their `cty` tags.
	NewInput func() any
	// InputType is the input struct type, used for the startup parity
	// check against the manifest.
	InputType reflect.Type
	// Fn is the handler function, of shape
	// func(ctx context.Context, input *T) (cty.Value, error).
	Fn any
}

// Builtin is a built-in process: a manifest-declared specification bound to
// a registered Go handler.
type Builtin struct {
	spec    schema.ProcessSpec
	handler *Handler

	// unboundInvoke records the manifest's handler name when no matching
	// handler was registered; Validate turns it into a startup error.
	unboundInvoke string
}

// Spec implements Process.
func (p *Builtin) Spec() *schema.ProcessSpec {
	return &p.spec
}

// ctyValueType marks input struct fields that take the raw cty.Value,
// bypassing gocty decoding for dynamically typed parameters.
var ctyValueType = reflect.TypeOf(cty.Value{})

// Invoke implements Process by decoding the bound arguments into the
// handler's input struct and calling the handler function.
func (p *Builtin) Invoke(ctx context.Context, call Call) (cty.Value, error) {
	input := p.handler.NewInput()
	if err := decodeInput(input, call.Arguments); err != nil {
		return cty.NilVal, &pgraph.Error{
			Kind:  pgraph.KindSchemaViolation,
			Node:  call.Node,
			Cause: err,
		}
	}

	results := reflect.ValueOf(p.handler.Fn).Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(input),
	})
	if errResult := results[1].Interface(); errResult != nil {
		return cty.NilVal, errResult.(error)
	}
	return results[0].Interface().(cty.Value), nil
}

// decodeInput binds checked argument values onto an input struct by `cty`
// field tags. Unbound optional arguments leave their field at its zero
// value; fields of type cty.Value receive the value verbatim.
func decodeInput(target any, args map[string]cty.Value) error {
	structVal := reflect.ValueOf(target).Elem()
	structType := structVal.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := strings.Split(field.Tag.Get("cty"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}

		val, ok := args[tag]
		if !ok {
			continue
		}
		if field.Type == ctyValueType {
			structVal.Field(i).Set(reflect.ValueOf(val))
			continue
		}
		if val.IsNull() {
			continue
		}
		if err := gocty.FromCtyValue(val, structVal.Field(i).Addr().Interface()); err != nil {
			return fmt.Errorf("argument '%s': %w", tag, err)
		}
	}
	return nil
}

// UserDefined is a user-defined process: a stored process graph invoked as a
// callable unit, with parameters declared as JSON Schema fragments.
type UserDefined struct {
	spec  schema.ProcessSpec
	Owner string
	Graph *pgraph.Graph
}

// Spec implements Process.
func (p *UserDefined) Spec() *schema.ProcessSpec {
	return &p.spec
}

// Invoke implements Process by recursively evaluating the stored graph with
// the call's arguments as its external parameter bindings. The result-node
// output of the sub-graph becomes the calling node's output.
func (p *UserDefined) Invoke(ctx context.Context, call Call) (cty.Value, error) {
	return call.Evaluator.Evaluate(ctx, p.Graph, call.Arguments)
}
