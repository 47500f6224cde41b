// Package logical provides the boolean built-in processes.
package logical

import (
	"context"
	"reflect"

	"github.com/zclconf/go-cty/cty"

	"github.com/Open-EO/openeo-graph-engine/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// BinaryInput is the input shape for the two-operand processes.
type BinaryInput struct {
	X bool `cty:"x"`
	Y bool `cty:"y"`
}

// OnAnd is the handler for the 'and' process.
func OnAnd(ctx context.Context, input *BinaryInput) (cty.Value, error) {
	return cty.BoolVal(input.X && input.Y), nil
}

// OnOr is the handler for the 'or' process.
func OnOr(ctx context.Context, input *BinaryInput) (cty.Value, error) {
	return cty.BoolVal(input.X || input.Y), nil
}

// OnXor is the handler for the 'xor' process.
func OnXor(ctx context.Context, input *BinaryInput) (cty.Value, error) {
	return cty.BoolVal(input.X != input.Y), nil
}

// NotInput is the input shape for the 'not' process.
type NotInput struct {
	X bool `cty:"x"`
}

// OnNot is the handler for the 'not' process.
func OnNot(ctx context.Context, input *NotInput) (cty.Value, error) {
	return cty.BoolVal(!input.X), nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	for name, fn := range map[string]func(context.Context, *BinaryInput) (cty.Value, error){
		"OnAnd": OnAnd,
		"OnOr":  OnOr,
		"OnXor": OnXor,
	} {
		r.RegisterInvoker(name, &registry.Handler{
			NewInput:  func() any { return new(BinaryInput) },
			InputType: reflect.TypeOf(BinaryInput{}),
			Fn:        fn,
		})
	}
	r.RegisterInvoker("OnNot", &registry.Handler{
		NewInput:  func() any { return new(NotInput) },
		InputType: reflect.TypeOf(NotInput{}),
		Fn:        OnNot,
	})
}
