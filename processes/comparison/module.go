// Package comparison provides the comparison built-in processes. Equality
// accepts any value type; the ordering processes are number-only.
package comparison

import (
	"context"
	gomath "math"
	"reflect"

	"github.com/zclconf/go-cty/cty"

	"github.com/Open-EO/openeo-graph-engine/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// EqualityInput is the input shape for 'eq' and 'neq'.
type EqualityInput struct {
	X     cty.Value `cty:"x"`
	Y     cty.Value `cty:"y"`
	Delta cty.Value `cty:"delta"`
}

func equal(input *EqualityInput) (bool, error) {
	if !input.Delta.IsNull() && input.X.Type() == cty.Number && input.Y.Type() == cty.Number {
		x, _ := input.X.AsBigFloat().Float64()
		y, _ := input.Y.AsBigFloat().Float64()
		delta, _ := input.Delta.AsBigFloat().Float64()
		return gomath.Abs(x-y) <= delta, nil
	}
	return input.X.RawEquals(input.Y), nil
}

// OnEq is the handler for the 'eq' process.
func OnEq(ctx context.Context, input *EqualityInput) (cty.Value, error) {
	eq, err := equal(input)
	if err != nil {
		return cty.NilVal, err
	}
	return cty.BoolVal(eq), nil
}

// OnNeq is the handler for the 'neq' process.
func OnNeq(ctx context.Context, input *EqualityInput) (cty.Value, error) {
	eq, err := equal(input)
	if err != nil {
		return cty.NilVal, err
	}
	return cty.BoolVal(!eq), nil
}

// OrderingInput is the input shape for the ordering processes.
type OrderingInput struct {
	X float64 `cty:"x"`
	Y float64 `cty:"y"`
}

// OnGt is the handler for the 'gt' process.
func OnGt(ctx context.Context, input *OrderingInput) (cty.Value, error) {
	return cty.BoolVal(input.X > input.Y), nil
}

// OnGte is the handler for the 'gte' process.
func OnGte(ctx context.Context, input *OrderingInput) (cty.Value, error) {
	return cty.BoolVal(input.X >= input.Y), nil
}

// OnLt is the handler for the 'lt' process.
func OnLt(ctx context.Context, input *OrderingInput) (cty.Value, error) {
	return cty.BoolVal(input.X < input.Y), nil
}

// OnLte is the handler for the 'lte' process.
func OnLte(ctx context.Context, input *OrderingInput) (cty.Value, error) {
	return cty.BoolVal(input.X <= input.Y), nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterInvoker("OnEq", &registry.Handler{
		NewInput:  func() any { return new(EqualityInput) },
		InputType: reflect.TypeOf(EqualityInput{}),
		Fn:        OnEq,
	})
	r.RegisterInvoker("OnNeq", &registry.Handler{
		NewInput:  func() any { return new(EqualityInput) },
		InputType: reflect.TypeOf(EqualityInput{}),
		Fn:        OnNeq,
	})
	for name, fn := range map[string]func(context.Context, *OrderingInput) (cty.Value, error){
		"OnGt":  OnGt,
		"OnGte": OnGte,
		"OnLt":  OnLt,
		"OnLte": OnLte,
	} {
		r.RegisterInvoker(name, &registry.Handler{
			NewInput:  func() any { return new(OrderingInput) },
			InputType: reflect.TypeOf(OrderingInput{}),
			Fn:        fn,
		})
	}
}
