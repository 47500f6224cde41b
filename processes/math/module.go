// Package math provides the arithmetic built-in processes. The aggregating
// ones (sum, product, subtract, divide) take their operands as a single
// `data` array, so a chain like an EVI formula composes without nesting
// binary calls.
package math

import (
	"context"
	"errors"
	"fmt"
	gomath "math"
	"reflect"

	"github.com/zclconf/go-cty/cty"

	"github.com/Open-EO/openeo-graph-engine/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// DataInput is the input shape shared by the aggregating processes.
type DataInput struct {
	Data []float64 `cty:"data"`
}

// OnSum is the handler for the 'sum' process.
func OnSum(ctx context.Context, input *DataInput) (cty.Value, error) {
	total := 0.0
	for _, v := range input.Data {
		total += v
	}
	return cty.NumberFloatVal(total), nil
}

// OnProduct is the handler for the 'product' process.
func OnProduct(ctx context.Context, input *DataInput) (cty.Value, error) {
	total := 1.0
	for _, v := range input.Data {
		total *= v
	}
	return cty.NumberFloatVal(total), nil
}

// OnSubtract is the handler for the 'subtract' process. The first element is
// the minuend, every following element is subtracted from it in order.
func OnSubtract(ctx context.Context, input *DataInput) (cty.Value, error) {
	if len(input.Data) == 0 {
		return cty.NilVal, errors.New("data must not be empty")
	}
	total := input.Data[0]
	for _, v := range input.Data[1:] {
		total -= v
	}
	return cty.NumberFloatVal(total), nil
}

// OnDivide is the handler for the 'divide' process. The first element is the
// dividend, every following element divides the running result in order.
func OnDivide(ctx context.Context, input *DataInput) (cty.Value, error) {
	if len(input.Data) == 0 {
		return cty.NilVal, errors.New("data must not be empty")
	}
	total := input.Data[0]
	for i, v := range input.Data[1:] {
		if v == 0 {
			return cty.NilVal, fmt.Errorf("division by zero at data[%d]", i+1)
		}
		total /= v
	}
	return cty.NumberFloatVal(total), nil
}

// ScalarInput is the input shape for single-operand processes.
type ScalarInput struct {
	X float64 `cty:"x"`
}

// OnAbsolute is the handler for the 'absolute' process.
func OnAbsolute(ctx context.Context, input *ScalarInput) (cty.Value, error) {
	return cty.NumberFloatVal(gomath.Abs(input.X)), nil
}

// OnSqrt is the handler for the 'sqrt' process.
func OnSqrt(ctx context.Context, input *ScalarInput) (cty.Value, error) {
	if input.X < 0 {
		return cty.NilVal, fmt.Errorf("square root of negative number %v", input.X)
	}
	return cty.NumberFloatVal(gomath.Sqrt(input.X)), nil
}

// PowerInput is the input shape for the 'power' process.
type PowerInput struct {
	Base float64 `cty:"base"`
	P    float64 `cty:"p"`
}

// OnPower is the handler for the 'power' process.
func OnPower(ctx context.Context, input *PowerInput) (cty.Value, error) {
	result := gomath.Pow(input.Base, input.P)
	if gomath.IsNaN(result) {
		return cty.NilVal, fmt.Errorf("%v raised to %v is not a real number", input.Base, input.P)
	}
	return cty.NumberFloatVal(result), nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterInvoker("OnSum", &registry.Handler{
		NewInput:  func() any { return new(DataInput) },
		InputType: reflect.TypeOf(DataInput{}),
		Fn:        OnSum,
	})
	r.RegisterInvoker("OnProduct", &registry.Handler{
		NewInput:  func() any { return new(DataInput) },
		InputType: reflect.TypeOf(DataInput{}),
		Fn:        OnProduct,
	})
	r.RegisterInvoker("OnSubtract", &registry.Handler{
		NewInput:  func() any { return new(DataInput) },
		InputType: reflect.TypeOf(DataInput{}),
		Fn:        OnSubtract,
	})
	r.RegisterInvoker("OnDivide", &registry.Handler{
		NewInput:  func() any { return new(DataInput) },
		InputType: reflect.TypeOf(DataInput{}),
		Fn:        OnDivide,
	})
	r.RegisterInvoker("OnAbsolute", &registry.Handler{
		NewInput:  func() any { return new(ScalarInput) },
		InputType: reflect.TypeOf(ScalarInput{}),
		Fn:        OnAbsolute,
	})
	r.RegisterInvoker("OnSqrt", &registry.Handler{
		NewInput:  func() any { return new(ScalarInput) },
		InputType: reflect.TypeOf(ScalarInput{}),
		Fn:        OnSqrt,
	})
	r.RegisterInvoker("OnPower", &registry.Handler{
		NewInput:  func() any { return new(PowerInput) },
		InputType: reflect.TypeOf(PowerInput{}),
		Fn:        OnPower,
	})
}
