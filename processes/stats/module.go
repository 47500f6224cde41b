// Package stats provides the aggregate statistics built-in processes.
package stats

import (
	"context"
	"errors"
	"reflect"

	"github.com/zclconf/go-cty/cty"

	"github.com/Open-EO/openeo-graph-engine/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input is the input shape shared by the aggregate processes.
type Input struct {
	Data []float64 `cty:"data"`
}

// OnMin is the handler for the 'min' process.
func OnMin(ctx context.Context, input *Input) (cty.Value, error) {
	if len(input.Data) == 0 {
		return cty.NilVal, errors.New("data must not be empty")
	}
	min := input.Data[0]
	for _, v := range input.Data[1:] {
		if v < min {
			min = v
		}
	}
	return cty.NumberFloatVal(min), nil
}

// OnMax is the handler for the 'max' process.
func OnMax(ctx context.Context, input *Input) (cty.Value, error) {
	if len(input.Data) == 0 {
		return cty.NilVal, errors.New("data must not be empty")
	}
	max := input.Data[0]
	for _, v := range input.Data[1:] {
		if v > max {
			max = v
		}
	}
	return cty.NumberFloatVal(max), nil
}

// OnMean is the handler for the 'mean' process.
func OnMean(ctx context.Context, input *Input) (cty.Value, error) {
	if len(input.Data) == 0 {
		return cty.NilVal, errors.New("data must not be empty")
	}
	total := 0.0
	for _, v := range input.Data {
		total += v
	}
	return cty.NumberFloatVal(total / float64(len(input.Data))), nil
}

// OnCount is the handler for the 'count' process.
func OnCount(ctx context.Context, input *Input) (cty.Value, error) {
	return cty.NumberIntVal(int64(len(input.Data))), nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	for name, fn := range map[string]func(context.Context, *Input) (cty.Value, error){
		"OnMin":   OnMin,
		"OnMax":   OnMax,
		"OnMean":  OnMean,
		"OnCount": OnCount,
	} {
		r.RegisterInvoker(name, &registry.Handler{
			NewInput:  func() any { return new(Input) },
			InputType: reflect.TypeOf(Input{}),
			Fn:        fn,
		})
	}
}
