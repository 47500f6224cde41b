// Package texts provides the string built-in processes.
package texts

import (
	"context"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/Open-EO/openeo-graph-engine/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// ConcatInput is the input shape for the 'text_concat' process.
type ConcatInput struct {
	Data      []string `cty:"data"`
	Separator string   `cty:"separator"`
}

// OnTextConcat is the handler for the 'text_concat' process.
func OnTextConcat(ctx context.Context, input *ConcatInput) (cty.Value, error) {
	return cty.StringVal(strings.Join(input.Data, input.Separator)), nil
}

// PatternInput is the input shape for the prefix and suffix processes.
type PatternInput struct {
	Data    string `cty:"data"`
	Pattern string `cty:"pattern"`
}

// OnTextBegins is the handler for the 'text_begins' process.
func OnTextBegins(ctx context.Context, input *PatternInput) (cty.Value, error) {
	return cty.BoolVal(strings.HasPrefix(input.Data, input.Pattern)), nil
}

// OnTextEnds is the handler for the 'text_ends' process.
func OnTextEnds(ctx context.Context, input *PatternInput) (cty.Value, error) {
	return cty.BoolVal(strings.HasSuffix(input.Data, input.Pattern)), nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterInvoker("OnTextConcat", &registry.Handler{
		NewInput:  func() any { return new(ConcatInput) },
		InputType: reflect.TypeOf(ConcatInput{}),
		Fn:        OnTextConcat,
	})
	r.RegisterInvoker("OnTextBegins", &registry.Handler{
		NewInput:  func() any { return new(PatternInput) },
		InputType: reflect.TypeOf(PatternInput{}),
		Fn:        OnTextBegins,
	})
	r.RegisterInvoker("OnTextEnds", &registry.Handler{
		NewInput:  func() any { return new(PatternInput) },
		InputType: reflect.TypeOf(PatternInput{}),
		Fn:        OnTextEnds,
	})
}
