// Package arrays provides the array access built-in processes. Their data
// parameter is dynamically typed so mixed-type tuples pass through without a
// list element type forcing a conversion.
package arrays

import (
	"context"
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"

	"github.com/Open-EO/openeo-graph-engine/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

func elementsOf(data cty.Value) ([]cty.Value, error) {
	if data.IsNull() {
		return nil, fmt.Errorf("data must not be null")
	}
	ty := data.Type()
	if !ty.IsTupleType() && !ty.IsListType() && !ty.IsSetType() {
		return nil, fmt.Errorf("data must be an array, got %s", ty.FriendlyName())
	}
	var elems []cty.Value
	for it := data.ElementIterator(); it.Next(); {
		_, v := it.Element()
		elems = append(elems, v)
	}
	return elems, nil
}

// ElementInput is the input shape for the 'array_element' process.
type ElementInput struct {
	Data         cty.Value `cty:"data"`
	Index        int       `cty:"index"`
	ReturnNodata bool      `cty:"return_nodata"`
}

// OnArrayElement is the handler for the 'array_element' process. An index
// out of bounds is an error unless return_nodata asks for a null instead.
func OnArrayElement(ctx context.Context, input *ElementInput) (cty.Value, error) {
	elems, err := elementsOf(input.Data)
	if err != nil {
		return cty.NilVal, err
	}
	if input.Index < 0 || input.Index >= len(elems) {
		if input.ReturnNodata {
			return cty.NullVal(cty.DynamicPseudoType), nil
		}
		return cty.NilVal, fmt.Errorf("index %d out of bounds for array of length %d", input.Index, len(elems))
	}
	return elems[input.Index], nil
}

// ContainsInput is the input shape for the 'array_contains' process.
type ContainsInput struct {
	Data  cty.Value `cty:"data"`
	Value cty.Value `cty:"value"`
}

// OnArrayContains is the handler for the 'array_contains' process.
func OnArrayContains(ctx context.Context, input *ContainsInput) (cty.Value, error) {
	elems, err := elementsOf(input.Data)
	if err != nil {
		return cty.NilVal, err
	}
	for _, v := range elems {
		if v.RawEquals(input.Value) {
			return cty.True, nil
		}
	}
	return cty.False, nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterInvoker("OnArrayElement", &registry.Handler{
		NewInput:  func() any { return new(ElementInput) },
		InputType: reflect.TypeOf(ElementInput{}),
		Fn:        OnArrayElement,
	})
	r.RegisterInvoker("OnArrayContains", &registry.Handler{
		NewInput:  func() any { return new(ContainsInput) },
		InputType: reflect.TypeOf(ContainsInput{}),
		Fn:        OnArrayContains,
	})
}
