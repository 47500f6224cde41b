package schema

import (
	"fmt"
	"sort"

	"github.com/Open-EO/openeo-graph-engine/internal/pgraph"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Bind validates a mapping of supplied argument values against a process
// specification. It checks presence of all non-optional parameters, applies
// declared defaults for absent optional ones, and structurally validates each
// supplied value. Every violation found is reported, not just the first.
//
// The returned mapping contains the checked values with defaults applied.
// Optional parameters with neither a supplied value nor a default stay
// unbound; referencing one from inside a user-defined process graph surfaces
// later as an UnboundParameter failure.
func Bind(spec *ProcessSpec, node string, supplied map[string]cty.Value) (map[string]cty.Value, pgraph.ErrorList) {
	var errs pgraph.ErrorList
	bound := make(map[string]cty.Value, len(spec.Params))
	declared := make(map[string]struct{}, len(spec.Params))

	for i := range spec.Params {
		p := &spec.Params[i]
		declared[p.Name] = struct{}{}

		v, ok := supplied[p.Name]
		if !ok {
			if p.Default != nil {
				bound[p.Name] = *p.Default
				continue
			}
			if p.Optional {
				continue
			}
			errs = append(errs, &pgraph.Error{
				Kind:     pgraph.KindSchemaViolation,
				Node:     node,
				Argument: p.Name,
				Message:  fmt.Sprintf("missing required parameter of process '%s'", spec.ID),
			})
			continue
		}

		checked, err := p.Check(v)
		if err != nil {
			errs = append(errs, &pgraph.Error{
				Kind:     pgraph.KindSchemaViolation,
				Node:     node,
				Argument: p.Name,
				Cause:    err,
			})
			continue
		}
		bound[p.Name] = checked
	}

	// Undeclared arguments are rejected rather than silently dropped;
	// they usually indicate a typo in the argument name.
	undeclared := make([]string, 0)
	for name := range supplied {
		if _, ok := declared[name]; !ok {
			undeclared = append(undeclared, name)
		}
	}
	sort.Strings(undeclared)
	for _, name := range undeclared {
		errs = append(errs, &pgraph.Error{
			Kind:     pgraph.KindSchemaViolation,
			Node:     node,
			Argument: name,
			Message:  fmt.Sprintf("not a declared parameter of process '%s'", spec.ID),
		})
	}

	return bound, errs
}

// Check validates one value against the parameter's declared type and JSON
// Schema, returning the value converted to the declared type.
func (p *ParamSpec) Check(v cty.Value) (cty.Value, error) {
	out := v
	if p.Type != cty.NilType && !p.Type.Equals(cty.DynamicPseudoType) {
		// convert.Convert lets a null through as a typed null, which
		// would silently decode onto a handler field as its zero
		// value. A JSON Schema declaration decides for itself below.
		if v.IsNull() && p.Schema == nil {
			return cty.NilVal, fmt.Errorf("null is not a valid %s", p.Type.FriendlyName())
		}
		converted, err := convert.Convert(v, p.Type)
		if err != nil {
			return cty.NilVal, fmt.Errorf("value does not conform to declared type %s: %w", p.Type.FriendlyName(), err)
		}
		out = converted
	}
	if p.Schema != nil {
		if err := validateJSON(p.Schema, out); err != nil {
			return cty.NilVal, err
		}
	}
	return out, nil
}

// CheckReturn validates a process's return value against its declared return
// specification, distinguishing return-side violations from argument-side
// ones in the reported error.
func CheckReturn(spec *ProcessSpec, node string, v cty.Value) (cty.Value, *pgraph.Error) {
	out := v
	ret := spec.Returns

	if ret.Type != cty.NilType && !ret.Type.Equals(cty.DynamicPseudoType) && !v.IsNull() {
		converted, err := convert.Convert(v, ret.Type)
		if err != nil {
			return cty.NilVal, &pgraph.Error{
				Kind:    pgraph.KindSchemaViolation,
				Node:    node,
				Message: fmt.Sprintf("return value of process '%s' does not conform to declared type %s", spec.ID, ret.Type.FriendlyName()),
				Cause:   err,
			}
		}
		out = converted
	}
	if ret.Schema != nil {
		if err := validateJSON(ret.Schema, out); err != nil {
			return cty.NilVal, &pgraph.Error{
				Kind:    pgraph.KindSchemaViolation,
				Node:    node,
				Message: fmt.Sprintf("return value of process '%s' fails its declared schema", spec.ID),
				Cause:   err,
			}
		}
	}
	return out, nil
}
