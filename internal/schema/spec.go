package schema

import (
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/zclconf/go-cty/cty"
)

// ParamSpec is the declared specification of a single process parameter.
// This struct is the formal contract a caller's argument must satisfy; it is
// what makes argument errors detectable before the process implementation
// ever runs.
type ParamSpec struct {
	// Name is the parameter name arguments are bound by.
	Name string

	// Type is the cty type the bound value must conform to.
	// cty.DynamicPseudoType disables the static type check.
	Type cty.Type

	// Schema is an optional compiled JSON Schema the bound value must
	// additionally satisfy. It is non-nil for user-defined process
	// declarations, which arrive as JSON Schema fragments.
	Schema *jsonschema.Schema

	// Description is an optional markdown string describing the parameter.
	Description string

	// Optional marks a parameter the caller may omit.
	Optional bool

	// Default is the value bound when an optional parameter is omitted.
	// A nil Default together with Optional means the parameter simply
	// stays unbound.
	Default *cty.Value
}

// ReturnSpec is the declared specification of a process's return value.
type ReturnSpec struct {
	Type        cty.Type
	Schema      *jsonschema.Schema
	Description string
}

// ProcessSpec is the declared, immutable interface of a process: identity,
// listing metadata, ordered parameters, and return specification. Both
// built-in and user-defined process definitions carry one.
type ProcessSpec struct {
	ID           string
	Summary      string
	Description  string
	Categories   []string
	Deprecated   bool
	Experimental bool

	// Params preserves declaration order, which the binder reports
	// violations in.
	Params []ParamSpec

	Returns ReturnSpec
}

// Param returns the parameter spec with the given name, or nil.
func (s *ProcessSpec) Param(name string) *ParamSpec {
	for i := range s.Params {
		if s.Params[i].Name == name {
			return &s.Params[i]
		}
	}
	return nil
}
