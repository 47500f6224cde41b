// This file bridges the JSON Schema declarations of user-defined processes
// into the engine. openEO user-defined processes declare their parameters
// and return value as JSON Schema fragments; those are compiled once at
// registration and evaluated against live values at bind time.

package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// CompileJSON compiles a raw JSON Schema fragment under the given resource
// name. The name only serves error reporting and must be unique per compile.
func CompileJSON(name string, raw []byte) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("invalid JSON schema: %w", err)
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON schema: %w", err)
	}
	return sch, nil
}

// TypeFromJSON maps a JSON Schema fragment's "type" keyword to the closest
// cty type, used as the static type of user-defined process parameters.
// Anything without a single unambiguous primitive type stays dynamic and is
// checked by the compiled schema alone.
func TypeFromJSON(raw []byte) cty.Type {
	var probe struct {
		Type any `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return cty.DynamicPseudoType
	}
	name, _ := probe.Type.(string)
	switch name {
	case "number", "integer":
		return cty.Number
	case "string":
		return cty.String
	case "boolean":
		return cty.Bool
	default:
		return cty.DynamicPseudoType
	}
}

// validateJSON checks a cty value against a compiled JSON Schema by round-
// tripping it through its JSON wire representation.
func validateJSON(sch *jsonschema.Schema, v cty.Value) error {
	if v.IsNull() {
		return sch.Validate(nil)
	}
	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return fmt.Errorf("value is not representable as JSON: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("value is not representable as JSON: %w", err)
	}
	return sch.Validate(doc)
}
