package app

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ParseParams decodes a JSON object of parameter bindings into cty values,
// one per from_argument name. An empty input means no bindings.
func ParseParams(raw string) (map[string]cty.Value, error) {
	if raw == "" {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("params must be a JSON object: %w", err)
	}

	params := make(map[string]cty.Value, len(fields))
	for name, field := range fields {
		ty, err := ctyjson.ImpliedType(field)
		if err != nil {
			return nil, fmt.Errorf("parameter '%s': %w", name, err)
		}
		v, err := ctyjson.Unmarshal(field, ty)
		if err != nil {
			return nil, fmt.Errorf("parameter '%s': %w", name, err)
		}
		params[name] = v
	}
	return params, nil
}
