package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/Open-EO/openeo-graph-engine/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Validate performs a strict parity check between process manifests and Go
// handlers. It checks both the presence of parameters on each side and the
// compatibility of their types, so a drifted manifest is caught at startup
// instead of surfacing as a confusing evaluation failure.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.builtins))
	for id := range r.builtins {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		builtin := r.builtins[id]
		if builtin.handler == nil {
			errs = append(errs, fmt.Sprintf("process '%s': manifest names handler '%s' which is not registered", id, builtin.unboundInvoke))
			continue
		}

		manifestParams := make(map[string]struct{}, len(builtin.spec.Params))
		for _, p := range builtin.spec.Params {
			manifestParams[p.Name] = struct{}{}
		}

		goInputs := make(map[string]reflect.StructField)
		inputType := builtin.handler.InputType
		for i := 0; i < inputType.NumField(); i++ {
			field := inputType.Field(i)
			if !field.IsExported() {
				continue
			}
			tagName := strings.Split(field.Tag.Get("cty"), ",")[0]
			if tagName != "" && tagName != "-" {
				goInputs[tagName] = field
			}
		}

		// Check for presence mismatches.
		for name := range goInputs {
			if _, ok := manifestParams[name]; !ok {
				errs = append(errs, fmt.Sprintf("process '%s': Go struct has field for param '%s' which is not declared in manifest", id, name))
			}
		}
		for _, paramDef := range builtin.spec.Params {
			if _, ok := goInputs[paramDef.Name]; !ok {
				errs = append(errs, fmt.Sprintf("process '%s': manifest declares param '%s' which is not found in Go struct", id, paramDef.Name))
			}
		}

		// Check for type mismatches.
		for _, paramDef := range builtin.spec.Params {
			goField, ok := goInputs[paramDef.Name]
			if !ok {
				continue // Already handled by presence check.
			}

			if goField.Type == ctyValueType {
				// Dynamic passthrough field; the declared type is
				// checked against live values at bind time instead.
				continue
			}
			if paramDef.Type.Equals(cty.DynamicPseudoType) {
				logger.Warn("Manifest param with 'type = any' on a statically typed Go field disables static checking. Consider a specific type like 'string', 'number', or 'bool'.",
					"process", id, "param", paramDef.Name)
				continue
			}

			// Infer type from the Go field.
			goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
			if err != nil {
				errs = append(errs, fmt.Sprintf("process '%s', param '%s': could not imply cty type from Go field type %s: %v", id, paramDef.Name, goField.Type, err))
				continue
			}

			// The core type check.
			if !paramDef.Type.Equals(goFieldType) {
				errs = append(errs, fmt.Sprintf("process '%s', param '%s': type mismatch. Manifest requires '%s' but Go struct field '%s' provides type '%s'",
					id, paramDef.Name, paramDef.Type.FriendlyName(), goField.Name, goFieldType.FriendlyName()))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}
