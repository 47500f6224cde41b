// This file decodes user-defined process submissions. The wire shape
// follows the openEO API:
//
//	{
//	  "id": "evi",
//	  "summary": "Enhanced Vegetation Index",
//	  "parameters": [
//	    {"name": "nir", "schema": {"type": "number"}},
//	    {"name": "scale", "schema": {"type": "number"}, "optional": true, "default": 2.5}
//	  ],
//	  "returns": {"schema": {"type": "number"}},
//	  "process_graph": { ... }
//	}

package registry

import (
	"encoding/json"
	"fmt"

	"github.com/Open-EO/openeo-graph-engine/internal/pgraph"
	"github.com/Open-EO/openeo-graph-engine/internal/schema"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

type userParamBody struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Schema      json.RawMessage `json:"schema"`
	Optional    bool            `json:"optional"`
	Default     json.RawMessage `json:"default"`
}

type userProcessBody struct {
	ID           string          `json:"id"`
	Summary      string          `json:"summary"`
	Description  string          `json:"description"`
	Categories   []string        `json:"categories"`
	Deprecated   bool            `json:"deprecated"`
	Experimental bool            `json:"experimental"`
	Parameters   []userParamBody `json:"parameters"`
	Returns      *struct {
		Description string          `json:"description"`
		Schema      json.RawMessage `json:"schema"`
	} `json:"returns"`
	ProcessGraph json.RawMessage `json:"process_graph"`
}

// ParseUserDefined decodes and validates a user-defined process submission.
// The embedded process graph must pass the same structural validation as a
// directly submitted graph, and every from_argument reference inside it must
// name a declared parameter.
func ParseUserDefined(owner string, doc []byte) (*UserDefined, error) {
	var body userProcessBody
	if err := json.Unmarshal(doc, &body); err != nil {
		return nil, fmt.Errorf("user-defined process is not a JSON object: %w", err)
	}
	if body.ID == "" {
		return nil, fmt.Errorf("user-defined process is missing required field 'id'")
	}
	if len(body.ProcessGraph) == 0 {
		return nil, fmt.Errorf("user-defined process '%s' is missing required field 'process_graph'", body.ID)
	}

	spec := schema.ProcessSpec{
		ID:           body.ID,
		Summary:      body.Summary,
		Description:  body.Description,
		Categories:   body.Categories,
		Deprecated:   body.Deprecated,
		Experimental: body.Experimental,
	}

	declared := make(map[string]struct{}, len(body.Parameters))
	for i, pb := range body.Parameters {
		if pb.Name == "" {
			return nil, fmt.Errorf("user-defined process '%s': parameter %d is missing required field 'name'", body.ID, i)
		}
		declared[pb.Name] = struct{}{}

		param := schema.ParamSpec{
			Name:        pb.Name,
			Description: pb.Description,
			Optional:    pb.Optional,
			Type:        cty.DynamicPseudoType,
		}
		if len(pb.Schema) > 0 {
			sch, err := schema.CompileJSON(fmt.Sprintf("%s/parameters/%s/schema.json", body.ID, pb.Name), pb.Schema)
			if err != nil {
				return nil, fmt.Errorf("user-defined process '%s', parameter '%s': %w", body.ID, pb.Name, err)
			}
			param.Schema = sch
			param.Type = schema.TypeFromJSON(pb.Schema)
		}
		if len(pb.Default) > 0 {
			def, err := decodeJSONValue(pb.Default)
			if err != nil {
				return nil, fmt.Errorf("user-defined process '%s', parameter '%s': invalid default: %w", body.ID, pb.Name, err)
			}
			param.Default = &def
			param.Optional = true
		}
		spec.Params = append(spec.Params, param)
	}

	spec.Returns.Type = cty.DynamicPseudoType
	if body.Returns != nil {
		spec.Returns.Description = body.Returns.Description
		if len(body.Returns.Schema) > 0 {
			sch, err := schema.CompileJSON(body.ID+"/returns/schema.json", body.Returns.Schema)
			if err != nil {
				return nil, fmt.Errorf("user-defined process '%s': invalid return schema: %w", body.ID, err)
			}
			spec.Returns.Schema = sch
			spec.Returns.Type = schema.TypeFromJSON(body.Returns.Schema)
		}
	}

	graph, errs := pgraph.Decode(body.ProcessGraph)
	if graph != nil {
		errs = append(errs, graph.Validate()...)

		// Invariant: every from_argument reference inside the stored
		// graph resolves against the declared parameters.
		for _, id := range graph.SortedIDs() {
			for _, ref := range graph.Nodes[id].ParamRefs() {
				if _, ok := declared[ref.Target]; !ok {
					errs = append(errs, &pgraph.Error{
						Kind:     pgraph.KindDanglingReference,
						Node:     id,
						Argument: ref.Path,
						Message:  fmt.Sprintf("references undeclared parameter '%s'", ref.Target),
					})
				}
			}
		}
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, fmt.Errorf("user-defined process '%s' has an invalid process graph:\n%w", body.ID, err)
	}

	return &UserDefined{spec: spec, Owner: owner, Graph: graph}, nil
}

// decodeJSONValue converts a raw JSON value to a cty value with its implied
// type.
func decodeJSONValue(raw json.RawMessage) (cty.Value, error) {
	impliedType, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(raw, impliedType)
}
