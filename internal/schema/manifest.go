// This file parses built-in process manifests: HCL files declaring a
// process's identity, parameters, return type, and the name of the Go
// handler implementing it.
//
// Why have a formal manifest at all, when the Go handler already defines an
// input struct? The manifest is the public contract of the process. Keeping
// it declarative lets the registry statically verify that contract against
// the compiled handler at startup, shifting a whole class of argument errors
// from evaluation time to process start.

package schema

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Manifest pairs a built-in process specification with the name of the
// registered Go handler that implements it.
type Manifest struct {
	Spec ProcessSpec

	// Invoke is the registered handler name from the lifecycle block.
	Invoke string

	// File is the manifest path, kept for error reporting.
	File string
}

var manifestFileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "process", LabelNames: []string{"id"}},
	},
}

var processBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "summary"},
		{Name: "description"},
		{Name: "categories"},
		{Name: "deprecated"},
		{Name: "experimental"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "lifecycle"},
		{Type: "param", LabelNames: []string{"name"}},
		{Type: "returns"},
	},
}

var lifecycleBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "invoke", Required: true},
	},
}

var paramBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		// `type` is required, but we check for its existence manually
		// to provide a better error message.
		{Name: "type"},
		{Name: "description"},
		{Name: "optional"},
		{Name: "default"},
	},
}

var returnsBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "type", Required: true},
		{Name: "description"},
	},
}

// ParseManifestFile parses a single manifest file into its process
// manifests. HCL diagnostics are returned as the error.
func ParseManifestFile(parser *hclparse.Parser, path string) ([]*Manifest, error) {
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest file %s: %w", path, diags)
	}
	manifests, diags := DecodeManifests(file, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid manifest file %s: %w", path, diags)
	}
	return manifests, nil
}

// DecodeManifests decodes all `process` blocks from a parsed manifest file.
func DecodeManifests(file *hcl.File, path string) ([]*Manifest, hcl.Diagnostics) {
	content, diags := file.Body.Content(manifestFileSchema)

	var manifests []*Manifest
	for _, block := range content.Blocks {
		manifest, blockDiags := decodeProcessBlock(block, path)
		diags = append(diags, blockDiags...)
		if manifest != nil {
			manifests = append(manifests, manifest)
		}
	}
	return manifests, diags
}

func decodeProcessBlock(block *hcl.Block, path string) (*Manifest, hcl.Diagnostics) {
	content, diags := block.Body.Content(processBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	manifest := &Manifest{
		Spec: ProcessSpec{ID: block.Labels[0]},
		File: path,
	}

	for name, target := range map[string]*string{
		"summary":     &manifest.Spec.Summary,
		"description": &manifest.Spec.Description,
	} {
		if attr, ok := content.Attributes[name]; ok {
			diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, target)...)
		}
	}
	if attr, ok := content.Attributes["categories"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &manifest.Spec.Categories)...)
	}
	for name, target := range map[string]*bool{
		"deprecated":   &manifest.Spec.Deprecated,
		"experimental": &manifest.Spec.Experimental,
	} {
		if attr, ok := content.Attributes[name]; ok {
			diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, target)...)
		}
	}

	seenLifecycle := false
	seenReturns := false
	seenParams := make(map[string]struct{})

	for _, inner := range content.Blocks {
		switch inner.Type {
		case "lifecycle":
			if seenLifecycle {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate lifecycle block",
					Detail:   "Only one lifecycle block is allowed per process.",
					Subject:  &inner.DefRange,
				})
				continue
			}
			seenLifecycle = true
			lcContent, lcDiags := inner.Body.Content(lifecycleBodySchema)
			diags = append(diags, lcDiags...)
			if lcDiags.HasErrors() {
				continue
			}
			diags = append(diags, gohcl.DecodeExpression(lcContent.Attributes["invoke"].Expr, nil, &manifest.Invoke)...)

		case "param":
			paramName := inner.Labels[0]
			if _, exists := seenParams[paramName]; exists {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate param definition",
					Detail:   fmt.Sprintf("A param named '%s' has already been defined.", paramName),
					Subject:  &inner.DefRange,
				})
				continue
			}
			seenParams[paramName] = struct{}{}

			param, paramDiags := decodeParamBlock(inner, paramName)
			diags = append(diags, paramDiags...)
			if param != nil {
				manifest.Spec.Params = append(manifest.Spec.Params, *param)
			}

		case "returns":
			if seenReturns {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate returns block",
					Detail:   "Only one returns block is allowed per process.",
					Subject:  &inner.DefRange,
				})
				continue
			}
			seenReturns = true

			retContent, retDiags := inner.Body.Content(returnsBodySchema)
			diags = append(diags, retDiags...)
			if retDiags.HasErrors() {
				continue
			}
			retType, err := typeExprToCtyType(retContent.Attributes["type"].Expr)
			if err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid return type",
					Detail:   err.Error(),
					Subject:  retContent.Attributes["type"].Expr.Range().Ptr(),
				})
				continue
			}
			manifest.Spec.Returns.Type = retType
			if attr, ok := retContent.Attributes["description"]; ok {
				diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &manifest.Spec.Returns.Description)...)
			}
		}
	}

	if !seenLifecycle {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing lifecycle block",
			Detail:   fmt.Sprintf("Process '%s' declares no lifecycle block naming its handler.", manifest.Spec.ID),
			Subject:  &block.DefRange,
		})
	}
	if !seenReturns {
		manifest.Spec.Returns.Type = cty.DynamicPseudoType
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return manifest, diags
}

func decodeParamBlock(block *hcl.Block, name string) (*ParamSpec, hcl.Diagnostics) {
	content, diags := block.Body.Content(paramBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	// Manually check for the required 'type' attribute for a better error.
	typeAttr, ok := content.Attributes["type"]
	if !ok {
		missingItemRange := block.Body.MissingItemRange()
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing 'type' attribute",
			Detail:   "The 'type' attribute is required for all param blocks.",
			Subject:  &missingItemRange,
		})
		return nil, diags
	}

	ctyType, err := typeExprToCtyType(typeAttr.Expr)
	if err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid param type",
			Detail:   err.Error(),
			Subject:  typeAttr.Expr.Range().Ptr(),
		})
		return nil, diags
	}

	param := &ParamSpec{Name: name, Type: ctyType}

	if attr, ok := content.Attributes["description"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &param.Description)...)
	}
	if attr, ok := content.Attributes["optional"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &param.Optional)...)
	}

	if attr, ok := content.Attributes["default"]; ok {
		// A nil eval context is used because defaults must be literal values.
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			return nil, diags
		}

		// Ensure the default value's type conforms to the declared type.
		converted, err := convert.Convert(val, ctyType)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid default value type",
				Detail:   fmt.Sprintf("The default value for '%s' is not compatible with its type, '%s'.", name, ctyType.FriendlyName()),
				Subject:  attr.Expr.Range().Ptr(),
			})
			return nil, diags
		}
		param.Default = &converted
		// A declared default implies the caller may omit the parameter.
		param.Optional = true
	}

	return param, diags
}
