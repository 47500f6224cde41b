package schema

import (
	"testing"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func parseManifest(t *testing.T, src string) []*Manifest {
	t.Helper()
	file, diags := hclparse.NewParser().ParseHCL([]byte(src), "test.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	manifests, diags := DecodeManifests(file, "test.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	return manifests
}

func TestDecodeManifests(t *testing.T) {
	t.Run("full process declaration", func(t *testing.T) {
		manifests := parseManifest(t, `
process "power" {
  summary    = "Raise a base to a power"
  categories = ["math", "exponential"]

  lifecycle {
    invoke = "OnPower"
  }

  param "base" {
    type = number
  }

  param "p" {
    type        = number
    description = "The exponent."
  }

  returns {
    type = number
  }
}
`)
		require.Len(t, manifests, 1)
		m := manifests[0]

		assert.Equal(t, "power", m.Spec.ID)
		assert.Equal(t, "OnPower", m.Invoke)
		assert.Equal(t, []string{"math", "exponential"}, m.Spec.Categories)
		assert.Equal(t, cty.Number, m.Spec.Returns.Type)

		require.Len(t, m.Spec.Params, 2)
		assert.Equal(t, "base", m.Spec.Params[0].Name)
		assert.Equal(t, cty.Number, m.Spec.Params[0].Type)
		assert.False(t, m.Spec.Params[0].Optional)
		assert.Equal(t, "The exponent.", m.Spec.Params[1].Description)
	})

	t.Run("collection and dynamic types", func(t *testing.T) {
		manifests := parseManifest(t, `
process "array_element" {
  lifecycle {
    invoke = "OnArrayElement"
  }

  param "data" {
    type = any
  }

  param "values" {
    type = list(number)
  }

  returns {
    type = any
  }
}
`)
		params := manifests[0].Spec.Params
		assert.Equal(t, cty.DynamicPseudoType, params[0].Type)
		assert.Equal(t, cty.List(cty.Number), params[1].Type)
		assert.Equal(t, cty.DynamicPseudoType, manifests[0].Spec.Returns.Type)
	})

	t.Run("default implies optional", func(t *testing.T) {
		manifests := parseManifest(t, `
process "text_concat" {
  lifecycle {
    invoke = "OnTextConcat"
  }

  param "separator" {
    type    = string
    default = ""
  }

  returns {
    type = string
  }
}
`)
		p := manifests[0].Spec.Params[0]
		assert.True(t, p.Optional)
		require.NotNil(t, p.Default)
		assert.True(t, p.Default.RawEquals(cty.StringVal("")))
	})

	t.Run("missing lifecycle block", func(t *testing.T) {
		file, diags := hclparse.NewParser().ParseHCL([]byte(`
process "orphan" {
  returns {
    type = number
  }
}
`), "test.hcl")
		require.False(t, diags.HasErrors())

		_, diags = DecodeManifests(file, "test.hcl")
		require.True(t, diags.HasErrors())
		assert.Contains(t, diags.Error(), "lifecycle")
	})

	t.Run("missing param type", func(t *testing.T) {
		file, diags := hclparse.NewParser().ParseHCL([]byte(`
process "bad" {
  lifecycle {
    invoke = "OnBad"
  }

  param "x" {
    description = "no type given"
  }

  returns {
    type = number
  }
}
`), "test.hcl")
		require.False(t, diags.HasErrors())

		_, diags = DecodeManifests(file, "test.hcl")
		require.True(t, diags.HasErrors())
		assert.Contains(t, diags.Error(), "type")
	})

	t.Run("duplicate param definition", func(t *testing.T) {
		file, diags := hclparse.NewParser().ParseHCL([]byte(`
process "bad" {
  lifecycle {
    invoke = "OnBad"
  }

  param "x" {
    type = number
  }

  param "x" {
    type = number
  }

  returns {
    type = number
  }
}
`), "test.hcl")
		require.False(t, diags.HasErrors())

		_, diags = DecodeManifests(file, "test.hcl")
		require.True(t, diags.HasErrors())
		assert.Contains(t, diags.Error(), "Duplicate param")
	})
}
