package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestParseParams(t *testing.T) {
	t.Run("empty input means no bindings", func(t *testing.T) {
		params, err := ParseParams("")
		require.NoError(t, err)
		assert.Nil(t, params)
	})

	t.Run("mixed value types", func(t *testing.T) {
		params, err := ParseParams(`{"nir": 0.5, "name": "b04", "flag": true, "data": [1, 2]}`)
		require.NoError(t, err)
		require.Len(t, params, 4)

		f, _ := params["nir"].AsBigFloat().Float64()
		assert.InDelta(t, 0.5, f, 1e-12)
		assert.True(t, params["name"].RawEquals(cty.StringVal("b04")))
		assert.True(t, params["flag"].RawEquals(cty.True))
		assert.True(t, params["data"].Type().IsTupleType())
	})

	t.Run("non-object input rejected", func(t *testing.T) {
		_, err := ParseParams(`[1, 2]`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JSON object")
	})
}

func TestNewConfig(t *testing.T) {
	t.Run("graph path required", func(t *testing.T) {
		_, err := NewConfig(Config{})
		require.Error(t, err)
	})

	t.Run("valid config passes through", func(t *testing.T) {
		cfg, err := NewConfig(Config{GraphPath: "graph.json"})
		require.NoError(t, err)
		assert.Equal(t, "graph.json", cfg.GraphPath)
	})
}
