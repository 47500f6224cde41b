package registry_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/Open-EO/openeo-graph-engine/internal/memstore"
	"github.com/Open-EO/openeo-graph-engine/internal/registry"
)

type doubleInput struct {
	X float64 `cty:"x"`
}

func onDouble(ctx context.Context, input *doubleInput) (cty.Value, error) {
	return cty.NumberFloatVal(input.X * 2), nil
}

func doubleHandler() *registry.Handler {
	return &registry.Handler{
		NewInput:  func() any { return new(doubleInput) },
		InputType: reflect.TypeOf(doubleInput{}),
		Fn:        onDouble,
	}
}

func writeManifest(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.hcl"), []byte(src), 0o644))
	return dir
}

const doubleManifest = `
process "double" {
  lifecycle {
    invoke = "OnDouble"
  }

  param "x" {
    type = number
  }

  returns {
    type = number
  }
}
`

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New(memstore.New())
	reg.RegisterInvoker("OnDouble", doubleHandler())
	require.NoError(t, reg.LoadManifests(context.Background(), writeManifest(t, doubleManifest)))
	return reg
}

func TestRegisterInvoker(t *testing.T) {
	t.Run("duplicate name panics", func(t *testing.T) {
		reg := registry.New(memstore.New())
		reg.RegisterInvoker("OnDouble", doubleHandler())
		assert.Panics(t, func() {
			reg.RegisterInvoker("OnDouble", doubleHandler())
		})
	})

	t.Run("malformed handler signature panics", func(t *testing.T) {
		reg := registry.New(memstore.New())
		assert.Panics(t, func() {
			reg.RegisterInvoker("OnBroken", &registry.Handler{
				NewInput:  func() any { return new(doubleInput) },
				InputType: reflect.TypeOf(doubleInput{}),
				Fn:        func(input *doubleInput) cty.Value { return cty.NilVal },
			})
		})
	})
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("matching manifest and handler passes", func(t *testing.T) {
		reg := newTestRegistry(t)
		assert.NoError(t, reg.Validate(ctx))
	})

	t.Run("manifest naming unregistered handler fails", func(t *testing.T) {
		reg := registry.New(memstore.New())
		require.NoError(t, reg.LoadManifests(ctx, writeManifest(t, doubleManifest)))

		err := reg.Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not registered")
	})

	t.Run("manifest param missing from struct fails", func(t *testing.T) {
		reg := registry.New(memstore.New())
		reg.RegisterInvoker("OnDouble", doubleHandler())
		require.NoError(t, reg.LoadManifests(ctx, writeManifest(t, `
process "double" {
  lifecycle {
    invoke = "OnDouble"
  }

  param "x" {
    type = number
  }

  param "scale" {
    type = number
  }

  returns {
    type = number
  }
}
`)))

		err := reg.Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "'scale'")
		assert.Contains(t, err.Error(), "not found in Go struct")
	})

	t.Run("type mismatch fails", func(t *testing.T) {
		reg := registry.New(memstore.New())
		reg.RegisterInvoker("OnDouble", doubleHandler())
		require.NoError(t, reg.LoadManifests(ctx, writeManifest(t, `
process "double" {
  lifecycle {
    invoke = "OnDouble"
  }

  param "x" {
    type = string
  }

  returns {
    type = number
  }
}
`)))

		err := reg.Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "type mismatch")
	})
}

func TestLoadManifests(t *testing.T) {
	t.Run("duplicate process id across files fails", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(doubleManifest), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.hcl"), []byte(doubleManifest), 0o644))

		reg := registry.New(memstore.New())
		reg.RegisterInvoker("OnDouble", doubleHandler())
		err := reg.LoadManifests(context.Background(), dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "declared more than once")
	})
}

const eviDocument = `{
	"id": "double_plus_one",
	"summary": "Twice the input plus one",
	"parameters": [
		{"name": "x", "schema": {"type": "number"}}
	],
	"returns": {"schema": {"type": "number"}},
	"process_graph": {
		"d": {"process_id": "double", "arguments": {"x": {"from_argument": "x"}}},
		"r": {"process_id": "double", "arguments": {"x": {"from_node": "d"}}, "result": true}
	}
}`

func TestUserDefined(t *testing.T) {
	ctx := context.Background()

	t.Run("valid submission round-trips", func(t *testing.T) {
		reg := newTestRegistry(t)

		proc, err := reg.PutUserDefined(ctx, "alice", []byte(eviDocument))
		require.NoError(t, err)
		assert.Equal(t, "double_plus_one", proc.Spec().ID)
		assert.Equal(t, "alice", proc.Owner)
		require.Len(t, proc.Spec().Params, 1)
		assert.Equal(t, cty.Number, proc.Spec().Params[0].Type)
	})

	t.Run("builtin id collision rejected", func(t *testing.T) {
		reg := newTestRegistry(t)

		_, err := reg.PutUserDefined(ctx, "alice", []byte(`{
			"id": "double",
			"process_graph": {
				"r": {"process_id": "double", "arguments": {"x": 1}, "result": true}
			}
		}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reserved by a built-in")
	})

	t.Run("undeclared parameter reference rejected", func(t *testing.T) {
		reg := newTestRegistry(t)

		_, err := reg.PutUserDefined(ctx, "alice", []byte(`{
			"id": "broken",
			"parameters": [{"name": "x", "schema": {"type": "number"}}],
			"process_graph": {
				"r": {"process_id": "double", "arguments": {"x": {"from_argument": "y"}}, "result": true}
			}
		}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "undeclared parameter 'y'")
	})

	t.Run("embedded graph must be structurally valid", func(t *testing.T) {
		reg := newTestRegistry(t)

		_, err := reg.PutUserDefined(ctx, "alice", []byte(`{
			"id": "broken",
			"process_graph": {
				"a": {"process_id": "double", "arguments": {"x": 1}, "result": true},
				"b": {"process_id": "double", "arguments": {"x": 2}, "result": true}
			}
		}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "result")
	})
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves builtins and user-defined", func(t *testing.T) {
		reg := newTestRegistry(t)
		_, err := reg.PutUserDefined(ctx, "alice", []byte(eviDocument))
		require.NoError(t, err)

		snap, err := reg.Snapshot(ctx)
		require.NoError(t, err)

		_, ok := snap.Lookup("double")
		assert.True(t, ok)
		_, ok = snap.Lookup("double_plus_one")
		assert.True(t, ok)
		_, ok = snap.Lookup("ghost")
		assert.False(t, ok)
	})

	t.Run("isolated from later mutations", func(t *testing.T) {
		reg := newTestRegistry(t)
		_, err := reg.PutUserDefined(ctx, "alice", []byte(eviDocument))
		require.NoError(t, err)

		snap, err := reg.Snapshot(ctx)
		require.NoError(t, err)

		require.NoError(t, reg.DeleteUserDefined(ctx, "alice", "double_plus_one"))

		// The snapshot still serves the definition it froze.
		_, ok := snap.Lookup("double_plus_one")
		assert.True(t, ok)

		fresh, err := reg.Snapshot(ctx)
		require.NoError(t, err)
		_, ok = fresh.Lookup("double_plus_one")
		assert.False(t, ok)
	})
}
