package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Open-EO/openeo-graph-engine/internal/pgraph"
)

func decode(t *testing.T, doc string) *pgraph.Graph {
	t.Helper()
	g, errs := pgraph.Decode([]byte(doc))
	require.Empty(t, errs)
	return g
}

func TestBuild(t *testing.T) {
	t.Run("linear chain", func(t *testing.T) {
		g, err := Build(decode(t, `{
			"a": {"process_id": "p", "arguments": {}},
			"b": {"process_id": "p", "arguments": {"x": {"from_node": "a"}}},
			"c": {"process_id": "p", "arguments": {"x": {"from_node": "b"}}, "result": true}
		}`))
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b", "c"}, g.TopoOrder())
		assert.Equal(t, int32(0), g.Nodes["a"].DepCount())
		assert.Equal(t, int32(1), g.Nodes["b"].DepCount())
		assert.Contains(t, g.Nodes["a"].Dependents, "b")
		assert.Contains(t, g.Nodes["c"].Deps, "b")
	})

	t.Run("diamond orders deterministically", func(t *testing.T) {
		doc := `{
			"root": {"process_id": "p", "arguments": {}},
			"left": {"process_id": "p", "arguments": {"x": {"from_node": "root"}}},
			"right": {"process_id": "p", "arguments": {"x": {"from_node": "root"}}},
			"join": {
				"process_id": "p",
				"arguments": {"data": [{"from_node": "left"}, {"from_node": "right"}]},
				"result": true
			}
		}`

		first, err := Build(decode(t, doc))
		require.NoError(t, err)

		// Identical documents produce identical orders, run over run.
		for i := 0; i < 10; i++ {
			g, err := Build(decode(t, doc))
			require.NoError(t, err)
			assert.Equal(t, first.TopoOrder(), g.TopoOrder())
		}

		assert.Equal(t, int32(2), first.Nodes["join"].DepCount())
	})

	t.Run("duplicate references collapse to one edge", func(t *testing.T) {
		g, err := Build(decode(t, `{
			"a": {"process_id": "p", "arguments": {}},
			"b": {
				"process_id": "p",
				"arguments": {"data": [{"from_node": "a"}, {"from_node": "a"}]},
				"result": true
			}
		}`))
		require.NoError(t, err)
		assert.Equal(t, int32(1), g.Nodes["b"].DepCount())
	})

	t.Run("self reference is a one-node cycle", func(t *testing.T) {
		_, err := Build(decode(t, `{
			"a": {"process_id": "p", "arguments": {"x": {"from_node": "a"}}, "result": true}
		}`))
		require.Error(t, err)

		errs := pgraph.AsList(err)
		require.Len(t, errs, 1)
		assert.Equal(t, pgraph.KindCyclicDependency, errs[0].Kind)
		assert.Contains(t, errs[0].Message, "a -> a")
	})

	t.Run("two-node cycle names the chain", func(t *testing.T) {
		_, err := Build(decode(t, `{
			"a": {"process_id": "p", "arguments": {"x": {"from_node": "b"}}, "result": true},
			"b": {"process_id": "p", "arguments": {"x": {"from_node": "a"}}}
		}`))
		require.Error(t, err)

		errs := pgraph.AsList(err)
		require.Len(t, errs, 1)
		assert.Equal(t, pgraph.KindCyclicDependency, errs[0].Kind)
		assert.Contains(t, errs[0].Message, "cyclic reference chain")
		assert.Contains(t, errs[0].Message, "a")
		assert.Contains(t, errs[0].Message, "b")
	})

	t.Run("dangling references accumulate", func(t *testing.T) {
		_, err := Build(decode(t, `{
			"a": {"process_id": "p", "arguments": {"x": {"from_node": "ghost"}}},
			"b": {"process_id": "p", "arguments": {"x": {"from_node": "phantom"}}, "result": true}
		}`))
		require.Error(t, err)

		errs := pgraph.AsList(err)
		require.Len(t, errs, 2)
		for _, e := range errs {
			assert.Equal(t, pgraph.KindDanglingReference, e.Kind)
		}
	})
}
