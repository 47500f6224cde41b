package pgraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestDecode(t *testing.T) {
	t.Run("minimal graph", func(t *testing.T) {
		doc := []byte(`{
			"n1": {
				"process_id": "absolute",
				"arguments": {"x": -3},
				"result": true
			}
		}`)

		g, errs := Decode(doc)
		require.Empty(t, errs)
		require.Len(t, g.Nodes, 1)

		node := g.Nodes["n1"]
		require.NotNil(t, node)
		assert.Equal(t, "n1", node.ID)
		assert.Equal(t, "absolute", node.ProcessID)
		assert.True(t, node.Result)

		lit, ok := node.Arguments["x"].(Literal)
		require.True(t, ok)
		assert.True(t, lit.Value.RawEquals(cty.NumberIntVal(-3)))
	})

	t.Run("unparsable document", func(t *testing.T) {
		g, errs := Decode([]byte(`{"n1":`))
		assert.Nil(t, g)
		require.Len(t, errs, 1)
		assert.Equal(t, KindMalformedGraph, errs[0].Kind)
	})

	t.Run("missing process_id and arguments accumulate", func(t *testing.T) {
		doc := []byte(`{
			"a": {"arguments": {}, "result": true},
			"b": {"process_id": "sum"}
		}`)

		g, errs := Decode(doc)
		require.NotNil(t, g)
		require.Len(t, errs, 2)
		for _, err := range errs {
			assert.Equal(t, KindMalformedGraph, err.Kind)
		}
	})

	t.Run("from_node and from_argument references", func(t *testing.T) {
		doc := []byte(`{
			"load": {
				"process_id": "identity",
				"arguments": {"x": {"from_argument": "value"}}
			},
			"abs": {
				"process_id": "absolute",
				"arguments": {"x": {"from_node": "load"}},
				"result": true
			}
		}`)

		g, errs := Decode(doc)
		require.Empty(t, errs)

		ref, ok := g.Nodes["abs"].Arguments["x"].(NodeRef)
		require.True(t, ok)
		assert.Equal(t, "load", ref.Node)

		param, ok := g.Nodes["load"].Arguments["x"].(ParamRef)
		require.True(t, ok)
		assert.Equal(t, "value", param.Name)

		require.Len(t, g.Nodes["abs"].NodeRefs(), 1)
		assert.Equal(t, "load", g.Nodes["abs"].NodeRefs()[0].Target)
		require.Len(t, g.Nodes["load"].ParamRefs(), 1)
		assert.Equal(t, "value", g.Nodes["load"].ParamRefs()[0].Target)
	})

	t.Run("references nest inside arrays and objects", func(t *testing.T) {
		doc := []byte(`{
			"a": {"process_id": "sum", "arguments": {"data": [1, 2]}},
			"b": {
				"process_id": "sum",
				"arguments": {
					"data": [1, {"from_node": "a"}, {"nested": {"from_argument": "p"}}]
				},
				"result": true
			}
		}`)

		g, errs := Decode(doc)
		require.Empty(t, errs)

		b := g.Nodes["b"]
		list, ok := b.Arguments["data"].(List)
		require.True(t, ok)
		require.Len(t, list.Elems, 3)

		_, ok = list.Elems[0].(Literal)
		assert.True(t, ok)
		ref, ok := list.Elems[1].(NodeRef)
		require.True(t, ok)
		assert.Equal(t, "a", ref.Node)

		obj, ok := list.Elems[2].(Object)
		require.True(t, ok)
		_, ok = obj.Attrs["nested"].(ParamRef)
		assert.True(t, ok)

		// Reference paths point into the nested structure.
		if diff := cmp.Diff([]Ref{{Target: "a", Path: "data[1]"}}, b.NodeRefs()); diff != "" {
			t.Errorf("node refs mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]Ref{{Target: "p", Path: "data[2].nested"}}, b.ParamRefs()); diff != "" {
			t.Errorf("param refs mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("number literals keep precision", func(t *testing.T) {
		doc := []byte(`{
			"n": {"process_id": "absolute", "arguments": {"x": 0.1}, "result": true}
		}`)

		g, errs := Decode(doc)
		require.Empty(t, errs)

		lit := g.Nodes["n"].Arguments["x"].(Literal)
		f, _ := lit.Value.AsBigFloat().Float64()
		assert.InDelta(t, 0.1, f, 1e-15)
	})
}

func TestSortedIDs(t *testing.T) {
	doc := []byte(`{
		"c": {"process_id": "p", "arguments": {}},
		"a": {"process_id": "p", "arguments": {}},
		"b": {"process_id": "p", "arguments": {}, "result": true}
	}`)

	g, errs := Decode(doc)
	require.Empty(t, errs)
	assert.Equal(t, []string{"a", "b", "c"}, g.SortedIDs())
}
