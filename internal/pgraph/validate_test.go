package pgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("single result node passes", func(t *testing.T) {
		g, errs := Decode([]byte(`{
			"a": {"process_id": "p", "arguments": {}},
			"b": {"process_id": "p", "arguments": {"x": {"from_node": "a"}}, "result": true}
		}`))
		require.Empty(t, errs)

		assert.Empty(t, g.Validate())
		assert.Equal(t, "b", g.Result)
	})

	t.Run("no result node", func(t *testing.T) {
		g, errs := Decode([]byte(`{
			"a": {"process_id": "p", "arguments": {}}
		}`))
		require.Empty(t, errs)

		verrs := g.Validate()
		require.Len(t, verrs, 1)
		assert.Equal(t, KindAmbiguousResult, verrs[0].Kind)
		assert.Contains(t, verrs[0].Message, "no node is marked")
	})

	t.Run("multiple result nodes", func(t *testing.T) {
		g, errs := Decode([]byte(`{
			"a": {"process_id": "p", "arguments": {}, "result": true},
			"b": {"process_id": "p", "arguments": {}, "result": true}
		}`))
		require.Empty(t, errs)

		verrs := g.Validate()
		require.Len(t, verrs, 1)
		assert.Equal(t, KindAmbiguousResult, verrs[0].Kind)
		assert.Contains(t, verrs[0].Message, "a")
		assert.Contains(t, verrs[0].Message, "b")
	})

	t.Run("dangling from_node reference", func(t *testing.T) {
		g, errs := Decode([]byte(`{
			"a": {"process_id": "p", "arguments": {"x": {"from_node": "ghost"}}, "result": true}
		}`))
		require.Empty(t, errs)

		verrs := g.Validate()
		require.Len(t, verrs, 1)
		assert.Equal(t, KindDanglingReference, verrs[0].Kind)
		assert.Equal(t, "a", verrs[0].Node)
		assert.Contains(t, verrs[0].Message, "ghost")
	})

	t.Run("all failures accumulate", func(t *testing.T) {
		g, errs := Decode([]byte(`{
			"a": {"process_id": "p", "arguments": {"x": {"from_node": "ghost"}}},
			"b": {"process_id": "p", "arguments": {"y": {"from_node": "phantom"}}}
		}`))
		require.Empty(t, errs)

		verrs := g.Validate()
		require.Len(t, verrs, 3)

		kinds := make(map[Kind]int)
		for _, err := range verrs {
			kinds[err.Kind]++
		}
		assert.Equal(t, 2, kinds[KindDanglingReference])
		assert.Equal(t, 1, kinds[KindAmbiguousResult])
	})
}
