package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	t.Run("zero is distinct from empty string by type only", func(t *testing.T) {
		assert.False(t, IntValue(0).Equal(StrValue("")))
		assert.False(t, IntValue(0).Equal(StrValue("0")))
		assert.True(t, IntValue(0).Equal(IntValue(0)))
	})

	t.Run("int parse of strings", func(t *testing.T) {
		i, ok := StrValue("42").Int()
		require.True(t, ok)
		assert.Equal(t, int64(42), i)

		_, ok = StrValue("x").Int()
		assert.False(t, ok)
	})

	t.Run("compare", func(t *testing.T) {
		assert.Equal(t, -1, IntValue(2).Compare(IntValue(10)))
		assert.Equal(t, 1, StrValue("b").Compare(StrValue("a")))
		assert.Equal(t, -1, IntValue(100).Compare(StrValue("a")))
		assert.Equal(t, 0, StrValue("a").Compare(StrValue("a")))
	})

	t.Run("value types", func(t *testing.T) {
		vt, err := ParseValueType("int")
		require.NoError(t, err)
		assert.Equal(t, ValueInt, vt)
		assert.Equal(t, "int", vt.String())

		_, err = ParseValueType("float")
		assert.Error(t, err)
	})
}

func TestSortedUnique(t *testing.T) {
	assert.Equal(t, []Node{1, 2, 5}, SortedUnique([]Node{5, 1, 2, 5, 1}))
	assert.Equal(t, []Node{3, 4}, NodesFromUint32([]uint32{3, 4}))
}
