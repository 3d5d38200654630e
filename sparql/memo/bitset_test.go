package memo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_BasicOps(t *testing.T) {
	s := NewSet(0, 2, 4)
	assert.True(t, s.Contains(0))
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(4))
	assert.False(t, s.Contains(1))
	assert.Equal(t, 3, s.Count())
	assert.Equal(t, []int{0, 2, 4}, s.Bits())
}

func TestSet_UnionIntersectMinus(t *testing.T) {
	a := NewSet(0, 1, 2)
	b := NewSet(2, 3)

	assert.Equal(t, NewSet(0, 1, 2, 3), a.Union(b))
	assert.Equal(t, NewSet(2), a.Intersect(b))
	assert.Equal(t, NewSet(0, 1), a.Minus(b))
	assert.False(t, a.Disjoint(b))
	assert.True(t, NewSet(0).Disjoint(NewSet(1)))
}

func TestSet_IsSubsetOf(t *testing.T) {
	assert.True(t, NewSet(1, 2).IsSubsetOf(NewSet(1, 2, 3)))
	assert.False(t, NewSet(1, 4).IsSubsetOf(NewSet(1, 2, 3)))
}

func TestSet_IsEmpty(t *testing.T) {
	var s Set
	assert.True(t, s.IsEmpty())
	assert.False(t, NewSet(0).IsEmpty())
}

func TestSet_String(t *testing.T) {
	assert.Equal(t, "0", Set(0).String())
	assert.Equal(t, "101", NewSet(0, 2).String())
}

func TestCheckNodeCount(t *testing.T) {
	require.NoError(t, CheckNodeCount(MaxNodes))
	require.Error(t, CheckNodeCount(MaxNodes+1))
}
