package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_PutUpdatesExisting(t *testing.T) {
	c := NewLRU[string, string](2)
	c.Put("k", "old")
	c.Put("k", "new")

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_GetOrCompute(t *testing.T) {
	c := NewLRU[int, string](4)
	calls := 0
	compute := func() string {
		calls++
		return "rendered"
	}

	assert.Equal(t, "rendered", c.GetOrCompute(1, compute))
	assert.Equal(t, "rendered", c.GetOrCompute(1, compute))
	assert.Equal(t, 1, calls)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestLRU_DeleteAndPurge(t *testing.T) {
	c := NewLRU[string, int](0)
	c.Put("a", 1)
	c.Delete("a")
	assert.Equal(t, 0, c.Len())

	c.Put("b", 2)
	c.Purge()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("b")
	assert.False(t, ok)
}
