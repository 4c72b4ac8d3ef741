package resultcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissThenSetThenHit(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Set("k", "v")
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestEvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	c.MaxSize = 2

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a becomes most-recently-used; b is now LRU
	c.Set("c", 3)

	assert.False(t, c.Has("b"))
	assert.True(t, c.Has("a"))
	assert.True(t, c.Has("c"))
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestExpiredEntryTreatedAsAbsent(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	c.TTL = time.Millisecond

	c.Set("k", "v")
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCleanupSweepsExpired(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	c.TTL = time.Millisecond

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(5 * time.Millisecond)

	c.Cleanup()
	assert.Equal(t, 0, c.Size())
	assert.Equal(t, int64(2), c.Stats().Expirations)
}

func TestDeleteAndClear(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	assert.False(t, c.Has("a"))
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestKeyIs16HexChars(t *testing.T) {
	k := Key("find auth", 10, 0.5, []string{"go"}, nil, nil, true)
	assert.Len(t, k, 16)
}
