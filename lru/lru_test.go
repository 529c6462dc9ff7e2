package lru_test

import (
	"testing"

	"github.com/0xsequence/hyperrpc-gateway/lru"
	"github.com/stretchr/testify/require"
)

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := lru.New[int, string](2)
	c.Put(1, "a")
	c.Put(2, "b")
	_, _ = c.Get(1) // 1 is now more recently used than 2
	c.Put(3, "c")   // evicts 2, the least recently used

	_, ok := c.Get(2)
	require.False(t, ok)

	v, ok := c.Get(1)
	require.True(t, ok)
	require.Equal(t, "a", v)

	v, ok = c.Get(3)
	require.True(t, ok)
	require.Equal(t, "c", v)
}

func TestUpdateExistingKeyRefreshesRecency(t *testing.T) {
	c := lru.New[int, string](2)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(1, "a2")
	c.Put(3, "c") // evicts 2, not 1

	_, ok := c.Get(2)
	require.False(t, ok)
	v, _ := c.Get(1)
	require.Equal(t, "a2", v)
}
