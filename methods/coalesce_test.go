package methods_test

import (
	"testing"

	"github.com/0xsequence/hyperrpc-gateway/methods"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
	"github.com/stretchr/testify/require"
)

func TestCoalesceBlocksMergesWithinGap(t *testing.T) {
	ranges := methods.CoalesceBlocks([]uint64{0, 1, 20, 121}, 100)
	require.Equal(t, []rpctypes.BlockRange{{From: 0, To: 21}, {From: 121, To: 122}}, ranges)
}

func TestCoalesceBlocksSingleValue(t *testing.T) {
	ranges := methods.CoalesceBlocks([]uint64{42}, 10)
	require.Equal(t, []rpctypes.BlockRange{{From: 42, To: 43}}, ranges)
}

func TestCoalesceBlocksUnsortedAndDuplicate(t *testing.T) {
	ranges := methods.CoalesceBlocks([]uint64{5, 1, 5, 2}, 10)
	require.Equal(t, []rpctypes.BlockRange{{From: 1, To: 6}}, ranges)
}

func TestCoalesceBlocksEmpty(t *testing.T) {
	require.Nil(t, methods.CoalesceBlocks(nil, 10))
}

func TestCoalesceBlocksDisjointAtExactGap(t *testing.T) {
	// a gap of exactly maxGap+1 must split into two ranges.
	ranges := methods.CoalesceBlocks([]uint64{0, 11}, 10)
	require.Equal(t, []rpctypes.BlockRange{{From: 0, To: 1}, {From: 11, To: 12}}, ranges)

	merged := methods.CoalesceBlocks([]uint64{0, 10}, 10)
	require.Equal(t, []rpctypes.BlockRange{{From: 0, To: 11}}, merged)
}
