package filterstore_test

import (
	"context"
	"testing"

	"github.com/0xsequence/hyperrpc-gateway/filterstore"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *filterstore.CacheStore {
	store, err := filterstore.NewMem(1000)
	require.NoError(t, err)
	return store
}

func TestCreateAndGetRoundTrips(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	filter := rpctypes.LogFilter{
		Addresses: []common.Address{{0x01}},
		FromBlock: rpctypes.Latest(),
		ToBlock:   rpctypes.Latest(),
	}

	id, err := store.Create(ctx, filter, 100)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stored, ok, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(100), stored.NextPollBlock)
	require.Equal(t, filter.Addresses, stored.Filter.Addresses)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	store := newTestStore(t)
	_, ok, err := store.Get(context.Background(), rpctypes.FilterId("does-not-exist"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpdatePollAdvancesCursor(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, rpctypes.LogFilter{}, 50)
	require.NoError(t, err)

	require.NoError(t, store.UpdatePoll(ctx, id, 75))

	stored, ok, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(75), stored.NextPollBlock)
}

func TestUpdatePollUnknownFilterFails(t *testing.T) {
	store := newTestStore(t)
	err := store.UpdatePoll(context.Background(), rpctypes.FilterId("ghost"), 1)
	require.Error(t, err)
}

func TestDeleteRemovesFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, rpctypes.LogFilter{}, 1)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))

	_, ok, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.False(t, ok)
}
