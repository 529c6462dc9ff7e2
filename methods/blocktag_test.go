package methods

import (
	"context"
	"errors"
	"testing"

	"github.com/0xsequence/hyperrpc-gateway/archive"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
	"github.com/stretchr/testify/require"
)

type fakeHeightClient struct {
	height uint64
	err    error
}

func (f fakeHeightClient) Height(ctx context.Context) (uint64, error) { return f.height, f.err }
func (f fakeHeightClient) Query(ctx context.Context, q archive.Query) (archive.QueryResult, error) {
	return archive.QueryResult{}, errors.New("not used in this test")
}

func TestResolveBlockTagRejectsPending(t *testing.T) {
	e := &Env{Archive: fakeHeightClient{height: 100}}
	_, err := e.resolveBlockTag(context.Background(), rpctypes.BlockNumber{Tag: rpctypes.TagPending})
	require.ErrorIs(t, err, errPendingUnsupported)
}

func TestResolveBlockTagLatestResolvesToHeight(t *testing.T) {
	e := &Env{Archive: fakeHeightClient{height: 100}}
	n, err := e.resolveBlockTag(context.Background(), rpctypes.Latest())
	require.NoError(t, err)
	require.Equal(t, uint64(100), n)
}

func TestResolveBlockTagRejectsBeyondHead(t *testing.T) {
	e := &Env{Archive: fakeHeightClient{height: 100}}
	_, err := e.resolveBlockTag(context.Background(), rpctypes.BlockNumber{Tag: rpctypes.TagNumber, Number: 200})
	require.ErrorIs(t, err, errBlockBeyondHead)
}

func TestResolveBlockTagExplicitNumber(t *testing.T) {
	e := &Env{Archive: fakeHeightClient{height: 100}}
	n, err := e.resolveBlockTag(context.Background(), rpctypes.BlockNumber{Tag: rpctypes.TagNumber, Number: 42})
	require.NoError(t, err)
	require.Equal(t, uint64(42), n)
}

func TestResolveHeightPropagatesArchiveError(t *testing.T) {
	e := &Env{Archive: fakeHeightClient{err: errors.New("archive unreachable")}}
	_, err := e.resolveHeight(context.Background())
	require.Error(t, err)
}
