package methods

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/0xsequence/hyperrpc-gateway/archive"
	"github.com/0xsequence/hyperrpc-gateway/querycache"
	"github.com/0xsequence/hyperrpc-gateway/rpcerr"
	"github.com/stretchr/testify/require"
)

func TestClassifyErrArchiveTimeout(t *testing.T) {
	err := fmt.Errorf("widen: %w", querycache.ErrArchiveTimeout)
	got := classifyErr(err)
	require.Equal(t, rpcerr.InternalError, got.Code)
}

func TestClassifyErrRowLimitExceeded(t *testing.T) {
	err := fmt.Errorf("query: %w", archive.ErrRowLimitExceeded)
	got := classifyErr(err)
	require.Equal(t, rpcerr.LimitExceeded, got.Code)
}

func TestClassifyErrPendingUnsupported(t *testing.T) {
	got := classifyErr(errPendingUnsupported)
	require.Equal(t, rpcerr.InvalidParams, got.Code)
}

func TestClassifyErrBlockBeyondHead(t *testing.T) {
	got := classifyErr(fmt.Errorf("%w: block 9 beyond head 5", errBlockBeyondHead))
	require.Equal(t, rpcerr.InvalidParams, got.Code)
}

func TestClassifyErrDefaultsToInternal(t *testing.T) {
	got := classifyErr(fmt.Errorf("some unrelated failure"))
	require.Equal(t, rpcerr.InternalError, got.Code)
}

func TestRawResultResponsePassesBytesThrough(t *testing.T) {
	id := json.RawMessage(`1`)
	resp := rawResultResponse(id, []byte(`{"foo":"bar"}`))
	require.Equal(t, json.RawMessage(`{"foo":"bar"}`), resp.Result)
	require.Nil(t, resp.Error)
}

func TestResultResponseMarshalsValue(t *testing.T) {
	id := json.RawMessage(`1`)
	resp := resultResponse(id, map[string]int{"a": 1})
	require.JSONEq(t, `{"a":1}`, string(resp.Result))
}
