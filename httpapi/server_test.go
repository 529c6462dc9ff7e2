package httpapi_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/0xsequence/hyperrpc-gateway/archive"
	"github.com/0xsequence/hyperrpc-gateway/gateway"
	"github.com/0xsequence/hyperrpc-gateway/httpapi"
	"github.com/0xsequence/hyperrpc-gateway/methods"
	"github.com/stretchr/testify/require"
)

type fakeArchiveClient struct {
	height uint64
}

func (f fakeArchiveClient) Height(ctx context.Context) (uint64, error) { return f.height, nil }
func (f fakeArchiveClient) Query(ctx context.Context, q archive.Query) (archive.QueryResult, error) {
	return archive.QueryResult{NextBlock: q.ToBlock}, nil
}

func newTestServer() *httpapi.Server {
	env := &methods.Env{
		Archive: fakeArchiveClient{height: 123},
		Config:  methods.Config{ChainID: 1, JSONRPCVersion: "2.0"},
	}
	gw := gateway.New(env)
	cfg := httpapi.Config{
		MaxRequestsInBatch:  500,
		MaxPayloadSizeBytes: 1 << 20,
		JSONRPCVersion:      "2.0",
	}
	return httpapi.New(gw, cfg, nil)
}

func TestServeRPCSingleRequest(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"eth_chainId","params":[]}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":"0x1"}`, rec.Body.String())
}

func TestServeRPCBatchPreservesShape(t *testing.T) {
	s := newTestServer()
	body := `[{"jsonrpc":"2.0","id":1,"method":"eth_chainId"},{"jsonrpc":"2.0","id":2,"method":"eth_blockNumber"}]`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.True(t, strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "["))
	require.JSONEq(t, `[{"jsonrpc":"2.0","id":1,"result":"0x1"},{"jsonrpc":"2.0","id":2,"result":"0x7b"}]`, rec.Body.String())
}

func TestServeRPCRejectsNonPost(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, 500, rec.Code)
}

func TestServeRPCDuplicateIDInBatch(t *testing.T) {
	s := newTestServer()
	body := `[{"jsonrpc":"2.0","id":1,"method":"eth_chainId"},{"jsonrpc":"2.0","id":1,"method":"eth_chainId"}]`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "duplicate Id: 1")
}

func TestServeRPCRejectsWrongVersion(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"jsonrpc":"1.0","id":1,"method":"eth_chainId"}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "JSON-RPC version not supported")
}

func TestServeRPCBatchOverLimitExceeded(t *testing.T) {
	env := &methods.Env{
		Archive: fakeArchiveClient{height: 123},
		Config:  methods.Config{ChainID: 1, JSONRPCVersion: "2.0"},
	}
	gw := gateway.New(env)
	cfg := httpapi.Config{MaxRequestsInBatch: 1, MaxPayloadSizeBytes: 1 << 20, JSONRPCVersion: "2.0"}
	s := httpapi.New(gw, cfg, nil)

	body := `[{"jsonrpc":"2.0","id":1,"method":"eth_chainId"},{"jsonrpc":"2.0","id":2,"method":"eth_chainId"}]`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Contains(t, rec.Body.String(), "exceeds the configured limit")
}
