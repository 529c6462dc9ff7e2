package archive_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/0xsequence/hyperrpc-gateway/archive"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientHeight(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/height", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]uint64{"height": 999})
	}))
	defer srv.Close()

	c := archive.NewHTTPClient(srv.URL)
	height, err := c.Height(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(999), height)
}

func TestHTTPClientHeightNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := archive.NewHTTPClient(srv.URL)
	_, err := c.Height(context.Background())
	require.Error(t, err)
}

func TestHTTPClientQueryDecodesBatches(t *testing.T) {
	addr := common.HexToAddress("0x0000000000000000000000000000000000000001")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, float64(10), req["from_block"])
		require.Equal(t, float64(20), req["to_block"])

		resp := map[string]any{
			"next_block": 20,
			"blocks": []map[string]any{
				{
					"num_rows":       1,
					"uint64_columns": map[string][]uint64{"number": {10}},
					"bytes_columns":  map[string][]string{"hash": {addr.Hex()}},
					"bool_columns":   map[string][]bool{},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := archive.NewHTTPClient(srv.URL)
	result, err := c.Query(context.Background(), archive.Query{FromBlock: 10, ToBlock: 20})
	require.NoError(t, err)
	require.Equal(t, uint64(20), result.NextBlock)
	require.Len(t, result.Blocks, 1)

	nums, err := result.Blocks[0].Uint64Column("number")
	require.NoError(t, err)
	require.Equal(t, []uint64{10}, nums)

	hashes, err := result.Blocks[0].HashColumn("hash")
	require.NoError(t, err)
	require.Equal(t, addr.Hash(), hashes[0])
}

func TestHTTPClientQueryRowLimitExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := archive.NewHTTPClient(srv.URL)
	_, err := c.Query(context.Background(), archive.Query{FromBlock: 0, ToBlock: 1})
	require.ErrorIs(t, err, archive.ErrRowLimitExceeded)
}
