package upstream_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/0xsequence/hyperrpc-gateway/upstream"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handle func(msgs []upstream.Message) []upstream.Message) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msgs []upstream.Message
		body := json.NewDecoder(r.Body)
		var single upstream.Message
		var asArray []upstream.Message
		raw, err := decodeEither(body, &single, &asArray)
		require.NoError(t, err)
		if raw {
			msgs = asArray
		} else {
			msgs = []upstream.Message{single}
		}

		resp := handle(msgs)
		w.Header().Set("Content-Type", "application/json")
		if len(resp) == 1 {
			_ = json.NewEncoder(w).Encode(resp[0])
		} else {
			_ = json.NewEncoder(w).Encode(resp)
		}
	}))
}

func decodeEither(dec *json.Decoder, single *upstream.Message, arr *[]upstream.Message) (bool, error) {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return false, err
	}
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true, json.Unmarshal(raw, arr)
		default:
			return false, json.Unmarshal(raw, single)
		}
	}
	return false, fmt.Errorf("empty body")
}

func TestEndpointSendRoundTrip(t *testing.T) {
	srv := newTestServer(t, func(msgs []upstream.Message) []upstream.Message {
		out := make([]upstream.Message, len(msgs))
		for i, m := range msgs {
			out[i] = upstream.Message{Version: "2.0", ID: m.ID, Result: json.RawMessage(`"0x2a"`)}
		}
		return out
	})
	defer srv.Close()

	ep := upstream.NewEndpoint(upstream.EndpointConfig{URL: srv.URL, ReqLimit: 100, ReqLimitWindow: time.Second}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ep.Run(ctx)
	time.Sleep(20 * time.Millisecond)

	resp, err := ep.Send(context.Background(), []upstream.Message{upstream.NewRequest(1, "eth_chainId", nil)})
	require.NoError(t, err)
	require.Equal(t, `"0x2a"`, string(resp[1].Result))
}

func TestEndpointRateLimitRejectsOverCapacity(t *testing.T) {
	ep := upstream.NewEndpoint(upstream.EndpointConfig{URL: "http://unused", ReqLimit: 2, ReqLimitWindow: time.Minute}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ep.Run(ctx)

	_, err := ep.Send(context.Background(), []upstream.Message{upstream.NewRequest(1, "x", nil)})
	require.Error(t, err) // unused URL: connection error, not a limit error
	_, err = ep.Send(context.Background(), []upstream.Message{upstream.NewRequest(1, "x", nil), upstream.NewRequest(2, "x", nil)})
	require.ErrorIs(t, err, upstream.ErrEndpointLimitTooLow)
}

func TestDispatcherFirstSuccessWins(t *testing.T) {
	failing := upstream.NewEndpoint(upstream.EndpointConfig{URL: "http://127.0.0.1:0", ReqLimit: 100, ReqLimitWindow: time.Second}, nil)

	srv := newTestServer(t, func(msgs []upstream.Message) []upstream.Message {
		return []upstream.Message{{Version: "2.0", ID: msgs[0].ID, Result: json.RawMessage(`"ok"`)}}
	})
	defer srv.Close()
	working := upstream.NewEndpoint(upstream.EndpointConfig{URL: srv.URL, ReqLimit: 100, ReqLimitWindow: time.Second}, nil)

	d := upstream.NewDispatcher(nil, []*upstream.Endpoint{failing, working})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)
	time.Sleep(20 * time.Millisecond)

	resp, err := d.Send(context.Background(), []upstream.Message{upstream.NewRequest(7, "eth_chainId", nil)})
	require.NoError(t, err)
	require.Equal(t, `"ok"`, string(resp[7].Result))
}
