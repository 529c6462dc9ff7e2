package methods

import (
	"context"
	"encoding/json"

	"github.com/0xsequence/hyperrpc-gateway/metrics"
	"github.com/0xsequence/hyperrpc-gateway/rpcerr"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
	"github.com/0xsequence/hyperrpc-gateway/upstream"
)

// Proxy forwards every request in reqs to the configured upstream
// dispatcher verbatim, under its own method name, and maps each
// response back to the request that asked for it. This is both the
// transparent fallback for any method this gateway has no archive
// translation for, and the explicit target for the handful of
// hash-indexed methods (eth_getBlockByHash and friends) that need a
// hash→number lookup the archive client does not expose.
func (e *Env) Proxy(ctx context.Context, method string, reqs []rpctypes.Request) ([]rpctypes.Response, metrics.Query) {
	out := make([]rpctypes.Response, len(reqs))
	if e.Dispatcher == nil {
		return errorForAll(reqs, rpcerr.MethodNotFoundf(method)), metrics.Query{}
	}

	msgs := make([]upstream.Message, 0, len(reqs))
	order := make([]int, 0, len(reqs))
	for i, r := range reqs {
		var params []any
		if len(r.Params) > 0 {
			if err := json.Unmarshal(r.Params, &params); err != nil {
				out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr("params must be a JSON array"))
				continue
			}
		}
		msgs = append(msgs, upstream.NewRequest(uint64(len(msgs)), method, params))
		order = append(order, i)
	}
	if len(msgs) == 0 {
		return out, metrics.Query{}
	}

	resp, err := e.Dispatcher.Send(ctx, msgs)
	if err != nil {
		errv := rpcerr.Internal(err.Error())
		for _, i := range order {
			out[i] = errResponse(reqs[i].ID, errv)
		}
		return out, metrics.Query{}
	}

	for seq, i := range order {
		m, found := resp[uint64(seq)]
		if !found {
			out[i] = errResponse(reqs[i].ID, rpcerr.Internal("upstream did not answer this request"))
			continue
		}
		if m.Error != nil {
			out[i] = errResponse(reqs[i].ID, rpcerr.Internal(m.Error.Error()))
			continue
		}
		out[i] = rawResultResponse(reqs[i].ID, m.Result)
	}

	return out, metrics.Query{}
}
