package methods

import (
	"context"

	"github.com/0xsequence/hyperrpc-gateway/metrics"
	"github.com/0xsequence/hyperrpc-gateway/rpcerr"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
)

// EthBlockNumber answers every request in reqs with the lesser of the
// archive's height and the best-known upstream height, hex-encoded.
// Capping at the upstream's last_block keeps clients from being told
// about a block the gateway's other data source (whichever one they
// query next) hasn't caught up to yet.
func (e *Env) EthBlockNumber(ctx context.Context, reqs []rpctypes.Request) ([]rpctypes.Response, metrics.Query) {
	height, err := e.resolveHeight(ctx)
	if err != nil {
		return errorForAll(reqs, classifyErr(err)), metrics.Query{}
	}
	if e.Dispatcher != nil {
		if best, ok := e.Dispatcher.BestKnownHeight(); ok && best < height {
			height = best
		}
	}

	out := make([]rpctypes.Response, len(reqs))
	for i, r := range reqs {
		out[i] = resultResponse(r.ID, rpctypes.EncodeHexQuantity(height))
	}
	return out, metrics.Query{}
}

// EthChainId answers every request with the gateway's configured chain
// id; there is nothing to look up, so no archive or upstream call is
// ever made for this method.
func (e *Env) EthChainId(ctx context.Context, reqs []rpctypes.Request) ([]rpctypes.Response, metrics.Query) {
	out := make([]rpctypes.Response, len(reqs))
	for i, r := range reqs {
		out[i] = resultResponse(r.ID, rpctypes.EncodeHexQuantity(e.Config.ChainID))
	}
	return out, metrics.Query{}
}

func errorForAll(reqs []rpctypes.Request, errv *rpcerr.Error) []rpctypes.Response {
	out := make([]rpctypes.Response, len(reqs))
	for i, r := range reqs {
		out[i] = errResponse(r.ID, errv)
	}
	return out
}
