package methods

import (
	"context"
	"encoding/json"

	"github.com/0xsequence/hyperrpc-gateway/metrics"
	"github.com/0xsequence/hyperrpc-gateway/rpcerr"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
	"github.com/0xsequence/hyperrpc-gateway/serializer"
)

// EthGetTransactionByBlockNumberAndIndex answers
// eth_getTransactionByBlockNumberAndIndex: resolve the block tag, fan
// out the distinct resolved blocks with full transaction bodies, then
// pick each request's transaction out of its block by index. A null
// result (rather than an error) is the correct response when the index
// is out of range for that block, matching what a node returns.
func (e *Env) EthGetTransactionByBlockNumberAndIndex(ctx context.Context, reqs []rpctypes.Request) ([]rpctypes.Response, metrics.Query) {
	var total metrics.Query
	out := make([]rpctypes.Response, len(reqs))

	type resolved struct {
		idx     int
		number  uint64
		txIndex uint64
	}
	var ok []resolved
	var numbers []uint64
	for i, r := range reqs {
		params, err := parseParamsArray(r.Params)
		if err != nil || len(params) < 2 {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr("eth_getTransactionByBlockNumberAndIndex requires [blockNumber, index]"))
			continue
		}
		tag, err := rpctypes.ParseBlockNumber(params[0])
		if err != nil {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr(err.Error()))
			continue
		}
		var indexHex string
		if err := json.Unmarshal(params[1], &indexHex); err != nil {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr("index must be a hex quantity string"))
			continue
		}
		txIndex, err := rpctypes.DecodeHexQuantity(indexHex)
		if err != nil {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr(err.Error()))
			continue
		}
		number, err := e.resolveBlockTag(ctx, tag)
		if err != nil {
			out[i] = errResponse(r.ID, classifyErr(err))
			continue
		}
		ok = append(ok, resolved{idx: i, number: number, txIndex: txIndex})
		numbers = append(numbers, number)
	}
	if len(ok) == 0 {
		return out, total
	}

	blocks, m, err := e.fanoutBlocksWithTransactions(ctx, CoalesceBlocks(numbers, e.Config.MaxBlockGap))
	total = total.Add(m)
	if err != nil {
		errv := classifyErr(err)
		for _, p := range ok {
			out[p.idx] = errResponse(reqs[p.idx].ID, errv)
		}
		return out, total
	}

	for _, p := range ok {
		id := reqs[p.idx].ID
		blk, found := blocks[p.number]
		if !found {
			out[p.idx] = errResponse(id, rpcerr.Internal("block missing from archive fan-out result"))
			continue
		}
		if p.txIndex >= uint64(len(blk.FullTxs)) {
			out[p.idx] = rawResultResponse(id, []byte("null"))
			continue
		}
		out[p.idx] = rawResultResponse(id, serializer.SerializeTransaction(blk.FullTxs[p.txIndex]))
	}

	return out, total
}
