package methods

import (
	"context"

	"github.com/0xsequence/hyperrpc-gateway/metrics"
	"github.com/0xsequence/hyperrpc-gateway/rpcerr"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
	"github.com/0xsequence/hyperrpc-gateway/serializer"
)

// resolvedBlockReq pairs one request's index into the batch with the concrete
// block number its tag resolved to and whether it asked for full
// transaction bodies. Requests that fail to parse or resolve never
// reach this stage; their Response is already filled in by the caller.
type resolvedBlockReq struct {
	idx    int
	number uint64
	fullTx bool
}

// EthGetBlockByNumber answers eth_getBlockByNumber. Every request in
// reqs resolves its block tag independently, then the whole batch's
// numbers are split by the fullTx flag and coalesced into as few
// archive ranges as possible, since two requests one block apart cost
// the archive the same as one.
func (e *Env) EthGetBlockByNumber(ctx context.Context, reqs []rpctypes.Request) ([]rpctypes.Response, metrics.Query) {
	var total metrics.Query
	out := make([]rpctypes.Response, len(reqs))

	var ok []resolvedBlockReq
	for i, r := range reqs {
		params, err := parseParamsArray(r.Params)
		if err != nil || len(params) < 1 {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr("eth_getBlockByNumber requires [blockNumber, fullTransactions]"))
			continue
		}
		tag, err := rpctypes.ParseBlockNumber(params[0])
		if err != nil {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr(err.Error()))
			continue
		}
		fullTx, err := paramBool(params, 1, false)
		if err != nil {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr(err.Error()))
			continue
		}
		number, err := e.resolveBlockTag(ctx, tag)
		if err != nil {
			out[i] = errResponse(r.ID, classifyErr(err))
			continue
		}
		ok = append(ok, resolvedBlockReq{idx: i, number: number, fullTx: fullTx})
	}
	if len(ok) == 0 {
		return out, total
	}

	var headerNums, fullNums []uint64
	for _, p := range ok {
		if p.fullTx {
			fullNums = append(fullNums, p.number)
		} else {
			headerNums = append(headerNums, p.number)
		}
	}

	headers, m1, headerErr := e.fanoutBlocks(ctx, CoalesceBlocks(headerNums, e.Config.MaxBlockGap))
	total = total.Add(m1)
	fullBlocks, m2, fullErr := e.fanoutBlocksWithTransactions(ctx, CoalesceBlocks(fullNums, e.Config.MaxBlockGap))
	total = total.Add(m2)

	for _, p := range ok {
		id := reqs[p.idx].ID
		if p.fullTx {
			if fullErr != nil {
				out[p.idx] = errResponse(id, classifyErr(fullErr))
				continue
			}
			blk, found := fullBlocks[p.number]
			if !found {
				out[p.idx] = errResponse(id, rpcerr.Internal("block missing from archive fan-out result"))
				continue
			}
			out[p.idx] = rawResultResponse(id, serializer.SerializeBlock(blk))
			continue
		}

		if headerErr != nil {
			out[p.idx] = errResponse(id, classifyErr(headerErr))
			continue
		}
		blk, found := headers[p.number]
		if !found {
			out[p.idx] = errResponse(id, rpcerr.Internal("block missing from archive fan-out result"))
			continue
		}
		out[p.idx] = rawResultResponse(id, serializer.SerializeBlock(blk))
	}

	return out, total
}
