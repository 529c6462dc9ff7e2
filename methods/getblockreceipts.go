package methods

import (
	"context"
	"sort"

	"github.com/0xsequence/hyperrpc-gateway/metrics"
	"github.com/0xsequence/hyperrpc-gateway/rpcerr"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
	"github.com/0xsequence/hyperrpc-gateway/serializer"
)

// EthGetBlockReceipts answers eth_getBlockReceipts: one block tag per
// request, resolved independently, then coalesced into the smallest
// set of contiguous ranges so a run of adjacent block numbers costs
// the archive a single query instead of one per block.
func (e *Env) EthGetBlockReceipts(ctx context.Context, reqs []rpctypes.Request) ([]rpctypes.Response, metrics.Query) {
	var total metrics.Query
	out := make([]rpctypes.Response, len(reqs))

	type resolved struct {
		idx    int
		number uint64
	}
	var ok []resolved
	var numbers []uint64
	for i, r := range reqs {
		params, err := parseParamsArray(r.Params)
		if err != nil || len(params) < 1 {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr("eth_getBlockReceipts requires [blockNumber]"))
			continue
		}
		tag, err := rpctypes.ParseBlockNumber(params[0])
		if err != nil {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr(err.Error()))
			continue
		}
		number, err := e.resolveBlockTag(ctx, tag)
		if err != nil {
			out[i] = errResponse(r.ID, classifyErr(err))
			continue
		}
		ok = append(ok, resolved{idx: i, number: number})
		numbers = append(numbers, number)
	}
	if len(ok) == 0 {
		return out, total
	}

	receipts, logsByKey, m, err := e.fanoutReceipts(ctx, CoalesceBlocks(numbers, e.Config.MaxBlockGap))
	total = total.Add(m)
	if err != nil {
		errv := classifyErr(err)
		for _, p := range ok {
			out[p.idx] = errResponse(reqs[p.idx].ID, errv)
		}
		return out, total
	}

	byBlock := make(map[uint64][]receiptKey, len(receipts))
	for key := range receipts {
		byBlock[key.Block] = append(byBlock[key.Block], key)
	}
	for _, keys := range byBlock {
		sort.Slice(keys, func(i, j int) bool { return keys[i].TxIndex < keys[j].TxIndex })
	}

	for _, p := range ok {
		id := reqs[p.idx].ID
		serialized := make([][]byte, 0, len(byBlock[p.number]))
		for _, key := range byBlock[p.number] {
			serialized = append(serialized, serializer.SerializeReceipt(receipts[key], logsByKey[key]))
		}
		out[p.idx] = rawResultResponse(id, joinJSONArray(serialized))
	}

	return out, total
}

// joinJSONArray wraps a set of already-serialized JSON object
// fragments into a JSON array, without re-encoding any of them.
func joinJSONArray(items [][]byte) []byte {
	out := make([]byte, 0, 2+len(items))
	out = append(out, '[')
	for i, item := range items {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, item...)
	}
	out = append(out, ']')
	return out
}
