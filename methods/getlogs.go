package methods

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/0xsequence/hyperrpc-gateway/ethtypes"
	"github.com/0xsequence/hyperrpc-gateway/metrics"
	"github.com/0xsequence/hyperrpc-gateway/rpcerr"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
	"github.com/0xsequence/hyperrpc-gateway/serializer"
)

// serializeLogList wraps a set of logs into a JSON array of log
// objects, reusing serializer.SerializeLog's byte-level encoding for
// each element rather than falling back to encoding/json.
func serializeLogList(logs []ethtypes.Log) []byte {
	items := make([][]byte, len(logs))
	for i, l := range logs {
		items[i] = serializer.SerializeLog(l)
	}
	return joinJSONArray(items)
}

// EthGetLogs answers eth_getLogs. Every request's filter resolves to a
// half-open block range; identical ranges are deduplicated so filter
// queries over the same range in one batch share one archive call.
// Overlapping but different ranges each get their own archive call.
// Results are kept per distinct range; each request then re-filters
// its range's logs by its own address/topic selection, so the archive
// never needs to know about per-request filtering at all.
func (e *Env) EthGetLogs(ctx context.Context, reqs []rpctypes.Request) ([]rpctypes.Response, metrics.Query) {
	var total metrics.Query
	out := make([]rpctypes.Response, len(reqs))

	type resolvedFilter struct {
		idx    int
		filter rpctypes.LogFilter
		rng    rpctypes.BlockRange
	}
	var ok []resolvedFilter
	for i, r := range reqs {
		params, err := parseParamsArray(r.Params)
		if err != nil || len(params) < 1 {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr("eth_getLogs requires [filterObject]"))
			continue
		}
		filter, err := rpctypes.ParseLogFilter(params[0])
		if err != nil {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr(err.Error()))
			continue
		}
		if filter.BlockHash != nil {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr("filtering by blockHash is not supported; use fromBlock/toBlock"))
			continue
		}
		from, err := e.resolveBlockTag(ctx, filter.FromBlock)
		if err != nil {
			out[i] = errResponse(r.ID, classifyErr(err))
			continue
		}
		to, err := e.resolveBlockTag(ctx, filter.ToBlock)
		if err != nil {
			out[i] = errResponse(r.ID, classifyErr(err))
			continue
		}
		if to < from {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr("toBlock is before fromBlock"))
			continue
		}
		rng := rpctypes.BlockRange{From: from, To: to + 1}
		if rng.Len() > e.Config.MaxGetLogsBlockRange {
			out[i] = errResponse(r.ID, rpcerr.LimitExceededf(fmt.Sprintf("Requested block range is greater than %d", e.Config.MaxGetLogsBlockRange)))
			continue
		}
		ok = append(ok, resolvedFilter{idx: i, filter: filter, rng: rng})
	}
	if len(ok) == 0 {
		return out, total
	}

	need := map[rpctypes.BlockRange]struct{}{}
	for _, rf := range ok {
		need[rf.rng] = struct{}{}
	}
	ranges := make([]rpctypes.BlockRange, 0, len(need))
	for rng := range need {
		ranges = append(ranges, rng)
	}

	var (
		mu      sync.Mutex
		byRange = make(map[rpctypes.BlockRange][]ethtypes.Log, len(ranges))
		errs    = make(map[rpctypes.BlockRange]error, len(ranges))
		wg      sync.WaitGroup
		sem     = make(chan struct{}, e.Config.ArchiveFanoutConcurrency)
	)
	for _, rng := range ranges {
		rng := rng
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			logs, m, err := e.Query.QueryLogs(ctx, rng, e.Config.MaxLogsReturnedPerRequest)
			mu.Lock()
			defer mu.Unlock()
			total = total.Add(m)
			if err != nil {
				errs[rng] = err
				return
			}
			byRange[rng] = logs
		}()
	}
	wg.Wait()

	for _, rf := range ok {
		id := reqs[rf.idx].ID
		if err, failed := errs[rf.rng]; failed {
			out[rf.idx] = errResponse(id, classifyErr(err))
			continue
		}
		var matched []ethtypes.Log
		for _, l := range byRange[rf.rng] {
			if rf.filter.MatchAddress(l.Address) && rf.filter.MatchTopics(l.Topics) {
				matched = append(matched, l)
			}
		}
		sort.Slice(matched, func(i, j int) bool {
			if matched[i].BlockNumber != matched[j].BlockNumber {
				return matched[i].BlockNumber < matched[j].BlockNumber
			}
			if matched[i].TransactionIndex != matched[j].TransactionIndex {
				return matched[i].TransactionIndex < matched[j].TransactionIndex
			}
			return matched[i].LogIndex < matched[j].LogIndex
		})
		out[rf.idx] = rawResultResponse(id, serializeLogList(matched))
	}

	return out, total
}
