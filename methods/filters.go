package methods

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/0xsequence/hyperrpc-gateway/ethtypes"
	"github.com/0xsequence/hyperrpc-gateway/metrics"
	"github.com/0xsequence/hyperrpc-gateway/rpcerr"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
)

// EthNewFilter installs a log filter and returns its id. The filter's
// own fromBlock/toBlock are kept for eth_getFilterLogs's retrospective
// query; polling via eth_getFilterChanges always starts from the block
// after the archive height at install time, since a filter only promises to
// report logs seen from the moment a client starts watching it.
func (e *Env) EthNewFilter(ctx context.Context, reqs []rpctypes.Request) ([]rpctypes.Response, metrics.Query) {
	out := make([]rpctypes.Response, len(reqs))
	if e.Filters == nil {
		return errorForAll(reqs, rpcerr.MethodNotFoundf("eth_newFilter")), metrics.Query{}
	}
	for i, r := range reqs {
		params, err := parseParamsArray(r.Params)
		if err != nil || len(params) < 1 {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr("eth_newFilter requires [filterObject]"))
			continue
		}
		filter, err := rpctypes.ParseLogFilter(params[0])
		if err != nil {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr(err.Error()))
			continue
		}
		height, err := e.resolveHeight(ctx)
		if err != nil {
			out[i] = errResponse(r.ID, classifyErr(err))
			continue
		}
		id, err := e.Filters.Create(ctx, filter, height+1)
		if err != nil {
			out[i] = errResponse(r.ID, rpcerr.Internal(err.Error()))
			continue
		}
		out[i] = resultResponse(r.ID, string(id))
	}
	return out, metrics.Query{}
}

// EthUninstallFilter removes a previously installed filter, answering
// true if it existed.
func (e *Env) EthUninstallFilter(ctx context.Context, reqs []rpctypes.Request) ([]rpctypes.Response, metrics.Query) {
	out := make([]rpctypes.Response, len(reqs))
	if e.Filters == nil {
		return errorForAll(reqs, rpcerr.MethodNotFoundf("eth_uninstallFilter")), metrics.Query{}
	}
	for i, r := range reqs {
		id, err := paramFilterId(r.Params)
		if err != nil {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr(err.Error()))
			continue
		}
		_, found, err := e.Filters.Get(ctx, id)
		if err != nil {
			out[i] = errResponse(r.ID, rpcerr.Internal(err.Error()))
			continue
		}
		if !found {
			out[i] = resultResponse(r.ID, false)
			continue
		}
		if err := e.Filters.Delete(ctx, id); err != nil {
			out[i] = errResponse(r.ID, rpcerr.Internal(err.Error()))
			continue
		}
		out[i] = resultResponse(r.ID, true)
	}
	return out, metrics.Query{}
}

// EthGetFilterLogs answers a filter's full fromBlock/toBlock range as
// if it had just been passed to eth_getLogs, ignoring the polling
// cursor entirely: unlike eth_getFilterChanges this never advances
// anything.
func (e *Env) EthGetFilterLogs(ctx context.Context, reqs []rpctypes.Request) ([]rpctypes.Response, metrics.Query) {
	var total metrics.Query
	out := make([]rpctypes.Response, len(reqs))
	if e.Filters == nil {
		return errorForAll(reqs, rpcerr.MethodNotFoundf("eth_getFilterLogs")), metrics.Query{}
	}
	for i, r := range reqs {
		id, err := paramFilterId(r.Params)
		if err != nil {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr(err.Error()))
			continue
		}
		stored, found, err := e.Filters.Get(ctx, id)
		if err != nil {
			out[i] = errResponse(r.ID, rpcerr.Internal(err.Error()))
			continue
		}
		if !found {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr("filter not found"))
			continue
		}
		from, err := e.resolveBlockTag(ctx, stored.Filter.FromBlock)
		if err != nil {
			out[i] = errResponse(r.ID, classifyErr(err))
			continue
		}
		to, err := e.resolveBlockTag(ctx, stored.Filter.ToBlock)
		if err != nil {
			out[i] = errResponse(r.ID, classifyErr(err))
			continue
		}
		rng := rpctypes.BlockRange{From: from, To: to + 1}
		if rng.Len() > e.Config.MaxGetLogsBlockRange {
			out[i] = errResponse(r.ID, rpcerr.LimitExceededf("Requested block range is greater than the configured maximum"))
			continue
		}
		logs, m, err := e.Query.QueryLogs(ctx, rng, e.Config.MaxLogsReturnedPerRequest)
		total = total.Add(m)
		if err != nil {
			out[i] = errResponse(r.ID, classifyErr(err))
			continue
		}
		out[i] = rawResultResponse(r.ID, serializeLogList(filterLogs(stored.Filter, logs)))
	}
	return out, total
}

// EthGetFilterChanges answers with logs seen since the filter's last
// poll and advances its cursor to the block after the archive's current
// height, but
// only once that batch of logs has been fully assembled: a failure
// partway through leaves the cursor untouched so the next poll retries
// the same range rather than silently skipping it.
func (e *Env) EthGetFilterChanges(ctx context.Context, reqs []rpctypes.Request) ([]rpctypes.Response, metrics.Query) {
	var total metrics.Query
	out := make([]rpctypes.Response, len(reqs))
	if e.Filters == nil {
		return errorForAll(reqs, rpcerr.MethodNotFoundf("eth_getFilterChanges")), metrics.Query{}
	}
	for i, r := range reqs {
		id, err := paramFilterId(r.Params)
		if err != nil {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr(err.Error()))
			continue
		}
		stored, found, err := e.Filters.Get(ctx, id)
		if err != nil {
			out[i] = errResponse(r.ID, rpcerr.Internal(err.Error()))
			continue
		}
		if !found {
			out[i] = errResponse(r.ID, rpcerr.InvalidParamsErr("filter not found"))
			continue
		}
		height, err := e.resolveHeight(ctx)
		if err != nil {
			out[i] = errResponse(r.ID, classifyErr(err))
			continue
		}
		nextPoll := height + 1
		if nextPoll <= stored.NextPollBlock {
			out[i] = rawResultResponse(r.ID, serializeLogList(nil))
			continue
		}
		rng := rpctypes.BlockRange{From: stored.NextPollBlock, To: nextPoll}
		logs, m, err := e.Query.QueryLogs(ctx, rng, e.Config.MaxLogsReturnedPerRequest)
		total = total.Add(m)
		if err != nil {
			out[i] = errResponse(r.ID, classifyErr(err))
			continue
		}
		if err := e.Filters.UpdatePoll(ctx, id, nextPoll); err != nil {
			out[i] = errResponse(r.ID, rpcerr.Internal(err.Error()))
			continue
		}
		out[i] = rawResultResponse(r.ID, serializeLogList(filterLogs(stored.Filter, logs)))
	}
	return out, total
}

func filterLogs(filter rpctypes.LogFilter, logs []ethtypes.Log) []ethtypes.Log {
	var out []ethtypes.Log
	for _, l := range logs {
		if filter.MatchAddress(l.Address) && filter.MatchTopics(l.Topics) {
			out = append(out, l)
		}
	}
	return out
}

func paramFilterId(raw json.RawMessage) (rpctypes.FilterId, error) {
	params, err := parseParamsArray(raw)
	if err != nil {
		return "", err
	}
	if len(params) < 1 {
		return "", fmt.Errorf("requires [filterId]")
	}
	var id string
	if err := json.Unmarshal(params[0], &id); err != nil {
		return "", fmt.Errorf("filterId must be a string: %w", err)
	}
	return rpctypes.FilterId(id), nil
}
