// Package gateway ties the method handlers together into one entry
// point: given a batch of requests already parsed out of the wire
// envelope, it groups them by method, dispatches each group to the
// right handler (or the upstream proxy fallback), and reassembles the
// responses in the batch's original order.
package gateway

import (
	"context"

	"github.com/0xsequence/hyperrpc-gateway/metrics"
	"github.com/0xsequence/hyperrpc-gateway/methods"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
)

// HandlerFunc answers every request in reqs, which all share the same
// method, preserving their order.
type HandlerFunc func(ctx context.Context, reqs []rpctypes.Request) ([]rpctypes.Response, metrics.Query)

// Gateway holds the static method → handler table built once at
// startup from an Env. It has no other state and is safe for
// concurrent use by every in-flight HTTP request.
type Gateway struct {
	env      *methods.Env
	handlers map[string]HandlerFunc
}

// New builds the dispatch table. Methods absent from the table (every
// hash-indexed method, plus anything this gateway has never heard of)
// fall through to env.Proxy, the transparent upstream forwarder.
func New(env *methods.Env) *Gateway {
	return &Gateway{
		env: env,
		handlers: map[string]HandlerFunc{
			"eth_blockNumber":      env.EthBlockNumber,
			"eth_chainId":          env.EthChainId,
			"eth_getBlockByNumber": env.EthGetBlockByNumber,
			"eth_getBlockReceipts": env.EthGetBlockReceipts,
			"eth_getTransactionByBlockNumberAndIndex": env.EthGetTransactionByBlockNumberAndIndex,
			"eth_getLogs":                             env.EthGetLogs,
			"eth_newFilter":                            env.EthNewFilter,
			"eth_getFilterLogs":                        env.EthGetFilterLogs,
			"eth_getFilterChanges":                     env.EthGetFilterChanges,
			"eth_uninstallFilter":                      env.EthUninstallFilter,
		},
	}
}

// Execute answers every request in reqs, regardless of how many
// distinct methods it contains, and returns responses aligned
// index-for-index with reqs.
func (g *Gateway) Execute(ctx context.Context, reqs []rpctypes.Request) ([]rpctypes.Response, metrics.Query) {
	out := make([]rpctypes.Response, len(reqs))
	var total metrics.Query

	order := make([]string, 0, len(reqs))
	groups := make(map[string][]int, len(reqs))
	for i, r := range reqs {
		if _, seen := groups[r.Method]; !seen {
			order = append(order, r.Method)
		}
		groups[r.Method] = append(groups[r.Method], i)
	}

	for _, method := range order {
		idxs := groups[method]
		group := make([]rpctypes.Request, len(idxs))
		for j, idx := range idxs {
			group[j] = reqs[idx]
		}

		var (
			responses []rpctypes.Response
			m         metrics.Query
		)
		if h, ok := g.handlers[method]; ok {
			responses, m = h(ctx, group)
		} else {
			responses, m = g.env.Proxy(ctx, method, group)
		}

		total = total.Add(m)
		for j, idx := range idxs {
			out[idx] = responses[j]
		}
	}

	return out, total
}
