package methods

import (
	"context"
	"sync"

	"github.com/0xsequence/hyperrpc-gateway/ethtypes"
	"github.com/0xsequence/hyperrpc-gateway/metrics"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
	"golang.org/x/sync/errgroup"
)

// fanoutBlocks runs one querycache.GetBlocks call per range concurrently,
// bounded by Config.ArchiveFanoutConcurrency, and merges the results into
// a single block-number-keyed map. The first range to fail aborts every
// other in-flight call and its error is returned; callers never see a
// partially-populated map mixed with an error.
func (e *Env) fanoutBlocks(ctx context.Context, ranges []rpctypes.BlockRange) (map[uint64]ethtypes.Block, metrics.Query, error) {
	var (
		mu    sync.Mutex
		out   = make(map[uint64]ethtypes.Block)
		total metrics.Query
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Config.ArchiveFanoutConcurrency)
	for _, rng := range ranges {
		rng := rng
		g.Go(func() error {
			blocks, m, err := e.Query.GetBlocks(gctx, rng)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			total = total.Add(m)
			for _, b := range blocks {
				out[b.Header.Number] = b
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, total, err
	}
	return out, total, nil
}

// fanoutBlocksWithTransactions is fanoutBlocks but for the
// with-transactions block variant.
func (e *Env) fanoutBlocksWithTransactions(ctx context.Context, ranges []rpctypes.BlockRange) (map[uint64]ethtypes.Block, metrics.Query, error) {
	var (
		mu    sync.Mutex
		out   = make(map[uint64]ethtypes.Block)
		total metrics.Query
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Config.ArchiveFanoutConcurrency)
	for _, rng := range ranges {
		rng := rng
		g.Go(func() error {
			blocks, m, err := e.Query.GetBlocksWithTransactions(gctx, rng)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			total = total.Add(m)
			for _, b := range blocks {
				out[b.Header.Number] = b
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, total, err
	}
	return out, total, nil
}

// receiptKey identifies one receipt within a block by its transaction
// index, the same compound key eth_getBlockReceipts groups by.
type receiptKey struct {
	Block   uint64
	TxIndex uint64
}

// fanoutReceipts runs one GetBlockReceipts call per coalesced range
// concurrently, bounded the same way, merging into a
// (blockNumber,txIndex)→Receipt map plus that receipt's own logs.
func (e *Env) fanoutReceipts(ctx context.Context, ranges []rpctypes.BlockRange) (map[receiptKey]ethtypes.Receipt, map[receiptKey][]ethtypes.Log, metrics.Query, error) {
	var (
		mu      sync.Mutex
		out     = make(map[receiptKey]ethtypes.Receipt)
		logsOut = make(map[receiptKey][]ethtypes.Log)
		total   metrics.Query
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Config.ArchiveFanoutConcurrency)
	for _, rng := range ranges {
		rng := rng
		g.Go(func() error {
			receipts, logs, m, err := e.Query.GetBlockReceipts(gctx, rng)
			if err != nil {
				return err
			}
			byTx := map[uint64][]ethtypes.Log{}
			for _, l := range logs {
				byTx[l.TransactionIndex] = append(byTx[l.TransactionIndex], l)
			}

			mu.Lock()
			defer mu.Unlock()
			total = total.Add(m)
			for _, r := range receipts {
				key := receiptKey{Block: r.BlockNumber, TxIndex: r.TransactionIndex}
				out[key] = r
				logsOut[key] = byTx[r.TransactionIndex]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, total, err
	}
	return out, logsOut, total, nil
}
