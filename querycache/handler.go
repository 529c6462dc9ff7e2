// Package querycache sits between the method handlers and the archive
// client: it serves contiguous prefixes of a requested block range out
// of a bounded LRU cache, and only queries the archive for whatever
// remainder is missing, widening that remainder query ahead of the
// caller's actual need so the next adjacent request is more likely to
// be a cache hit too.
package querycache

import (
	"context"
	"fmt"
	"sync"

	"github.com/0xsequence/hyperrpc-gateway/archive"
	"github.com/0xsequence/hyperrpc-gateway/ethtypes"
	"github.com/0xsequence/hyperrpc-gateway/lru"
	"github.com/0xsequence/hyperrpc-gateway/metrics"
	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultCacheCapacity is the number of blocks each of the two block
// caches (hash-only and with-transactions) retains. The two caches are
// sized and evicted independently: a hot range of "blocks without
// transactions" traffic must not evict the "blocks with transactions"
// cache, and vice versa.
const DefaultCacheCapacity = 100_000

// DefaultReadAhead is how many blocks, counted from the first uncached
// block of the requested range, a cache-miss archive query covers at
// least (it always reaches the requested range's end, and never goes
// past height+1), trading extra archive bandwidth for a higher hit rate
// on the next sequential request.
const DefaultReadAhead = 100

// ErrArchiveTimeout is returned when the archive could not complete a
// query for the full requested range in one call. Per the archive
// contract, NextBlock < requested end means a hard failure: the caller
// never receives a partial range silently truncated.
var ErrArchiveTimeout = fmt.Errorf("archive query did not complete the requested range")

type Handler struct {
	client    archive.Client
	readAhead uint64
	mu        sync.Mutex
	headers   *lru.Cache[uint64, ethtypes.Block]
	withTxs   *lru.Cache[uint64, ethtypes.Block]
}

func New(client archive.Client) *Handler {
	return NewWithCapacity(client, DefaultCacheCapacity, DefaultReadAhead)
}

func NewWithCapacity(client archive.Client, capacity int, readAhead uint64) *Handler {
	return &Handler{
		client:    client,
		readAhead: readAhead,
		headers:   lru.New[uint64, ethtypes.Block](capacity),
		withTxs:   lru.New[uint64, ethtypes.Block](capacity),
	}
}

// GetBlocks returns every block number in rng with its header and
// transaction hashes (never full transaction bodies), in order.
func (h *Handler) GetBlocks(ctx context.Context, rng rpctypes.BlockRange) ([]ethtypes.Block, metrics.Query, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var m metrics.Query
	out := make([]ethtypes.Block, 0, rng.Len())
	cur := rng.From
	for cur < rng.To {
		blk, ok := h.headers.Get(cur)
		if !ok {
			break
		}
		out = append(out, blk)
		cur++
	}
	if cur >= rng.To {
		return out, m, nil
	}

	height, err := h.client.Height(ctx)
	if err != nil {
		return nil, m, fmt.Errorf("query handler: archive height: %w", err)
	}
	reqTo := min(height+1, max(rng.To, cur+h.readAhead))

	stop := metrics.Time(&m.ArchiveTime)
	res, err := h.client.Query(ctx, archive.Query{
		FromBlock:        cur,
		ToBlock:          reqTo,
		IncludeAllBlocks: true,
		Fields: archive.FieldSelection{
			Block:       archive.RequiredColumns("block"),
			Transaction: archive.RequiredColumns("transaction_hash"),
		},
	})
	stop()
	m.ArchiveQueries++
	if err != nil {
		return nil, m, fmt.Errorf("query handler: archive query: %w", err)
	}
	if res.NextBlock < reqTo {
		return nil, m, ErrArchiveTimeout
	}

	hashesByBlock := map[uint64][]common.Hash{}
	for _, batch := range res.Transactions {
		hashes, err := archive.DecodeTransactionHashes(batch)
		if err != nil {
			return nil, m, fmt.Errorf("query handler: decode transaction hashes: %w", err)
		}
		for num, hs := range hashes {
			hashesByBlock[num] = append(hashesByBlock[num], hs...)
		}
	}

	for _, batch := range res.Blocks {
		hdrs, err := archive.DecodeBlockHeaders(batch)
		if err != nil {
			return nil, m, fmt.Errorf("query handler: decode blocks: %w", err)
		}
		for _, hdr := range hdrs {
			blk := ethtypes.Block{Header: hdr, TxHashesOnly: hashesByBlock[hdr.Number]}
			h.headers.Put(hdr.Number, blk)
			if hdr.Number >= rng.From && hdr.Number < rng.To {
				out = append(out, blk)
			}
		}
	}
	return out, m, nil
}

// GetBlocksWithTransactions is GetBlocks, but every block carries its
// full transaction bodies and is cached independently of the
// headers-only variant.
func (h *Handler) GetBlocksWithTransactions(ctx context.Context, rng rpctypes.BlockRange) ([]ethtypes.Block, metrics.Query, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var m metrics.Query
	out := make([]ethtypes.Block, 0, rng.Len())
	cur := rng.From
	for cur < rng.To {
		blk, ok := h.withTxs.Get(cur)
		if !ok {
			break
		}
		out = append(out, blk)
		cur++
	}
	if cur >= rng.To {
		return out, m, nil
	}

	height, err := h.client.Height(ctx)
	if err != nil {
		return nil, m, fmt.Errorf("query handler: archive height: %w", err)
	}
	reqTo := min(height+1, max(rng.To, cur+h.readAhead))

	stop := metrics.Time(&m.ArchiveTime)
	res, err := h.client.Query(ctx, archive.Query{
		FromBlock:        cur,
		ToBlock:          reqTo,
		IncludeAllBlocks: true,
		Fields: archive.FieldSelection{
			Block:       archive.RequiredColumns("block"),
			Transaction: archive.RequiredColumns("transaction"),
		},
	})
	stop()
	m.ArchiveQueries++
	if err != nil {
		return nil, m, fmt.Errorf("query handler: archive query: %w", err)
	}
	if res.NextBlock < reqTo {
		return nil, m, ErrArchiveTimeout
	}

	txsByBlock := map[uint64][]ethtypes.Transaction{}
	for _, batch := range res.Transactions {
		txs, err := archive.DecodeTransactions(batch)
		if err != nil {
			return nil, m, fmt.Errorf("query handler: decode transactions: %w", err)
		}
		for _, tx := range txs {
			txsByBlock[tx.BlockNumber] = append(txsByBlock[tx.BlockNumber], tx)
		}
	}

	for _, batch := range res.Blocks {
		hdrs, err := archive.DecodeBlockHeaders(batch)
		if err != nil {
			return nil, m, fmt.Errorf("query handler: decode blocks: %w", err)
		}
		for _, hdr := range hdrs {
			blk := ethtypes.Block{Header: hdr, FullTxs: txsByBlock[hdr.Number]}
			h.withTxs.Put(hdr.Number, blk)
			if hdr.Number >= rng.From && hdr.Number < rng.To {
				out = append(out, blk)
			}
		}
	}
	return out, m, nil
}

// GetBlockReceipts returns every receipt for the transactions in rng,
// with each block's logs inlined in the same archive call, so a caller
// never needs to issue a second query to assemble a complete
// eth_getBlockReceipts response. It is uncached: receipt fan-out is
// driven by the archive's own per-query concurrency rather than by a
// block-level cache, since eth_getBlockReceipts is not on the hot path
// the read-ahead cache is tuned for. Taking a range, like GetBlocks and
// GetBlocksWithTransactions, lets a caller coalesce several requested
// block numbers into one archive call instead of one call per block.
func (h *Handler) GetBlockReceipts(ctx context.Context, rng rpctypes.BlockRange) ([]ethtypes.Receipt, []ethtypes.Log, metrics.Query, error) {
	var m metrics.Query
	stop := metrics.Time(&m.ArchiveTime)
	res, err := h.client.Query(ctx, archive.Query{
		FromBlock: rng.From,
		ToBlock:   rng.To,
		Logs:      []archive.LogSelection{{}},
		Fields: archive.FieldSelection{
			Receipt: archive.RequiredColumns("receipt"),
			Log:     archive.RequiredColumns("log"),
		},
	})
	stop()
	m.ArchiveQueries++
	if err != nil {
		return nil, nil, m, fmt.Errorf("query handler: archive query: %w", err)
	}
	if res.NextBlock < rng.To {
		return nil, nil, m, ErrArchiveTimeout
	}

	var receiptsOut []ethtypes.Receipt
	for _, batch := range res.Receipts {
		receipts, err := archive.DecodeReceipts(batch)
		if err != nil {
			return nil, nil, m, fmt.Errorf("query handler: decode receipts: %w", err)
		}
		receiptsOut = append(receiptsOut, receipts...)
	}
	var logsOut []ethtypes.Log
	for _, batch := range res.Logs {
		logs, err := archive.DecodeLogs(batch)
		if err != nil {
			return nil, nil, m, fmt.Errorf("query handler: decode logs: %w", err)
		}
		logsOut = append(logsOut, logs...)
	}
	return receiptsOut, logsOut, m, nil
}

// QueryLogs returns every log in rng, unfiltered by address/topic: the
// archive query asks for every log in the range with a single
// match-any selector, and it is up to the caller to re-apply each
// originating filter's own address/topic selection afterwards. This is
// what lets eth_getLogs share one archive call across several filter
// queries over the same range in the same batch. maxLogs caps the
// archive's own row count, independent of the per-range block cap.
func (h *Handler) QueryLogs(ctx context.Context, rng rpctypes.BlockRange, maxLogs int) ([]ethtypes.Log, metrics.Query, error) {
	var m metrics.Query
	stop := metrics.Time(&m.ArchiveTime)
	res, err := h.client.Query(ctx, archive.Query{
		FromBlock:  rng.From,
		ToBlock:    rng.To,
		Logs:       []archive.LogSelection{{}},
		MaxNumLogs: &maxLogs,
		Fields:     archive.FieldSelection{Log: archive.RequiredColumns("log")},
	})
	stop()
	m.ArchiveQueries++
	if err != nil {
		return nil, m, fmt.Errorf("query handler: archive query: %w", err)
	}
	if res.NextBlock < rng.To {
		return nil, m, ErrArchiveTimeout
	}

	var out []ethtypes.Log
	for _, batch := range res.Logs {
		logs, err := archive.DecodeLogs(batch)
		if err != nil {
			return nil, m, fmt.Errorf("query handler: decode logs: %w", err)
		}
		out = append(out, logs...)
	}
	return out, m, nil
}
