// Package archive is the boundary to the columnar historical archive:
// a Query describing a block range plus optional transaction/log
// selections goes in, a QueryResult of column batches comes out. The
// archive service itself (and its wire format) is an external
// collaborator; this package only defines the interface a client
// implementation must satisfy and the decoder that turns batches into
// ethtypes records.
package archive

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrRowLimitExceeded is returned by a Client's Query when a
// MaxNumLogs cap was set and the matching rows exceed it: the caller
// asked for more rows than it said it was willing to receive, so no
// partial batch is returned at all.
var ErrRowLimitExceeded = fmt.Errorf("archive query matched more rows than the configured limit")

// FieldSelection restricts which named columns a query needs decoded.
// A nil/empty slice means "use this component's required-field default",
// not "no fields".
type FieldSelection struct {
	Block       []string
	Transaction []string
	Log         []string
	Receipt     []string
}

// TransactionSelection narrows which transactions a query returns, all
// conditions ANDed, each slice ORed internally (empty = any).
type TransactionSelection struct {
	From    []common.Address
	To      []common.Address
	Sighash [][]byte
}

// LogSelection mirrors rpctypes.LogFilter's address/topic matching
// semantics but at the archive query boundary (no block range: that
// lives on Query itself).
type LogSelection struct {
	Address []common.Address
	Topics  [4][]common.Hash
}

// Query asks the archive for everything in [FromBlock, ToBlock) that
// matches. ToBlock is exclusive and capped by the caller to height+1.
type Query struct {
	FromBlock        uint64
	ToBlock          uint64
	IncludeAllBlocks bool
	Transactions     []TransactionSelection
	Logs             []LogSelection
	MaxNumLogs       *int
	Fields           FieldSelection
}

// QueryResult carries one batch per table the query touched, plus the
// next block number the caller should resume from. NextBlock < ToBlock
// signals the archive could not complete the whole requested range in
// this call; querycache.Handler treats that as a failed query
// (ErrArchiveTimeout) and never returns what it got as a partial
// result.
type QueryResult struct {
	NextBlock    uint64
	Blocks       []Batch
	Transactions []Batch
	Logs         []Batch
	Receipts     []Batch
}

// Batch is one columnar result batch: a fixed number of rows, each
// column independently addressable by name. Implementations back this
// with whatever wire format the archive speaks; MapBatch (mapbatch.go)
// is the in-memory implementation that both HTTPClient and this
// module's own tests use.
type Batch interface {
	NumRows() int
	Uint64Column(name string) ([]uint64, error)
	OptionalUint64Column(name string) ([]*uint64, error)
	BytesColumn(name string) ([][]byte, error)
	HashColumn(name string) ([]common.Hash, error)
	AddressColumn(name string) ([]common.Address, error)
	BoolColumn(name string) ([]bool, error)
}

// Client is the archive service boundary. Height reports the archive's
// current indexed height (its notion of "latest"), used to cap
// read-ahead widening and to detect whether a requested range is fully
// available yet.
type Client interface {
	Height(ctx context.Context) (uint64, error)
	Query(ctx context.Context, q Query) (QueryResult, error)
}
