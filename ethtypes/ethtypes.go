// Package ethtypes holds the in-memory domain records the archive's
// columnar batches decode into and the serializer encodes out of: block
// headers, transactions, receipts, and logs. These are distinct from
// go-ethereum's own core/types records because every field here is kept
// exactly as wide and as optional as the wire format requires, not as
// whatever go-ethereum's EVM execution needs internally.
package ethtypes

import "github.com/ethereum/go-ethereum/common"

// BlockHeader is one archive/upstream block header, enough to answer
// eth_getBlockByNumber/Hash whether or not transaction bodies are
// included.
type BlockHeader struct {
	Number           uint64
	Hash             common.Hash
	ParentHash       common.Hash
	Nonce            uint64
	Sha3Uncles       common.Hash
	LogsBloom        []byte
	TransactionsRoot common.Hash
	StateRoot        common.Hash
	ReceiptsRoot     common.Hash
	Miner            common.Address
	Difficulty       []byte // big-endian, variable width; zero-length means 0
	TotalDifficulty  []byte
	ExtraData        []byte
	Size             uint64
	GasLimit         uint64
	GasUsed          uint64
	Timestamp        uint64
	Uncles           []common.Hash
	BaseFeePerGas    []byte // nil if the block predates EIP-1559
}

// Transaction is one archive/upstream transaction record.
type Transaction struct {
	Hash                 common.Hash
	Nonce                uint64
	BlockHash            common.Hash
	BlockNumber          uint64
	TransactionIndex     uint64
	From                 common.Address
	To                   *common.Address
	Value                []byte
	GasPrice             []byte
	Gas                  uint64
	Input                []byte
	V                     []byte
	R                     []byte
	S                     []byte
	Type                 *uint64
	ChainId              *uint64
	MaxFeePerGas         []byte
	MaxPriorityFeePerGas []byte
}

// Receipt is one archive/upstream transaction receipt.
type Receipt struct {
	TransactionHash   common.Hash
	TransactionIndex  uint64
	BlockHash         common.Hash
	BlockNumber       uint64
	From              common.Address
	To                *common.Address
	CumulativeGasUsed uint64
	GasUsed           uint64
	ContractAddress   *common.Address
	LogsBloom         []byte
	Status            *uint64
	Type              *uint64
	EffectiveGasPrice []byte
}

// Log is one archive/upstream event log, attached to its parent
// transaction/block for response fields that restate that context.
type Log struct {
	Address          common.Address
	Topics           []common.Hash
	Data             []byte
	BlockNumber      uint64
	BlockHash        common.Hash
	TransactionHash  common.Hash
	TransactionIndex uint64
	LogIndex         uint64
	Removed          bool
}

// Block pairs a header with either transaction hashes or full
// transaction bodies: one type with a runtime flag, rather than two
// nearly-identical structs.
type Block struct {
	Header       BlockHeader
	FullTxs      []Transaction // non-nil when WithTransactions was requested
	TxHashesOnly []common.Hash // non-nil when WithTransactions was not requested
}
