package archive

import (
	"sort"

	"github.com/0xsequence/hyperrpc-gateway/ethtypes"
	"github.com/ethereum/go-ethereum/common"
)

// Required column names for each table, named exactly as the archive's
// own schema names them (snake_case, matching the upstream node's
// eth_getBlockByNumber field names rather than Go field names).
var (
	blockHeaderColumns = []string{
		"number", "hash", "parent_hash", "nonce", "sha3_uncles", "logs_bloom",
		"transactions_root", "state_root", "receipts_root", "miner",
		"difficulty", "total_difficulty", "extra_data", "size", "gas_limit",
		"gas_used", "timestamp", "uncles", "base_fee_per_gas",
	}
	transactionColumns = []string{
		"hash", "nonce", "block_hash", "block_number", "transaction_index",
		"from", "to", "value", "gas_price", "gas", "input", "v", "r", "s",
		"type", "chain_id", "max_fee_per_gas", "max_priority_fee_per_gas",
	}
	receiptColumns = []string{
		"transaction_hash", "transaction_index", "block_hash", "block_number",
		"from", "to", "cumulative_gas_used", "gas_used", "contract_address",
		"logs_bloom", "status", "type", "effective_gas_price",
	}
	logColumns = []string{
		"address", "topic0", "topic1", "topic2", "topic3", "data",
		"block_number", "block_hash", "transaction_hash", "transaction_index",
		"log_index", "removed",
	}
	// transactionHashColumns is the column subset eth_getBlockByNumber's
	// headers-only variant needs: enough to list a block's transaction
	// hashes in order, without paying for the full transaction schema.
	transactionHashColumns = []string{"hash", "block_number", "transaction_index"}
)

// DecodeBlockHeaders decodes every row of b into a BlockHeader. b must
// carry blockHeaderColumns; callers ask for exactly those via
// FieldSelection.Block when they don't need more.
func DecodeBlockHeaders(b Batch) ([]ethtypes.BlockHeader, error) {
	number, err := b.Uint64Column("number")
	if err != nil {
		return nil, err
	}
	hash, err := b.HashColumn("hash")
	if err != nil {
		return nil, err
	}
	parentHash, err := b.HashColumn("parent_hash")
	if err != nil {
		return nil, err
	}
	nonce, err := b.Uint64Column("nonce")
	if err != nil {
		return nil, err
	}
	sha3Uncles, err := b.HashColumn("sha3_uncles")
	if err != nil {
		return nil, err
	}
	logsBloom, err := b.BytesColumn("logs_bloom")
	if err != nil {
		return nil, err
	}
	txRoot, err := b.HashColumn("transactions_root")
	if err != nil {
		return nil, err
	}
	stateRoot, err := b.HashColumn("state_root")
	if err != nil {
		return nil, err
	}
	receiptsRoot, err := b.HashColumn("receipts_root")
	if err != nil {
		return nil, err
	}
	miner, err := b.AddressColumn("miner")
	if err != nil {
		return nil, err
	}
	difficulty, err := b.BytesColumn("difficulty")
	if err != nil {
		return nil, err
	}
	totalDifficulty, err := b.BytesColumn("total_difficulty")
	if err != nil {
		return nil, err
	}
	extraData, err := b.BytesColumn("extra_data")
	if err != nil {
		return nil, err
	}
	size, err := b.Uint64Column("size")
	if err != nil {
		return nil, err
	}
	gasLimit, err := b.Uint64Column("gas_limit")
	if err != nil {
		return nil, err
	}
	gasUsed, err := b.Uint64Column("gas_used")
	if err != nil {
		return nil, err
	}
	timestamp, err := b.Uint64Column("timestamp")
	if err != nil {
		return nil, err
	}
	baseFee, err := b.BytesColumn("base_fee_per_gas")
	if err != nil {
		return nil, err
	}

	out := make([]ethtypes.BlockHeader, b.NumRows())
	for i := range out {
		h := ethtypes.BlockHeader{
			Number:           number[i],
			Hash:             hash[i],
			ParentHash:       parentHash[i],
			Nonce:            nonce[i],
			Sha3Uncles:       sha3Uncles[i],
			LogsBloom:        logsBloom[i],
			TransactionsRoot: txRoot[i],
			StateRoot:        stateRoot[i],
			ReceiptsRoot:     receiptsRoot[i],
			Miner:            miner[i],
			Difficulty:       difficulty[i],
			TotalDifficulty:  totalDifficulty[i],
			ExtraData:        extraData[i],
			Size:             size[i],
			GasLimit:         gasLimit[i],
			GasUsed:          gasUsed[i],
			Timestamp:        timestamp[i],
		}
		if len(baseFee[i]) > 0 {
			h.BaseFeePerGas = baseFee[i]
		}
		out[i] = h
	}
	return out, nil
}

// DecodeTransactions decodes every row of b into a Transaction.
func DecodeTransactions(b Batch) ([]ethtypes.Transaction, error) {
	hash, err := b.HashColumn("hash")
	if err != nil {
		return nil, err
	}
	nonce, err := b.Uint64Column("nonce")
	if err != nil {
		return nil, err
	}
	blockHash, err := b.HashColumn("block_hash")
	if err != nil {
		return nil, err
	}
	blockNumber, err := b.Uint64Column("block_number")
	if err != nil {
		return nil, err
	}
	txIndex, err := b.Uint64Column("transaction_index")
	if err != nil {
		return nil, err
	}
	from, err := b.AddressColumn("from")
	if err != nil {
		return nil, err
	}
	to, err := optionalAddressColumn(b, "to")
	if err != nil {
		return nil, err
	}
	value, err := b.BytesColumn("value")
	if err != nil {
		return nil, err
	}
	gasPrice, err := b.BytesColumn("gas_price")
	if err != nil {
		return nil, err
	}
	gas, err := b.Uint64Column("gas")
	if err != nil {
		return nil, err
	}
	input, err := b.BytesColumn("input")
	if err != nil {
		return nil, err
	}
	v, err := b.BytesColumn("v")
	if err != nil {
		return nil, err
	}
	r, err := b.BytesColumn("r")
	if err != nil {
		return nil, err
	}
	s, err := b.BytesColumn("s")
	if err != nil {
		return nil, err
	}
	typ, err := b.OptionalUint64Column("type")
	if err != nil {
		return nil, err
	}
	chainID, err := b.OptionalUint64Column("chain_id")
	if err != nil {
		return nil, err
	}
	maxFee, err := b.BytesColumn("max_fee_per_gas")
	if err != nil {
		return nil, err
	}
	maxPriority, err := b.BytesColumn("max_priority_fee_per_gas")
	if err != nil {
		return nil, err
	}

	out := make([]ethtypes.Transaction, b.NumRows())
	for i := range out {
		out[i] = ethtypes.Transaction{
			Hash:                 hash[i],
			Nonce:                nonce[i],
			BlockHash:            blockHash[i],
			BlockNumber:          blockNumber[i],
			TransactionIndex:     txIndex[i],
			From:                 from[i],
			To:                   to[i],
			Value:                value[i],
			GasPrice:             gasPrice[i],
			Gas:                  gas[i],
			Input:                input[i],
			V:                    v[i],
			R:                    r[i],
			S:                    s[i],
			Type:                 typ[i],
			ChainId:              chainID[i],
			MaxFeePerGas:         nonEmpty(maxFee[i]),
			MaxPriorityFeePerGas: nonEmpty(maxPriority[i]),
		}
	}
	return out, nil
}

// DecodeTransactionHashes decodes just enough of b to list each block's
// transaction hashes in on-chain order, for the headers-only block
// variant where callers need eth_getBlockByNumber's "transactions"
// array to hold hashes without paying for a full transaction decode.
func DecodeTransactionHashes(b Batch) (map[uint64][]common.Hash, error) {
	hash, err := b.HashColumn("hash")
	if err != nil {
		return nil, err
	}
	blockNumber, err := b.Uint64Column("block_number")
	if err != nil {
		return nil, err
	}
	txIndex, err := b.Uint64Column("transaction_index")
	if err != nil {
		return nil, err
	}

	type indexed struct {
		index uint64
		hash  common.Hash
	}
	byBlock := map[uint64][]indexed{}
	for i := 0; i < b.NumRows(); i++ {
		byBlock[blockNumber[i]] = append(byBlock[blockNumber[i]], indexed{index: txIndex[i], hash: hash[i]})
	}

	out := make(map[uint64][]common.Hash, len(byBlock))
	for num, rows := range byBlock {
		sort.Slice(rows, func(i, j int) bool { return rows[i].index < rows[j].index })
		hashes := make([]common.Hash, len(rows))
		for i, r := range rows {
			hashes[i] = r.hash
		}
		out[num] = hashes
	}
	return out, nil
}

// DecodeReceipts decodes every row of b into a Receipt.
func DecodeReceipts(b Batch) ([]ethtypes.Receipt, error) {
	txHash, err := b.HashColumn("transaction_hash")
	if err != nil {
		return nil, err
	}
	txIndex, err := b.Uint64Column("transaction_index")
	if err != nil {
		return nil, err
	}
	blockHash, err := b.HashColumn("block_hash")
	if err != nil {
		return nil, err
	}
	blockNumber, err := b.Uint64Column("block_number")
	if err != nil {
		return nil, err
	}
	from, err := b.AddressColumn("from")
	if err != nil {
		return nil, err
	}
	to, err := optionalAddressColumn(b, "to")
	if err != nil {
		return nil, err
	}
	cumGasUsed, err := b.Uint64Column("cumulative_gas_used")
	if err != nil {
		return nil, err
	}
	gasUsed, err := b.Uint64Column("gas_used")
	if err != nil {
		return nil, err
	}
	contractAddress, err := optionalAddressColumn(b, "contract_address")
	if err != nil {
		return nil, err
	}
	logsBloom, err := b.BytesColumn("logs_bloom")
	if err != nil {
		return nil, err
	}
	status, err := b.OptionalUint64Column("status")
	if err != nil {
		return nil, err
	}
	typ, err := b.OptionalUint64Column("type")
	if err != nil {
		return nil, err
	}
	effectiveGasPrice, err := b.BytesColumn("effective_gas_price")
	if err != nil {
		return nil, err
	}

	out := make([]ethtypes.Receipt, b.NumRows())
	for i := range out {
		out[i] = ethtypes.Receipt{
			TransactionHash:   txHash[i],
			TransactionIndex:  txIndex[i],
			BlockHash:         blockHash[i],
			BlockNumber:       blockNumber[i],
			From:              from[i],
			To:                to[i],
			CumulativeGasUsed: cumGasUsed[i],
			GasUsed:           gasUsed[i],
			ContractAddress:   contractAddress[i],
			LogsBloom:         logsBloom[i],
			Status:            status[i],
			Type:              typ[i],
			EffectiveGasPrice: effectiveGasPrice[i],
		}
	}
	return out, nil
}

// DecodeLogs decodes every row of b into a Log. Topics are assembled
// from the four positional topic0..topic3 columns, stopping at the
// first empty one: the archive schema stores a fixed 4 columns, but the
// wire format (and match semantics) treat a log's topic list as
// variable-length.
func DecodeLogs(b Batch) ([]ethtypes.Log, error) {
	address, err := b.AddressColumn("address")
	if err != nil {
		return nil, err
	}
	topic0, err := optionalHashColumn(b, "topic0")
	if err != nil {
		return nil, err
	}
	topic1, err := optionalHashColumn(b, "topic1")
	if err != nil {
		return nil, err
	}
	topic2, err := optionalHashColumn(b, "topic2")
	if err != nil {
		return nil, err
	}
	topic3, err := optionalHashColumn(b, "topic3")
	if err != nil {
		return nil, err
	}
	data, err := b.BytesColumn("data")
	if err != nil {
		return nil, err
	}
	blockNumber, err := b.Uint64Column("block_number")
	if err != nil {
		return nil, err
	}
	blockHash, err := b.HashColumn("block_hash")
	if err != nil {
		return nil, err
	}
	txHash, err := b.HashColumn("transaction_hash")
	if err != nil {
		return nil, err
	}
	txIndex, err := b.Uint64Column("transaction_index")
	if err != nil {
		return nil, err
	}
	logIndex, err := b.Uint64Column("log_index")
	if err != nil {
		return nil, err
	}
	removed, err := b.BoolColumn("removed")
	if err != nil {
		return nil, err
	}

	topicCols := [4][]*common.Hash{topic0, topic1, topic2, topic3}
	out := make([]ethtypes.Log, b.NumRows())
	for i := range out {
		var topics []common.Hash
		for _, col := range topicCols {
			if col[i] == nil {
				break
			}
			topics = append(topics, *col[i])
		}
		out[i] = ethtypes.Log{
			Address:          address[i],
			Topics:           topics,
			Data:             data[i],
			BlockNumber:      blockNumber[i],
			BlockHash:        blockHash[i],
			TransactionHash:  txHash[i],
			TransactionIndex: txIndex[i],
			LogIndex:         logIndex[i],
			Removed:          removed[i],
		}
	}
	return out, nil
}

func nonEmpty(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
