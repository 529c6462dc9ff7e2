package archive_test

import (
	"testing"

	"github.com/0xsequence/hyperrpc-gateway/archive"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func blockBatchFixture() *archive.MapBatch {
	b := archive.NewMapBatch(1)
	b.Uint64s["number"] = []uint64{10}
	b.Bytes["hash"] = [][]byte{common.HexToHash("0x01").Bytes()}
	b.Bytes["parent_hash"] = [][]byte{common.HexToHash("0x02").Bytes()}
	b.Uint64s["nonce"] = []uint64{0}
	b.Bytes["sha3_uncles"] = [][]byte{common.HexToHash("0x03").Bytes()}
	b.Bytes["logs_bloom"] = [][]byte{make([]byte, 256)}
	b.Bytes["transactions_root"] = [][]byte{common.HexToHash("0x04").Bytes()}
	b.Bytes["state_root"] = [][]byte{common.HexToHash("0x05").Bytes()}
	b.Bytes["receipts_root"] = [][]byte{common.HexToHash("0x06").Bytes()}
	b.Bytes["miner"] = [][]byte{common.HexToAddress("0x07").Bytes()}
	b.Bytes["difficulty"] = [][]byte{{0x01}}
	b.Bytes["total_difficulty"] = [][]byte{{0x02}}
	b.Bytes["extra_data"] = [][]byte{{}}
	b.Uint64s["size"] = []uint64{1024}
	b.Uint64s["gas_limit"] = []uint64{30_000_000}
	b.Uint64s["gas_used"] = []uint64{21_000}
	b.Uint64s["timestamp"] = []uint64{1_700_000_000}
	b.Bytes["base_fee_per_gas"] = [][]byte{{0x3b, 0x9a, 0xca, 0x00}}
	return b
}

func TestDecodeBlockHeaders(t *testing.T) {
	headers, err := archive.DecodeBlockHeaders(blockBatchFixture())
	require.NoError(t, err)
	require.Len(t, headers, 1)
	require.Equal(t, uint64(10), headers[0].Number)
	require.Equal(t, common.HexToHash("0x01"), headers[0].Hash)
	require.Equal(t, []byte{0x3b, 0x9a, 0xca, 0x00}, headers[0].BaseFeePerGas)
}

func TestDecodeBlockHeadersMissingColumn(t *testing.T) {
	b := blockBatchFixture()
	delete(b.Uint64s, "number")
	_, err := archive.DecodeBlockHeaders(b)
	require.Error(t, err)
}

func TestDecodeLogsTopicTruncation(t *testing.T) {
	b := archive.NewMapBatch(1)
	b.Bytes["address"] = [][]byte{common.HexToAddress("0xaa").Bytes()}
	b.Bytes["topic0"] = [][]byte{common.HexToHash("0x01").Bytes()}
	b.Bytes["topic1"] = [][]byte{{}}
	b.Bytes["topic2"] = [][]byte{common.HexToHash("0x02").Bytes()}
	b.Bytes["topic3"] = [][]byte{{}}
	b.Bytes["data"] = [][]byte{{0xde, 0xad}}
	b.Uint64s["block_number"] = []uint64{5}
	b.Bytes["block_hash"] = [][]byte{common.HexToHash("0x03").Bytes()}
	b.Bytes["transaction_hash"] = [][]byte{common.HexToHash("0x04").Bytes()}
	b.Uint64s["transaction_index"] = []uint64{0}
	b.Uint64s["log_index"] = []uint64{0}
	b.Bools["removed"] = []bool{false}

	logs, err := archive.DecodeLogs(b)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	// topic1 is empty, so the topic list stops after topic0 even though
	// topic2 is populated: a log's topics are contiguous from position 0.
	require.Equal(t, []common.Hash{common.HexToHash("0x01")}, logs[0].Topics)
}
