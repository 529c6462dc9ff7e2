package serializer_test

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/0xsequence/hyperrpc-gateway/ethtypes"
	"github.com/0xsequence/hyperrpc-gateway/serializer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestSerializeLogRoundTrips(t *testing.T) {
	l := ethtypes.Log{
		Address:          common.HexToAddress("0xaaaa"),
		Topics:           []common.Hash{common.HexToHash("0x01")},
		Data:             []byte{0xde, 0xad, 0xbe, 0xef},
		BlockNumber:      100,
		BlockHash:        common.HexToHash("0x02"),
		TransactionHash:  common.HexToHash("0x03"),
		TransactionIndex: 1,
		LogIndex:         2,
		Removed:          false,
	}
	out := serializer.SerializeLog(l)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Equal(t, "0x64", decoded["blockNumber"])
	require.Equal(t, "0xdeadbeef", decoded["data"])
	require.Equal(t, false, decoded["removed"])
	require.Equal(t, []any{"0x0000000000000000000000000000000000000000000000000000000000000001"}, decoded["topics"])
}

func TestSerializeBlockHeaderZeroMixHash(t *testing.T) {
	h := ethtypes.BlockHeader{Number: 1, Miner: common.HexToAddress("0x01")}
	out := serializer.SerializeBlockHeader(h).Bytes()

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000000", decoded["mixHash"])
}

func TestSerializeBlockTransactionsHashesOnly(t *testing.T) {
	blk := ethtypes.Block{
		Header:       ethtypes.BlockHeader{Number: 1},
		TxHashesOnly: []common.Hash{common.HexToHash("0x01"), common.HexToHash("0x02")},
	}
	out := serializer.SerializeBlock(blk)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	txs, ok := decoded["transactions"].([]any)
	require.True(t, ok)
	require.Len(t, txs, 2)
	_, isString := txs[0].(string)
	require.True(t, isString)
}

func TestSerializeBlockFullTransactions(t *testing.T) {
	blk := ethtypes.Block{
		Header: ethtypes.BlockHeader{Number: 1},
		FullTxs: []ethtypes.Transaction{
			{Hash: common.HexToHash("0x01"), From: common.HexToAddress("0x02")},
		},
	}
	out := serializer.SerializeBlock(blk)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	txs := decoded["transactions"].([]any)
	require.Len(t, txs, 1)
	_, isObject := txs[0].(map[string]any)
	require.True(t, isObject)
}

func TestSerializeReceiptNullTypeWhenAbsent(t *testing.T) {
	out := serializer.SerializeReceipt(ethtypes.Receipt{}, nil)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	typ, hasType := decoded["type"]
	require.True(t, hasType)
	require.Nil(t, typ)
	require.Equal(t, []any{}, decoded["logs"])
}

func TestSerializeTransactionHasNoTypeFieldAndNullsAbsentFeeFields(t *testing.T) {
	out := serializer.SerializeTransaction(ethtypes.Transaction{})
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	_, hasType := decoded["type"]
	require.False(t, hasType)
	require.Nil(t, decoded["chainId"])
	require.Nil(t, decoded["maxPriorityFeePerGas"])
	require.Nil(t, decoded["maxFeePerGas"])
}

func TestSerializeAddressIsLowercaseNotChecksummed(t *testing.T) {
	tx := ethtypes.Transaction{From: common.HexToAddress("0xAbCdEf0123456789abcdef0123456789ABCDEF01")}
	out := serializer.SerializeTransaction(tx)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Equal(t, "0xabcdef0123456789abcdef0123456789abcdef01", decoded["from"])
}

func TestSerializeTransactionWideScalarFields(t *testing.T) {
	tx := ethtypes.Transaction{
		Value:    []byte{0x01, 0x00}, // 256
		GasPrice: []byte{},           // zero
		V:        []byte{0x1b},       // 27
	}
	out := serializer.SerializeTransaction(tx)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Equal(t, "0x100", decoded["value"])
	require.Equal(t, "0x0", decoded["gasPrice"])
	require.Equal(t, "0x1b", decoded["v"])
}

func TestParallelSerializePreservesOrder(t *testing.T) {
	n := 50
	out, err := serializer.ParallelSerialize(n, 4, func(i int) []byte {
		return serializer.SerializeLog(ethtypes.Log{LogIndex: uint64(i)})
	})
	require.NoError(t, err)
	require.Len(t, out, n)
	for i, o := range out {
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(o, &decoded))
		require.Equal(t, hexutilQuantity(uint64(i)), decoded["logIndex"])
	}
}

func hexutilQuantity(n uint64) string {
	if n == 0 {
		return "0x0"
	}
	return "0x" + strconv.FormatUint(n, 16)
}
