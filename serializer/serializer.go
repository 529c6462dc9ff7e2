// Package serializer hand-assembles the exact JSON shape the Ethereum
// JSON-RPC wire format expects for blocks, transactions, receipts, and
// logs, field by field, directly into byte fragments. It never goes
// through encoding/json/reflection for a response body: every field
// name and ordering is fixed at compile time, matching what a real
// node emits byte-for-byte.
package serializer

import (
	"github.com/0xsequence/hyperrpc-gateway/bytesbuilder"
	"github.com/0xsequence/hyperrpc-gateway/ethtypes"
)

// SerializeLog writes one log object. Field order: address, topics,
// data, blockNumber, transactionHash, transactionIndex, blockHash,
// logIndex, removed.
func SerializeLog(l ethtypes.Log) []byte {
	b := bytesbuilder.New(20)
	b.PushStatic(`{"address":`)
	b.Push(address(l.Address))
	b.PushStatic(`,"topics":[`)
	for i, t := range l.Topics {
		if i > 0 {
			b.PushStatic(",")
		}
		b.Push(hash(t))
	}
	b.PushStatic(`],"data":`)
	b.Push(byteString(l.Data))
	b.PushStatic(`,"blockNumber":`)
	b.Push(quantity(l.BlockNumber))
	b.PushStatic(`,"transactionHash":`)
	b.Push(hash(l.TransactionHash))
	b.PushStatic(`,"transactionIndex":`)
	b.Push(quantity(l.TransactionIndex))
	b.PushStatic(`,"blockHash":`)
	b.Push(hash(l.BlockHash))
	b.PushStatic(`,"logIndex":`)
	b.Push(quantity(l.LogIndex))
	b.PushStatic(`,"removed":`)
	b.Push(boolean(l.Removed))
	b.PushStatic(`}`)
	return b.Bytes()
}

// SerializeTransaction writes one transaction object. Field order is
// fixed: blockHash, blockNumber, from, gas, gasPrice, hash, input,
// nonce, to, transactionIndex, value, chainId, v, r, s,
// maxPriorityFeePerGas, maxFeePerGas. There is no "type" field; chainId,
// maxPriorityFeePerGas, and maxFeePerGas are always present, emitted as
// null when a transaction doesn't carry them (legacy transactions have
// no EIP-1559 fee fields), rather than omitted.
func SerializeTransaction(tx ethtypes.Transaction) []byte {
	b := bytesbuilder.New(26)
	b.PushStatic(`{"blockHash":`)
	b.Push(hash(tx.BlockHash))
	b.PushStatic(`,"blockNumber":`)
	b.Push(quantity(tx.BlockNumber))
	b.PushStatic(`,"from":`)
	b.Push(address(tx.From))
	b.PushStatic(`,"gas":`)
	b.Push(quantity(tx.Gas))
	b.PushStatic(`,"gasPrice":`)
	b.Push(bigQuantity(tx.GasPrice))
	b.PushStatic(`,"hash":`)
	b.Push(hash(tx.Hash))
	b.PushStatic(`,"input":`)
	b.Push(byteString(tx.Input))
	b.PushStatic(`,"nonce":`)
	b.Push(quantity(tx.Nonce))
	b.PushStatic(`,"to":`)
	b.Push(addressPtr(tx.To))
	b.PushStatic(`,"transactionIndex":`)
	b.Push(quantity(tx.TransactionIndex))
	b.PushStatic(`,"value":`)
	b.Push(bigQuantity(tx.Value))
	b.PushStatic(`,"chainId":`)
	b.Push(quantityPtr(tx.ChainId))
	b.PushStatic(`,"v":`)
	b.Push(bigQuantity(tx.V))
	b.PushStatic(`,"r":`)
	b.Push(bigQuantity(tx.R))
	b.PushStatic(`,"s":`)
	b.Push(bigQuantity(tx.S))
	b.PushStatic(`,"maxPriorityFeePerGas":`)
	b.Push(bigQuantityPtr(tx.MaxPriorityFeePerGas))
	b.PushStatic(`,"maxFeePerGas":`)
	b.Push(bigQuantityPtr(tx.MaxFeePerGas))
	b.PushStatic(`}`)
	return b.Bytes()
}

// SerializeTransactionHash writes a bare "0x..." hash string, the form
// a block's "transactions" array takes when full bodies were not
// requested.
func SerializeTransactionHash(h ethtypes.Transaction) []byte {
	return hash(h.Hash)
}

// SerializeReceipt writes one receipt object. Field order: blockHash,
// blockNumber, contractAddress, cumulativeGasUsed, effectiveGasPrice,
// from, gasUsed, logsBloom, status, to, transactionHash,
// transactionIndex, type, logs.
func SerializeReceipt(r ethtypes.Receipt, logs []ethtypes.Log) []byte {
	b := bytesbuilder.New(20)
	b.PushStatic(`{"blockHash":`)
	b.Push(hash(r.BlockHash))
	b.PushStatic(`,"blockNumber":`)
	b.Push(quantity(r.BlockNumber))
	b.PushStatic(`,"contractAddress":`)
	b.Push(addressPtr(r.ContractAddress))
	b.PushStatic(`,"cumulativeGasUsed":`)
	b.Push(quantity(r.CumulativeGasUsed))
	b.PushStatic(`,"effectiveGasPrice":`)
	b.Push(bigQuantity(r.EffectiveGasPrice))
	b.PushStatic(`,"from":`)
	b.Push(address(r.From))
	b.PushStatic(`,"gasUsed":`)
	b.Push(quantity(r.GasUsed))
	b.PushStatic(`,"logsBloom":`)
	b.Push(byteString(r.LogsBloom))
	b.PushStatic(`,"status":`)
	b.Push(quantityPtr(r.Status))
	b.PushStatic(`,"to":`)
	b.Push(addressPtr(r.To))
	b.PushStatic(`,"transactionHash":`)
	b.Push(hash(r.TransactionHash))
	b.PushStatic(`,"transactionIndex":`)
	b.Push(quantity(r.TransactionIndex))
	b.PushStatic(`,"type":`)
	b.Push(quantityPtr(r.Type))
	b.PushStatic(`,"logs":`)
	logsBuilder := bytesbuilder.New(len(logs))
	logsBuilder.PushJSONList(len(logs), func(i int) []byte { return SerializeLog(logs[i]) })
	b.Extend(logsBuilder)
	b.PushStatic(`}`)
	return b.Bytes()
}

// SerializeBlockHeader writes one block header object without a
// "transactions" field; callers append that field themselves (via
// SerializeBlock) since whether it holds hashes or full bodies, and
// whether it's present at all, depends on the caller's request. Field
// order: difficulty, extraData, gasLimit, gasUsed, hash, logsBloom,
// miner, nonce, number, parentHash, receiptsRoot, sha3Uncles, size,
// stateRoot, timestamp, totalDifficulty, transactionsRoot, mixHash,
// [baseFeePerGas,] [uncles]. baseFeePerGas is emitted only when the
// header carries one, uncles only when the list is non-empty.
//
// mixHash is always emitted as the zero hash: the archive does not
// capture it (it predates the merge and carries no information for
// post-merge blocks, which is the only range this gateway serves), but
// the field is part of the fixed wire shape so it is always present.
func SerializeBlockHeader(h ethtypes.BlockHeader) *bytesbuilder.Builder {
	b := bytesbuilder.New(24)
	b.PushStatic(`{"difficulty":`)
	b.Push(bigQuantity(h.Difficulty))
	b.PushStatic(`,"extraData":`)
	b.Push(byteString(h.ExtraData))
	b.PushStatic(`,"gasLimit":`)
	b.Push(quantity(h.GasLimit))
	b.PushStatic(`,"gasUsed":`)
	b.Push(quantity(h.GasUsed))
	b.PushStatic(`,"hash":`)
	b.Push(hash(h.Hash))
	b.PushStatic(`,"logsBloom":`)
	b.Push(byteString(h.LogsBloom))
	b.PushStatic(`,"miner":`)
	b.Push(address(h.Miner))
	b.PushStatic(`,"nonce":`)
	b.Push(quantity(h.Nonce))
	b.PushStatic(`,"number":`)
	b.Push(quantity(h.Number))
	b.PushStatic(`,"parentHash":`)
	b.Push(hash(h.ParentHash))
	b.PushStatic(`,"receiptsRoot":`)
	b.Push(hash(h.ReceiptsRoot))
	b.PushStatic(`,"sha3Uncles":`)
	b.Push(hash(h.Sha3Uncles))
	b.PushStatic(`,"size":`)
	b.Push(quantity(h.Size))
	b.PushStatic(`,"stateRoot":`)
	b.Push(hash(h.StateRoot))
	b.PushStatic(`,"timestamp":`)
	b.Push(quantity(h.Timestamp))
	b.PushStatic(`,"totalDifficulty":`)
	b.Push(bigQuantityPtr(h.TotalDifficulty))
	b.PushStatic(`,"transactionsRoot":`)
	b.Push(hash(h.TransactionsRoot))
	b.PushStatic(`,"mixHash":`)
	b.Push(hash(zeroHash))
	if h.BaseFeePerGas != nil {
		b.PushStatic(`,"baseFeePerGas":`)
		b.Push(bigQuantity(h.BaseFeePerGas))
	}
	if len(h.Uncles) > 0 {
		b.PushStatic(`,"uncles":[`)
		for i, u := range h.Uncles {
			if i > 0 {
				b.PushStatic(",")
			}
			b.Push(hash(u))
		}
		b.PushStatic(`]`)
	}
	return b
}

// SerializeBlock writes a full block object: the header fields plus a
// "transactions" array, either of hashes or of full transaction
// objects depending on which of Block.TxHashesOnly / Block.FullTxs is
// set.
func SerializeBlock(blk ethtypes.Block) []byte {
	b := SerializeBlockHeader(blk.Header)
	b.PushStatic(`,"transactions":`)
	switch {
	case blk.FullTxs != nil:
		b.PushJSONList(len(blk.FullTxs), func(i int) []byte { return SerializeTransaction(blk.FullTxs[i]) })
	default:
		b.PushJSONList(len(blk.TxHashesOnly), func(i int) []byte {
			return hash(blk.TxHashesOnly[i])
		})
	}
	b.PushStatic(`}`)
	return b.Bytes()
}
