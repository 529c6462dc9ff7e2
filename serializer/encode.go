package serializer

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// quantity renders n as a minimal-width 0x-prefixed hex string: no
// leading zeros, "0x0" for zero. Every numeric field in a response
// (block/gas numbers, nonces, indices) uses this encoding.
func quantity(n uint64) []byte {
	return []byte(`"` + hexutil.EncodeUint64(n) + `"`)
}

func quantityPtr(n *uint64) []byte {
	if n == nil {
		return nullLiteral
	}
	return quantity(*n)
}

// bigQuantity renders a big-endian byte slice as a minimal-width
// 0x-prefixed hex string, treating an empty slice as zero. Used for
// wide scalars (difficulty, value, v/r/s, gas prices) the archive
// stores as raw big-endian bytes rather than as a fixed-width uint64.
// Every one of these fields is an EVM word, so it is decoded as a
// uint256 rather than an unbounded math/big.Int.
func bigQuantity(b []byte) []byte {
	if len(b) == 0 {
		return []byte(`"0x0"`)
	}
	v := new(uint256.Int).SetBytes(b)
	return []byte(`"` + v.Hex() + `"`)
}

func bigQuantityPtr(b []byte) []byte {
	if b == nil {
		return nullLiteral
	}
	return bigQuantity(b)
}

// byteString renders b as a full-width 0x-prefixed hex string (every
// byte present, unlike quantity). Used for extraData, input, logsBloom,
// and any other opaque byte payload.
func byteString(b []byte) []byte {
	return []byte(`"` + hexutil.Encode(b) + `"`)
}

func hash(h common.Hash) []byte {
	return []byte(`"` + h.Hex() + `"`)
}

func hashPtr(h *common.Hash) []byte {
	if h == nil {
		return nullLiteral
	}
	return hash(*h)
}

// address renders a as a plain lowercase 0x-prefixed hex string: no
// EIP-55 checksum casing, matching every other byte-field encoder in
// this file.
func address(a common.Address) []byte {
	return []byte(`"` + hexutil.Encode(a.Bytes()) + `"`)
}

func addressPtr(a *common.Address) []byte {
	if a == nil {
		return nullLiteral
	}
	return address(*a)
}

func boolean(b bool) []byte {
	if b {
		return []byte("true")
	}
	return []byte("false")
}

var (
	nullLiteral = []byte("null")
	zeroHash    = common.Hash{}
)
