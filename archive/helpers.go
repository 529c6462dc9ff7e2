package archive

import "github.com/ethereum/go-ethereum/common"

// optionalAddressColumn reads an address column where a zero-length
// byte entry means "absent" (contract-creation transactions have no
// "to"; non-contract-creating receipts have no "contractAddress").
func optionalAddressColumn(b Batch, name string) ([]*common.Address, error) {
	raw, err := b.BytesColumn(name)
	if err != nil {
		return nil, err
	}
	out := make([]*common.Address, len(raw))
	for i, r := range raw {
		if len(r) == 0 {
			continue
		}
		a := common.BytesToAddress(r)
		out[i] = &a
	}
	return out, nil
}

// optionalHashColumn reads a topic column where a zero-length byte
// entry means "no topic at this position".
func optionalHashColumn(b Batch, name string) ([]*common.Hash, error) {
	raw, err := b.BytesColumn(name)
	if err != nil {
		return nil, err
	}
	out := make([]*common.Hash, len(raw))
	for i, r := range raw {
		if len(r) == 0 {
			continue
		}
		h := common.BytesToHash(r)
		out[i] = &h
	}
	return out, nil
}
