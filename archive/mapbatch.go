package archive

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// MapBatch is a Batch backed by plain Go slices, keyed by column name.
// This module's own tests build it by hand, and HTTPClient decodes every
// batch it receives from the archive service into one.
type MapBatch struct {
	Rows    int
	Uint64s map[string][]uint64
	Bytes   map[string][][]byte
	Bools   map[string][]bool
}

func NewMapBatch(rows int) *MapBatch {
	return &MapBatch{
		Rows:    rows,
		Uint64s: map[string][]uint64{},
		Bytes:   map[string][][]byte{},
		Bools:   map[string][]bool{},
	}
}

func (m *MapBatch) NumRows() int { return m.Rows }

func (m *MapBatch) Uint64Column(name string) ([]uint64, error) {
	col, ok := m.Uint64s[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	return col, nil
}

func (m *MapBatch) OptionalUint64Column(name string) ([]*uint64, error) {
	col, err := m.Uint64Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]*uint64, len(col))
	for i := range col {
		v := col[i]
		out[i] = &v
	}
	return out, nil
}

func (m *MapBatch) BytesColumn(name string) ([][]byte, error) {
	col, ok := m.Bytes[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	return col, nil
}

func (m *MapBatch) HashColumn(name string) ([]common.Hash, error) {
	raw, err := m.BytesColumn(name)
	if err != nil {
		return nil, err
	}
	out := make([]common.Hash, len(raw))
	for i, r := range raw {
		out[i] = common.BytesToHash(r)
	}
	return out, nil
}

func (m *MapBatch) AddressColumn(name string) ([]common.Address, error) {
	raw, err := m.BytesColumn(name)
	if err != nil {
		return nil, err
	}
	out := make([]common.Address, len(raw))
	for i, r := range raw {
		out[i] = common.BytesToAddress(r)
	}
	return out, nil
}

func (m *MapBatch) BoolColumn(name string) ([]bool, error) {
	col, ok := m.Bools[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	return col, nil
}

var _ Batch = (*MapBatch)(nil)
