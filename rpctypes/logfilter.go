package rpctypes

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// LogFilter is the parsed form of an eth_getLogs / eth_newFilter params
// object. An empty Addresses set matches any address; each entry of
// Topics is an OR-set of candidate hashes for that position, and an
// empty entry at position i matches any topic at i (including a log
// with no topic at all at that position, so long as the selector itself
// is empty there).
type LogFilter struct {
	FromBlock BlockNumber
	ToBlock   BlockNumber
	BlockHash *common.Hash
	Addresses []common.Address
	Topics    [4][]common.Hash
}

type rawLogFilter struct {
	FromBlock json.RawMessage `json:"fromBlock"`
	ToBlock   json.RawMessage `json:"toBlock"`
	BlockHash *common.Hash    `json:"blockHash"`
	Address   json.RawMessage `json:"address"`
	Topics    []json.RawMessage `json:"topics"`
}

// ParseLogFilter parses the single params object eth_getLogs/eth_newFilter
// take. fromBlock/toBlock default to "latest" when absent, matching the
// upstream node semantics this gateway proxies when it cannot serve a
// query from the archive.
func ParseLogFilter(raw json.RawMessage) (LogFilter, error) {
	var r rawLogFilter
	if err := json.Unmarshal(raw, &r); err != nil {
		return LogFilter{}, fmt.Errorf("invalid filter object: %w", err)
	}

	f := LogFilter{FromBlock: Latest(), ToBlock: Latest(), BlockHash: r.BlockHash}

	if len(r.FromBlock) > 0 {
		bn, err := ParseBlockNumber(r.FromBlock)
		if err != nil {
			return LogFilter{}, fmt.Errorf("fromBlock: %w", err)
		}
		f.FromBlock = bn
	}
	if len(r.ToBlock) > 0 {
		bn, err := ParseBlockNumber(r.ToBlock)
		if err != nil {
			return LogFilter{}, fmt.Errorf("toBlock: %w", err)
		}
		f.ToBlock = bn
	}

	if len(r.Address) > 0 {
		addrs, err := parseAddressOrList(r.Address)
		if err != nil {
			return LogFilter{}, fmt.Errorf("address: %w", err)
		}
		f.Addresses = addrs
	}

	if len(r.Topics) > 4 {
		return LogFilter{}, fmt.Errorf("topics: at most 4 positions are supported, got %d", len(r.Topics))
	}
	for i, raw := range r.Topics {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		hashes, err := parseHashOrList(raw)
		if err != nil {
			return LogFilter{}, fmt.Errorf("topics[%d]: %w", i, err)
		}
		f.Topics[i] = hashes
	}

	return f, nil
}

func parseAddressOrList(raw json.RawMessage) ([]common.Address, error) {
	var single common.Address
	if err := json.Unmarshal(raw, &single); err == nil {
		return []common.Address{single}, nil
	}
	var list []common.Address
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func parseHashOrList(raw json.RawMessage) ([]common.Hash, error) {
	var single common.Hash
	if err := json.Unmarshal(raw, &single); err == nil {
		return []common.Hash{single}, nil
	}
	var list []common.Hash
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MatchAddress reports whether addr passes this filter's address set
// (an empty set matches everything).
func (f LogFilter) MatchAddress(addr common.Address) bool {
	if len(f.Addresses) == 0 {
		return true
	}
	for _, a := range f.Addresses {
		if a == addr {
			return true
		}
	}
	return false
}

// MatchTopics reports whether a log's topic list passes this filter's
// per-position topic selectors. A log with fewer topics than a
// non-empty selector position does not match.
func (f LogFilter) MatchTopics(topics []common.Hash) bool {
	for i, want := range f.Topics {
		if len(want) == 0 {
			continue
		}
		if i >= len(topics) {
			return false
		}
		matched := false
		for _, w := range want {
			if w == topics[i] {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// FilterId identifies a filter created by eth_newFilter.
type FilterId string
