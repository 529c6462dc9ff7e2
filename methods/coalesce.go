package methods

import (
	"sort"

	"github.com/0xsequence/hyperrpc-gateway/rpctypes"
)

// CoalesceBlocks sorts numbers and merges them into the smallest set of
// half-open ranges such that any two consecutive kept numbers within
// maxGap of each other end up in the same range. A single number n
// becomes [n, n+1); a run that grows by at most maxGap between
// neighbors extends the current range's upper bound rather than
// starting a new one. Duplicate numbers collapse naturally since the
// comparison is against the previous distinct value considered.
func CoalesceBlocks(numbers []uint64, maxGap uint64) []rpctypes.BlockRange {
	if len(numbers) == 0 {
		return nil
	}

	sorted := append([]uint64(nil), numbers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	ranges := make([]rpctypes.BlockRange, 0, len(sorted))
	start := sorted[0]
	prev := sorted[0]
	for _, n := range sorted[1:] {
		if n == prev {
			continue
		}
		if n-prev <= maxGap {
			prev = n
			continue
		}
		ranges = append(ranges, rpctypes.BlockRange{From: start, To: prev + 1})
		start = n
		prev = n
	}
	ranges = append(ranges, rpctypes.BlockRange{From: start, To: prev + 1})
	return ranges
}
