package serializer

import "golang.org/x/sync/errgroup"

// ParallelSerialize runs emit(i) for every i in [0, n) across a bounded
// pool of goroutines and returns the results in order. Serializing one
// record never depends on another, so spreading the work across a
// worker pool is safe and keeps CPU-bound JSON encoding off a single
// core for large result sets.
func ParallelSerialize(n int, concurrency int, emit func(i int) []byte) ([][]byte, error) {
	out := make([][]byte, n)
	if n == 0 {
		return out, nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			out[i] = emit(i)
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}
