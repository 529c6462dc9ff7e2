// Package metrics accumulates the per-batch timing breakdown the method
// handlers measure: how much of the batch's wall time went to the
// archive, to upstream nodes, and to serialization. Every method handler
// returns one of these for the group of requests it answered, and
// gateway.Execute sums them for the whole batch. The HTTP front end
// neither logs nor returns the total.
package metrics

import "time"

// Query is an additive monoid: Add combines two partial measurements of
// the same batch into the whole. The zero value is the identity element.
type Query struct {
	ArchiveTime    time.Duration
	UpstreamTime   time.Duration
	SerializeTime  time.Duration
	ArchiveQueries int
	UpstreamCalls  int
}

func (q Query) Add(o Query) Query {
	return Query{
		ArchiveTime:    q.ArchiveTime + o.ArchiveTime,
		UpstreamTime:   q.UpstreamTime + o.UpstreamTime,
		SerializeTime:  q.SerializeTime + o.SerializeTime,
		ArchiveQueries: q.ArchiveQueries + o.ArchiveQueries,
		UpstreamCalls:  q.UpstreamCalls + o.UpstreamCalls,
	}
}

// Sum folds Add over a slice, starting from the zero value.
func Sum(qs []Query) Query {
	var total Query
	for _, q := range qs {
		total = total.Add(q)
	}
	return total
}

// Time starts timing one phase and returns a function that, when
// called, adds the elapsed time to *dst, so call sites can write:
//
//	defer metrics.Time(&m.ArchiveTime)()
func Time(dst *time.Duration) func() {
	start := time.Now()
	return func() {
		*dst += time.Since(start)
	}
}
