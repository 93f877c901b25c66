package tap

import "time"

// Timing holds the derived latency figures for one stream.
type Timing struct {
	// TTFT is the time from stream start to the first observed chunk.
	// Nil when no chunk arrived.
	TTFT *time.Duration
	// TBT is the mean gap between consecutive chunks. Zero when fewer
	// than two chunks arrived.
	TBT time.Duration
}

// computeTiming derives time-to-first-token and mean time-between-tokens
// from a stream's start time and its per-chunk arrival timestamps.
func computeTiming(start time.Time, stamps []time.Time) Timing {
	var t Timing
	if len(stamps) == 0 {
		return t
	}
	ttft := stamps[0].Sub(start)
	t.TTFT = &ttft
	if len(stamps) < 2 {
		return t
	}
	// The mean of consecutive gaps telescopes to (last-first)/(n-1).
	t.TBT = stamps[len(stamps)-1].Sub(stamps[0]) / time.Duration(len(stamps)-1)
	return t
}
