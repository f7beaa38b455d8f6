package metrics

import (
	"math"
	"sort"
)

// Stats summarizes the retained timing samples for one metric. All values
// are milliseconds.
type Stats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

// Stats computes summary statistics over the retained timing samples for
// name, optionally scoped to operation (empty matches all). Returns nil
// when no samples exist.
func (r *Recorder) Stats(name, operation string) *Stats {
	values := r.timingValues(name, operation)
	if len(values) == 0 {
		return nil
	}

	sort.Float64s(values)

	var sum float64
	for _, v := range values {
		sum += v
	}

	return &Stats{
		Count:  len(values),
		Min:    values[0],
		Max:    values[len(values)-1],
		Mean:   sum / float64(len(values)),
		Median: percentile(values, 50),
		P95:    percentile(values, 95),
		P99:    percentile(values, 99),
	}
}

// percentile picks from an ascending-sorted slice using the nearest-rank
// definition: index = ceil(count*p/100) - 1, clamped to the valid range.
// A single-sample set therefore yields that sample for every percentile.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(float64(len(sorted))*p/100)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
