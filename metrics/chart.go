package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	defaultChartWidth  = 40
	defaultChartHeight = 10
)

// Chart renders the timing samples for name/operation as a block-character
// histogram: width equal-range buckets, bucket counts scaled to height
// rows, followed by a one-line min/mean/p95/max summary. With no samples it
// returns an explicit "no data" line instead of an empty chart.
func (r *Recorder) Chart(name, operation string, width, height int) string {
	if width <= 0 {
		width = defaultChartWidth
	}
	if height <= 0 {
		height = defaultChartHeight
	}

	values := r.timingValues(name, operation)
	if len(values) == 0 {
		label := name
		if operation != "" {
			label += "/" + operation
		}
		return fmt.Sprintf("no data recorded for %s", label)
	}

	sort.Float64s(values)
	counts := bucketize(values, width)

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	// Bar heights in rows; any non-empty bucket is at least one row tall
	bars := make([]int, width)
	for i, c := range counts {
		if c > 0 {
			bars[i] = int(math.Ceil(float64(c) * float64(height) / float64(maxCount)))
		}
	}

	var b strings.Builder
	title := name
	if operation != "" {
		title += "/" + operation
	}
	fmt.Fprintf(&b, "%s (%d samples)\n", title, len(values))

	for row := height; row >= 1; row-- {
		for col := 0; col < width; col++ {
			if bars[col] >= row {
				b.WriteRune('█')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat("─", width))
	b.WriteByte('\n')

	st := r.Stats(name, operation)
	fmt.Fprintf(&b, "min %.1fms  mean %.1fms  p95 %.1fms  max %.1fms",
		st.Min, st.Mean, st.P95, st.Max)

	return b.String()
}

// bucketize distributes sorted values into width equal-range buckets.
func bucketize(sorted []float64, width int) []int {
	counts := make([]int, width)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	span := hi - lo
	if span == 0 {
		// All samples identical; one bucket carries everything
		counts[0] = len(sorted)
		return counts
	}

	for _, v := range sorted {
		idx := int((v - lo) / span * float64(width))
		if idx >= width {
			idx = width - 1
		}
		counts[idx]++
	}
	return counts
}
