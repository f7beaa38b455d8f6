package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChart_NoData(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	out := r.Chart("api", "call", 40, 10)
	assert.Equal(t, "no data recorded for api/call", out)

	out = r.Chart("api", "", 40, 10)
	assert.Equal(t, "no data recorded for api", out)
}

func TestChart_RendersHistogram(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	for i := 0; i < 200; i++ {
		r.RecordTiming("api", "call", time.Duration(50+i%100)*time.Millisecond, nil)
	}

	out := r.Chart("api", "call", 20, 5)
	lines := strings.Split(out, "\n")

	// title + height rows + axis + summary
	require.Len(t, lines, 1+5+1+1)
	assert.Contains(t, lines[0], "api/call")
	assert.Contains(t, lines[0], "200 samples")

	assert.Contains(t, out, "█")
	assert.Equal(t, strings.Repeat("─", 20), lines[6])
	assert.Contains(t, lines[7], "min 50.0ms")
	assert.Contains(t, lines[7], "max 149.0ms")

	// Every chart row is exactly width wide
	for _, row := range lines[1:6] {
		assert.Equal(t, 20, len([]rune(row)))
	}
}

func TestChart_DefaultDimensions(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	r.RecordTiming("api", "call", 10*time.Millisecond, nil)

	out := r.Chart("api", "call", 0, 0)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 1+defaultChartHeight+1+1)
	assert.Equal(t, strings.Repeat("─", defaultChartWidth), lines[defaultChartHeight+1])
}

func TestChart_IdenticalSamples(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	for i := 0; i < 10; i++ {
		r.RecordTiming("api", "call", 25*time.Millisecond, nil)
	}

	out := r.Chart("api", "call", 10, 4)
	assert.Contains(t, out, "█", "identical samples still produce a visible bar")
}

func TestBucketize(t *testing.T) {
	counts := bucketize([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 5)
	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, 11, total, "every sample lands in exactly one bucket")
	assert.Equal(t, 5, len(counts))
}
