package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder() *Recorder {
	// No pruner so tests control retention themselves
	return NewRecorder(Config{Retention: time.Hour})
}

func TestRecorder_RecordTiming(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	r.RecordTiming("api", "call", 120*time.Millisecond, Tags{"provider": "spotify"})

	st := r.Stats("api", "call")
	require.NotNil(t, st)
	assert.Equal(t, 1, st.Count)
	assert.InDelta(t, 120, st.Min, 0.01)
}

func TestRecorder_Increment(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	r.Increment("requests", 1, nil)
	r.Increment("requests", 1, nil)
	r.Increment("requests", 3, nil)
	r.Increment("other", 10, nil)

	assert.InDelta(t, 5, r.CounterValue("requests"), 1e-9)
	assert.InDelta(t, 10, r.CounterValue("other"), 1e-9)
	assert.Zero(t, r.CounterValue("absent"))
}

func TestRecorder_IncrementClampsNegative(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	r.Increment("requests", -5, nil)
	assert.Zero(t, r.CounterValue("requests"))
}

func TestRecorder_Gauge(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	_, ok := r.GaugeValue("memory")
	assert.False(t, ok)

	r.SetGauge("memory", 100, nil)
	r.SetGauge("memory", 250, nil)

	v, ok := r.GaugeValue("memory")
	require.True(t, ok)
	assert.InDelta(t, 250, v, 1e-9, "only the latest gauge reading is current")
}

func TestRecorder_Measure(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	err := r.Measure("api", "ok", nil, func() error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})
	require.NoError(t, err)

	st := r.Stats("api", "ok")
	require.NotNil(t, st)
	assert.GreaterOrEqual(t, st.Min, 10.0)
}

func TestRecorder_MeasureRecordsOnError(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	wantErr := errors.New("boom")
	err := r.Measure("api", "fail", nil, func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)

	st := r.Stats("api", "fail")
	require.NotNil(t, st, "failed operations are timed too")
	assert.Equal(t, 1, st.Count)
}

func TestRecorder_MeasureRecordsOnPanic(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	assert.Panics(t, func() {
		_ = r.Measure("api", "panic", nil, func() error { panic("boom") })
	})

	st := r.Stats("api", "panic")
	require.NotNil(t, st, "timing must be recorded on every exit path")
}

func TestMeasureValue(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	v, err := MeasureValue(r, "api", "fetch", nil, func() (string, error) {
		return "result", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "result", v)
	require.NotNil(t, r.Stats("api", "fetch"))
}

func TestRecorder_Names(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	r.RecordTiming("b_metric", "op", time.Millisecond, nil)
	r.RecordTiming("a_metric", "op", time.Millisecond, nil)
	r.RecordTiming("a_metric", "other", time.Millisecond, nil)
	r.Increment("counter_metric", 1, nil)

	assert.Equal(t, []string{"a_metric", "b_metric"}, r.Names(KindTiming))
	assert.Equal(t, []string{"counter_metric"}, r.Names(KindCounter))
	assert.Empty(t, r.Names(KindGauge))
}

func TestRecorder_Prune(t *testing.T) {
	r := NewRecorder(Config{Retention: 50 * time.Millisecond})
	defer r.Stop()

	r.RecordTiming("api", "old", time.Millisecond, nil)
	r.Increment("requests", 1, nil)
	time.Sleep(80 * time.Millisecond)
	r.RecordTiming("api", "new", time.Millisecond, nil)

	removed := r.Prune()
	assert.Equal(t, 2, removed)

	assert.Nil(t, r.Stats("api", "old"))
	require.NotNil(t, r.Stats("api", "new"))
	assert.Zero(t, r.CounterValue("requests"))
}

func TestRecorder_BackgroundPruner(t *testing.T) {
	r := NewRecorder(Config{Retention: 20 * time.Millisecond, PruneInterval: 10 * time.Millisecond})
	defer r.Stop()

	r.RecordTiming("api", "call", time.Millisecond, nil)

	assert.Eventually(t, func() bool {
		return r.Stats("api", "call") == nil
	}, time.Second, 10*time.Millisecond)
}

func TestRecorder_Clear(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	r.RecordTiming("api", "call", time.Millisecond, nil)
	r.Increment("requests", 1, nil)
	r.SetGauge("memory", 1, nil)

	r.Clear(KindTiming)
	assert.Nil(t, r.Stats("api", "call"))
	assert.InDelta(t, 1, r.CounterValue("requests"), 1e-9)

	r.ClearAll()
	assert.Zero(t, r.CounterValue("requests"))
	_, ok := r.GaugeValue("memory")
	assert.False(t, ok)
}

func TestRecorder_ConcurrentWritesKeepTimestampOrder(t *testing.T) {
	r := newTestRecorder()
	defer r.Stop()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				r.RecordTiming("api", "call", time.Millisecond, nil)
				r.SetGauge("load", float64(w*1000+i), nil)
			}
		}(w)
	}
	wg.Wait()

	// Pruning binary-searches each slice and GaugeValue scans from the
	// end, so samples must land in non-decreasing timestamp order even
	// under contention.
	r.mu.RLock()
	for kind, samples := range r.samples {
		for i := 1; i < len(samples); i++ {
			require.False(t, samples[i].Timestamp.Before(samples[i-1].Timestamp),
				"%s sample %d is older than its predecessor", kind, i)
		}
	}
	gauges := r.samples[KindGauge]
	last := gauges[len(gauges)-1]
	r.mu.RUnlock()

	v, ok := r.GaugeValue("load")
	require.True(t, ok)
	assert.InDelta(t, last.Value, v, 1e-9, "newest reading wins")
}

func TestRecorder_ConcurrentWrites(t *testing.T) {
	r := NewRecorder(Config{Retention: time.Hour, PruneInterval: 5 * time.Millisecond})
	defer r.Stop()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.RecordTiming("api", "call", time.Duration(i)*time.Millisecond, nil)
				r.Increment("requests", 1, nil)
				r.SetGauge("load", float64(i), nil)
				r.Stats("api", "call")
			}
		}()
	}
	wg.Wait()

	st := r.Stats("api", "call")
	require.NotNil(t, st)
	assert.Equal(t, 800, st.Count)
	assert.InDelta(t, 800, r.CounterValue("requests"), 1e-9)
}
