package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/kfiore/perfpulse/logging"
)

// Kind identifies the metric sample kinds the recorder accepts.
type Kind string

const (
	KindTiming  Kind = "timing"
	KindCounter Kind = "counter"
	KindGauge   Kind = "gauge"
)

// Tags carries optional labels attached to a sample.
type Tags map[string]string

// Sample is a single immutable observation. Timing values are milliseconds,
// counter values are non-negative deltas, gauge values are point readings
// where only the most recent is current.
type Sample struct {
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	Operation string    `json:"operation,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Tags      Tags      `json:"tags,omitempty"`
}

// Config configures the metrics recorder
type Config struct {
	Retention     time.Duration `yaml:"retention" json:"retention"`
	PruneInterval time.Duration `yaml:"prune_interval" json:"prune_interval"`
}

// Recorder is an append-only store of metric samples with a retention
// window. Writers append under a short lock; statistics snapshot and sort a
// copy, so they never observe a partially written sample.
type Recorder struct {
	mu      sync.RWMutex
	samples map[Kind][]Sample
	config  Config

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRecorder creates a recorder and starts its retention pruner when
// PruneInterval is positive.
func NewRecorder(config Config) *Recorder {
	if config.Retention <= 0 {
		config.Retention = time.Hour
	}

	r := &Recorder{
		samples: map[Kind][]Sample{
			KindTiming:  nil,
			KindCounter: nil,
			KindGauge:   nil,
		},
		config: config,
		stopCh: make(chan struct{}),
	}

	if config.PruneInterval > 0 {
		go r.pruner(config.PruneInterval)
	}

	return r
}

// Stop terminates the background pruner. Safe to call more than once.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

func (r *Recorder) pruner(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := r.Prune()
			if removed > 0 {
				logging.LogDebugf("metrics pruner dropped %d samples past retention", removed)
			}
		case <-r.stopCh:
			return
		}
	}
}

// append stamps the sample and stores it. The timestamp is taken under the
// lock so each per-kind slice stays in timestamp order: Prune's binary
// search and GaugeValue's reverse scan both rely on that.
func (r *Recorder) append(s Sample) {
	r.mu.Lock()
	s.Timestamp = time.Now()
	r.samples[s.Kind] = append(r.samples[s.Kind], s)
	r.mu.Unlock()
}

// RecordTiming appends a timing sample for name/operation. The duration is
// stored in milliseconds.
func (r *Recorder) RecordTiming(name, operation string, d time.Duration, tags Tags) {
	r.append(Sample{
		Kind:      KindTiming,
		Name:      name,
		Operation: operation,
		Value:     float64(d) / float64(time.Millisecond),
		Tags:      tags,
	})
}

// Increment appends a counter delta for name. Negative deltas are clamped
// to zero.
func (r *Recorder) Increment(name string, delta float64, tags Tags) {
	if delta < 0 {
		delta = 0
	}
	r.append(Sample{
		Kind:  KindCounter,
		Name:  name,
		Value: delta,
		Tags:  tags,
	})
}

// SetGauge appends a gauge reading for name.
func (r *Recorder) SetGauge(name string, value float64, tags Tags) {
	r.append(Sample{
		Kind:  KindGauge,
		Name:  name,
		Value: value,
		Tags:  tags,
	})
}

// Measure runs fn and records its wall time as a timing sample for
// name/operation. The sample is recorded on every exit path, including
// error returns and panics: failed operations are timed too, since their
// latency is exactly what a bottleneck analysis needs to see.
func (r *Recorder) Measure(name, operation string, tags Tags, fn func() error) error {
	start := time.Now()
	defer func() {
		r.RecordTiming(name, operation, time.Since(start), tags)
	}()
	return fn()
}

// MeasureValue is Measure for functions that also return a value.
func MeasureValue[T any](r *Recorder, name, operation string, tags Tags, fn func() (T, error)) (T, error) {
	start := time.Now()
	defer func() {
		r.RecordTiming(name, operation, time.Since(start), tags)
	}()
	return fn()
}

// CounterValue returns the sum of all retained counter deltas for name.
func (r *Recorder) CounterValue(name string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, s := range r.samples[KindCounter] {
		if s.Name == name {
			total += s.Value
		}
	}
	return total
}

// GaugeValue returns the most recently recorded gauge reading for name.
// The second return is false when no reading exists.
func (r *Recorder) GaugeValue(name string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gauges := r.samples[KindGauge]
	for i := len(gauges) - 1; i >= 0; i-- {
		if gauges[i].Name == name {
			return gauges[i].Value, true
		}
	}
	return 0, false
}

// Names returns the distinct, sorted metric names recorded under kind.
func (r *Recorder) Names(kind Kind) []string {
	r.mu.RLock()
	seen := make(map[string]struct{})
	for _, s := range r.samples[kind] {
		seen[s.Name] = struct{}{}
	}
	r.mu.RUnlock()

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prune drops samples older than the retention window and returns the
// number removed. Samples are appended in time order, so pruning trims a
// prefix per kind.
func (r *Recorder) Prune() int {
	cutoff := time.Now().Add(-r.config.Retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for kind, samples := range r.samples {
		idx := sort.Search(len(samples), func(i int) bool {
			return samples[i].Timestamp.After(cutoff)
		})
		if idx > 0 {
			removed += idx
			r.samples[kind] = append([]Sample(nil), samples[idx:]...)
		}
	}
	return removed
}

// Clear removes all samples of the given kind.
func (r *Recorder) Clear(kind Kind) {
	r.mu.Lock()
	r.samples[kind] = nil
	r.mu.Unlock()
}

// ClearAll removes every sample of every kind.
func (r *Recorder) ClearAll() {
	r.mu.Lock()
	for kind := range r.samples {
		r.samples[kind] = nil
	}
	r.mu.Unlock()
}

// timingValues snapshots the timing values for name, optionally scoped to
// operation (empty matches all operations).
func (r *Recorder) timingValues(name, operation string) []float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var values []float64
	for _, s := range r.samples[KindTiming] {
		if s.Name != name {
			continue
		}
		if operation != "" && s.Operation != operation {
			continue
		}
		values = append(values, s.Value)
	}
	return values
}
