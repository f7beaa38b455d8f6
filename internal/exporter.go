package internal

import (
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"

	"github.com/kfiore/perfpulse/cache"
	"github.com/kfiore/perfpulse/metrics"
	"github.com/kfiore/perfpulse/monitor"
	"github.com/kfiore/perfpulse/optimizer"
)

// Snapshot is a point-in-time JSON view over every store, suitable for
// scraping or offline inspection.
type Snapshot struct {
	Timestamp time.Time                 `json:"timestamp"`
	Cache     CacheSnapshot             `json:"cache"`
	Timings   map[string]*metrics.Stats `json:"timings"`
	Counters  map[string]float64        `json:"counters"`
	Gauges    map[string]float64        `json:"gauges"`
	Memory    monitor.MemorySnapshot    `json:"memory"`
	Processes monitor.ProcessStats      `json:"processes"`
	Analysis  optimizer.Analysis        `json:"analysis"`
}

// CacheSnapshot holds the aggregate plus per-namespace cache stats.
type CacheSnapshot struct {
	Total      cache.Stats            `json:"total"`
	Namespaces map[string]cache.Stats `json:"namespaces"`
}

// Snapshot captures the current state of all stores.
func (a *Application) Snapshot() Snapshot {
	snap := Snapshot{
		Timestamp: time.Now(),
		Cache: CacheSnapshot{
			Total:      a.cache.TotalStats(),
			Namespaces: make(map[string]cache.Stats),
		},
		Timings:   make(map[string]*metrics.Stats),
		Counters:  make(map[string]float64),
		Gauges:    make(map[string]float64),
		Memory:    a.monitor.Memory(),
		Processes: a.monitor.Processes(),
		Analysis:  a.optimizer.Analyze(),
	}

	for _, ns := range a.cache.Namespaces() {
		snap.Cache.Namespaces[ns] = a.cache.Stats(ns)
	}
	for _, name := range a.metrics.Names(metrics.KindTiming) {
		snap.Timings[name] = a.metrics.Stats(name, "")
	}
	for _, name := range a.metrics.Names(metrics.KindCounter) {
		snap.Counters[name] = a.metrics.CounterValue(name)
	}
	for _, name := range a.metrics.Names(metrics.KindGauge) {
		if v, ok := a.metrics.GaugeValue(name); ok {
			snap.Gauges[name] = v
		}
	}

	return snap
}

// Export writes a JSON snapshot to path, or to stdout when path is empty.
func (a *Application) Export(path string) error {
	data, err := sonic.ConfigDefault.MarshalIndent(a.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot to %s: %w", path, err)
	}
	a.logger.Infof("exported snapshot to %s", path)
	return nil
}
