// Package optimizer composes cache, metrics, and resource signals into a
// health analysis with prioritized recommendations, plus a bounded set of
// safe automatic remediations.
package optimizer

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/kfiore/perfpulse/cache"
	"github.com/kfiore/perfpulse/metrics"
	"github.com/kfiore/perfpulse/monitor"
)

// CacheStore is the slice of the cache store the optimizer reads and,
// during Optimize, prunes.
type CacheStore interface {
	TotalStats() cache.Stats
	Size() int
	PruneExpired() int
}

// MetricsSource exposes the recorded timing metrics.
type MetricsSource interface {
	Names(kind metrics.Kind) []string
	Stats(name, operation string) *metrics.Stats
}

// ResourceMonitor supplies memory and scheduler figures.
type ResourceMonitor interface {
	Memory() monitor.MemorySnapshot
	Processes() monitor.ProcessStats
}

// Pressure is the coarse memory pressure tier.
type Pressure string

const (
	PressureLow    Pressure = "low"
	PressureMedium Pressure = "medium"
	PressureHigh   Pressure = "high"
)

// Priority orders recommendations; higher sorts first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// RecommendationKind is the closed set of recommendation variants.
type RecommendationKind string

const (
	RecommendCache      RecommendationKind = "cache"
	RecommendMemory     RecommendationKind = "memory"
	RecommendBottleneck RecommendationKind = "bottleneck"
)

// Recommendation is one advisory finding. Action, when non-nil, performs
// the remediation the description suggests.
type Recommendation struct {
	Kind        RecommendationKind `json:"kind"`
	Priority    Priority           `json:"priority"`
	Description string             `json:"description"`
	Action      func()             `json:"-"`
}

// Analysis is the combined health view over all three stores.
type Analysis struct {
	CacheEfficiency    float64          `json:"cache_efficiency"`
	TotalRequests      int64            `json:"total_requests"`
	MemoryPressure     Pressure         `json:"memory_pressure"`
	MemoryUtilization  float64          `json:"memory_utilization"`
	MemoryTotal        uint64           `json:"memory_total"`
	MemoryBudget       uint64           `json:"memory_budget"`
	ProcessUtilization float64          `json:"process_utilization"`
	Bottlenecks        []string         `json:"bottlenecks"`
	Recommendations    []Recommendation `json:"recommendations"`
	Healthy            bool             `json:"healthy"`
}

// Config carries the advisory thresholds. All comparisons against tier
// boundaries are strictly greater-than.
type Config struct {
	MemoryBudget     uint64  `yaml:"memory_budget" json:"memory_budget"`
	TargetHitRate    float64 `yaml:"target_hit_rate" json:"target_hit_rate"`
	MinRequests      int64   `yaml:"min_requests" json:"min_requests"`
	BottleneckP95Ms  float64 `yaml:"bottleneck_p95_ms" json:"bottleneck_p95_ms"`
	BottleneckMeanMs float64 `yaml:"bottleneck_mean_ms" json:"bottleneck_mean_ms"`
	PruneThreshold   int     `yaml:"prune_threshold" json:"prune_threshold"`
}

// DefaultConfig returns the default optimizer thresholds.
func DefaultConfig() Config {
	return Config{
		MemoryBudget:     512 << 20,
		TargetHitRate:    0.8,
		MinRequests:      100,
		BottleneckP95Ms:  500,
		BottleneckMeanMs: 200,
		PruneThreshold:   1000,
	}
}

// Optimizer reads the cache store, metrics recorder, and resource monitor.
// Its only mutations are the bounded remediations of Optimize and the
// Action callbacks it hands out. The thresholds may be swapped at runtime
// via SetConfig, so every analysis works on a snapshot taken under mu.
type Optimizer struct {
	cache   CacheStore
	metrics MetricsSource
	monitor ResourceMonitor

	mu     sync.RWMutex
	config Config
}

// New creates an optimizer over the given stores. Zero config fields fall
// back to defaults.
func New(c CacheStore, m MetricsSource, r ResourceMonitor, config Config) *Optimizer {
	def := DefaultConfig()
	if config.MemoryBudget == 0 {
		config.MemoryBudget = def.MemoryBudget
	}
	if config.TargetHitRate == 0 {
		config.TargetHitRate = def.TargetHitRate
	}
	if config.MinRequests == 0 {
		config.MinRequests = def.MinRequests
	}
	if config.BottleneckP95Ms == 0 {
		config.BottleneckP95Ms = def.BottleneckP95Ms
	}
	if config.BottleneckMeanMs == 0 {
		config.BottleneckMeanMs = def.BottleneckMeanMs
	}
	if config.PruneThreshold == 0 {
		config.PruneThreshold = def.PruneThreshold
	}

	return &Optimizer{cache: c, metrics: m, monitor: r, config: config}
}

// Config returns the thresholds currently in effect.
func (o *Optimizer) Config() Config {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.config
}

// SetConfig replaces the thresholds, e.g. after a config reload. An
// analysis already in flight finishes against the snapshot it started
// with; the next one sees the new thresholds.
func (o *Optimizer) SetConfig(config Config) {
	o.mu.Lock()
	o.config = config
	o.mu.Unlock()
}

// Analyze computes the current health view. It reads the stores but never
// mutates them.
func (o *Optimizer) Analyze() Analysis {
	cfg := o.Config()
	cacheStats := o.cache.TotalStats()
	memory := o.monitor.Memory()
	procs := o.monitor.Processes()

	utilization := float64(memory.Total) / float64(cfg.MemoryBudget)

	a := Analysis{
		CacheEfficiency:    cacheStats.HitRate(),
		TotalRequests:      cacheStats.Hits + cacheStats.Misses,
		MemoryPressure:     pressureTier(utilization),
		MemoryUtilization:  utilization,
		MemoryTotal:        memory.Total,
		MemoryBudget:       cfg.MemoryBudget,
		ProcessUtilization: procs.Utilization,
		Bottlenecks:        o.findBottlenecks(cfg),
	}

	a.Recommendations = o.recommend(a, cfg)
	a.Healthy = len(a.Recommendations) == 0
	return a
}

// Recommendations returns the prioritized recommendation list, a derived
// view over Analyze.
func (o *Optimizer) Recommendations() []Recommendation {
	return o.Analyze().Recommendations
}

// pressureTier maps budget utilization onto a tier. Boundary values belong
// to the lower tier: exactly 0.8 is medium, exactly 0.5 is low.
func pressureTier(utilization float64) Pressure {
	switch {
	case utilization > 0.8:
		return PressureHigh
	case utilization > 0.5:
		return PressureMedium
	default:
		return PressureLow
	}
}

// findBottlenecks lists timing metrics whose tail or average latency
// crosses the configured thresholds.
func (o *Optimizer) findBottlenecks(cfg Config) []string {
	var out []string
	for _, name := range o.metrics.Names(metrics.KindTiming) {
		st := o.metrics.Stats(name, "")
		if st == nil {
			continue
		}
		if st.P95 > cfg.BottleneckP95Ms || st.Mean > cfg.BottleneckMeanMs {
			out = append(out, name)
		}
	}
	return out
}

// recommend evaluates every rule independently and returns the hits sorted
// high to low, stable within a tier.
func (o *Optimizer) recommend(a Analysis, cfg Config) []Recommendation {
	var recs []Recommendation

	if a.CacheEfficiency < cfg.TargetHitRate && a.TotalRequests > cfg.MinRequests {
		recs = append(recs, Recommendation{
			Kind:     RecommendCache,
			Priority: PriorityHigh,
			Description: fmt.Sprintf(
				"cache hit rate is %.1f%% over %d requests; consider longer TTLs or a revised invalidation strategy",
				a.CacheEfficiency*100, a.TotalRequests),
		})
	}

	if a.MemoryPressure == PressureHigh {
		recs = append(recs, Recommendation{
			Kind:     RecommendMemory,
			Priority: PriorityHigh,
			Description: fmt.Sprintf(
				"memory usage %s exceeds 80%% of the %s budget; trigger GC or reduce cache size",
				monitor.FormatBytes(a.MemoryTotal), monitor.FormatBytes(a.MemoryBudget)),
			Action: runtime.GC,
		})
	}

	if len(a.Bottlenecks) > 0 {
		recs = append(recs, Recommendation{
			Kind:     RecommendBottleneck,
			Priority: PriorityMedium,
			Description: fmt.Sprintf(
				"slow operations detected (%s); consider batching requests or caching responses longer",
				strings.Join(a.Bottlenecks, ", ")),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority > recs[j].Priority
	})
	return recs
}
