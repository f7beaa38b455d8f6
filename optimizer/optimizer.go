package optimizer

import (
	"runtime"

	"github.com/kfiore/perfpulse/logging"
)

// Remediation tags returned by Optimize.
const (
	ActionCacheCleanup = "cache_cleanup"
	ActionMemoryGC     = "memory_gc"
)

// Optimize applies the bounded set of safe automatic remediations and
// returns the tags of the actions taken. It prunes expired cache entries
// when the store has grown past the prune threshold and requests a GC
// under high memory pressure. It never removes live cache entries, changes
// TTLs, or alters metrics, so repeated calls are idempotent on a quiet
// system.
func (o *Optimizer) Optimize() []string {
	applied := []string{}

	if o.cache.Size() > o.Config().PruneThreshold {
		removed := o.cache.PruneExpired()
		logging.LogInfof("optimize: pruned %d expired cache entries", removed)
		applied = append(applied, ActionCacheCleanup)
	}

	a := o.Analyze()
	if a.MemoryPressure == PressureHigh {
		runtime.GC()
		logging.LogInfof("optimize: requested garbage collection (memory %.0f%% of budget)",
			a.MemoryUtilization*100)
		applied = append(applied, ActionMemoryGC)
	}

	return applied
}
