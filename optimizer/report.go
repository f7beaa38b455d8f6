package optimizer

import (
	"fmt"
	"strings"

	"github.com/kfiore/perfpulse/monitor"
)

const reportRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// FormatReport renders a fixed-width textual dashboard over the current
// analysis.
func (o *Optimizer) FormatReport() string {
	a := o.Analyze()
	cacheStats := o.cache.TotalStats()
	memory := o.monitor.Memory()
	procs := o.monitor.Processes()

	var b strings.Builder
	b.WriteString("Performance Report\n")
	b.WriteString(reportRule + "\n")

	fmt.Fprintf(&b, "Cache:     %d entries, %.1f%% hit rate (%d hits, %d misses)\n",
		cacheStats.Size, a.CacheEfficiency*100, cacheStats.Hits, cacheStats.Misses)
	fmt.Fprintf(&b, "           ~%s estimated footprint\n",
		monitor.FormatBytes(uint64(cacheStats.MemoryBytes)))

	fmt.Fprintf(&b, "Memory:    %s / %s budget (%.1f%%, pressure: %s)\n",
		monitor.FormatBytes(a.MemoryTotal), monitor.FormatBytes(a.MemoryBudget),
		a.MemoryUtilization*100, a.MemoryPressure)
	fmt.Fprintf(&b, "           heap %s, stack %s, gc %s\n",
		monitor.FormatBytes(memory.HeapAlloc), monitor.FormatBytes(memory.StackSys),
		monitor.FormatBytes(memory.GCSys))

	fmt.Fprintf(&b, "Runtime:   %d goroutines (%.1f%% of budget), %d threads, GOMAXPROCS %d\n",
		procs.Goroutines, a.ProcessUtilization*100, procs.Threads, procs.GOMAXPROCS)

	b.WriteString(reportRule + "\n")

	if len(a.Bottlenecks) > 0 {
		fmt.Fprintf(&b, "Bottlenecks: %s\n", strings.Join(a.Bottlenecks, ", "))
	}

	if a.Healthy {
		b.WriteString("Status: healthy, no recommendations\n")
	} else {
		b.WriteString("Recommendations:\n")
		for _, rec := range a.Recommendations {
			fmt.Fprintf(&b, "  [%-6s] %s: %s\n", rec.Priority, rec.Kind, rec.Description)
		}
	}
	b.WriteString(reportRule)

	return b.String()
}
