// Package monitor provides read-only introspection of process, memory, and
// runtime scheduler state. Every call re-reads the underlying counters; the
// package keeps no mutable state of its own.
package monitor

import (
	"runtime"
	"runtime/pprof"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Config configures the resource monitor
type Config struct {
	// GoroutineBudget is the soft goroutine ceiling used when deriving
	// scheduler utilization.
	GoroutineBudget int `yaml:"goroutine_budget" json:"goroutine_budget"`
}

// Monitor reads process and runtime resource figures on demand.
type Monitor struct {
	goroutineBudget int
}

// MemorySnapshot breaks current memory usage down by category. All figures
// are bytes. Total is what the runtime has obtained from the OS; RSS and
// SystemTotal come from the OS and are zero when unavailable.
type MemorySnapshot struct {
	HeapAlloc   uint64 `json:"heap_alloc"`
	HeapSys     uint64 `json:"heap_sys"`
	StackSys    uint64 `json:"stack_sys"`
	GCSys       uint64 `json:"gc_sys"`
	RuntimeSys  uint64 `json:"runtime_sys"`
	Total       uint64 `json:"total"`
	RSS         uint64 `json:"rss"`
	SystemTotal uint64 `json:"system_total"`
}

// ProcessStats describes scheduler and concurrency state.
type ProcessStats struct {
	Goroutines  int     `json:"goroutines"`
	Threads     int     `json:"threads"`
	NumCPU      int     `json:"num_cpu"`
	GOMAXPROCS  int     `json:"gomaxprocs"`
	Utilization float64 `json:"utilization"`
}

// ProcessHealth reports on a named long-lived process. A missing or dead
// process yields Alive=false rather than an error.
type ProcessHealth struct {
	PID     int32  `json:"pid"`
	Alive   bool   `json:"alive"`
	RSS     uint64 `json:"rss"`
	Threads int32  `json:"threads"`
}

// New creates a resource monitor.
func New(config Config) *Monitor {
	if config.GoroutineBudget <= 0 {
		config.GoroutineBudget = 10000
	}
	return &Monitor{goroutineBudget: config.GoroutineBudget}
}

// Memory returns a fresh memory snapshot.
func (m *Monitor) Memory() MemorySnapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	snap := MemorySnapshot{
		HeapAlloc:  ms.HeapAlloc,
		HeapSys:    ms.HeapSys,
		StackSys:   ms.StackSys,
		GCSys:      ms.GCSys,
		RuntimeSys: ms.MSpanSys + ms.MCacheSys + ms.OtherSys,
		Total:      ms.Sys,
	}

	if p, err := process.NewProcess(int32(currentPID())); err == nil {
		if info, err := p.MemoryInfo(); err == nil && info != nil {
			snap.RSS = info.RSS
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		snap.SystemTotal = vm.Total
	}

	return snap
}

// Processes returns current scheduler figures. Utilization is goroutine
// count over the configured goroutine budget.
func (m *Monitor) Processes() ProcessStats {
	goroutines := runtime.NumGoroutine()
	threads := 0
	if tc := pprof.Lookup("threadcreate"); tc != nil {
		threads = tc.Count()
	}

	return ProcessStats{
		Goroutines:  goroutines,
		Threads:     threads,
		NumCPU:      runtime.NumCPU(),
		GOMAXPROCS:  runtime.GOMAXPROCS(0),
		Utilization: float64(goroutines) / float64(m.goroutineBudget),
	}
}

// CheckHealth looks up a process by pid. Lookup failures report an absent,
// unhealthy process instead of returning an error.
func (m *Monitor) CheckHealth(pid int32) ProcessHealth {
	health := ProcessHealth{PID: pid}

	p, err := process.NewProcess(pid)
	if err != nil {
		return health
	}
	running, err := p.IsRunning()
	if err != nil || !running {
		return health
	}

	health.Alive = true
	if info, err := p.MemoryInfo(); err == nil && info != nil {
		health.RSS = info.RSS
	}
	if threads, err := p.NumThreads(); err == nil {
		health.Threads = threads
	}
	return health
}
