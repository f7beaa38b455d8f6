package cache

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kfiore/perfpulse/logging"
)

const (
	// NoExpiration stores an entry that never expires.
	NoExpiration time.Duration = -1
	// DefaultExpiration stores an entry with the store's configured default TTL.
	DefaultExpiration time.Duration = 0
)

// Config configures the cache store behavior
type Config struct {
	DefaultTTL      time.Duration `yaml:"default_ttl" json:"default_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
}

// Store is a namespace-scoped key/value cache with per-entry TTL.
//
// Entries expire lazily on Get and are additionally swept by a background
// janitor, so unread expired keys do not accumulate indefinitely. Hit and
// miss counters are tracked per namespace; aggregate figures are derived by
// summing namespaces on demand.
type Store struct {
	mu         sync.RWMutex
	namespaces map[string]*namespace
	config     Config

	stopCh   chan struct{}
	stopOnce sync.Once
}

type namespace struct {
	mu      sync.Mutex
	entries map[string]entry
	hits    int64
	misses  int64
}

type entry struct {
	value      interface{}
	expiration int64 // UnixNano; 0 means the entry never expires
}

func (e entry) expired(now int64) bool {
	return e.expiration > 0 && now > e.expiration
}

// Stats provides hit/miss accounting and size figures for one namespace
// or for the whole store.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Size        int   `json:"size"`
	MemoryBytes int64 `json:"memory_bytes"`
}

// HitRate returns the hit ratio, or 0 when nothing was requested yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// NewStore creates a cache store and starts its background janitor when
// CleanupInterval is positive.
func NewStore(config Config) *Store {
	if config.DefaultTTL == 0 {
		config.DefaultTTL = 5 * time.Minute
	}

	s := &Store{
		namespaces: make(map[string]*namespace),
		config:     config,
		stopCh:     make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		go s.janitor(config.CleanupInterval)
	}

	return s
}

// Stop terminates the background janitor. Safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Store) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := s.PruneExpired()
			if removed > 0 {
				logging.LogDebugf("cache janitor removed %d expired entries", removed)
			}
		case <-s.stopCh:
			return
		}
	}
}

// ns returns the shard for a namespace, creating it on first use.
func (s *Store) ns(name string) *namespace {
	s.mu.RLock()
	n, ok := s.namespaces[name]
	s.mu.RUnlock()
	if ok {
		return n
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok = s.namespaces[name]; ok {
		return n
	}
	n = &namespace{entries: make(map[string]entry)}
	s.namespaces[name] = n
	return n
}

// Put stores or overwrites the entry for (namespace, key). A ttl of
// NoExpiration keeps the entry forever; DefaultExpiration applies the
// store's configured default TTL. Put always succeeds.
func (s *Store) Put(ns, key string, value interface{}, ttl time.Duration) {
	if ttl == DefaultExpiration {
		ttl = s.config.DefaultTTL
	}

	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}

	n := s.ns(ns)
	n.mu.Lock()
	n.entries[key] = entry{value: value, expiration: exp}
	n.mu.Unlock()
}

// Get returns the live value for (namespace, key). An entry past its TTL is
// deleted and counted as a miss, so expired data is never returned. Every
// call increments exactly one of the namespace's hit or miss counters.
func (s *Store) Get(ns, key string) (interface{}, bool) {
	n := s.ns(ns)
	now := time.Now().UnixNano()

	n.mu.Lock()
	e, ok := n.entries[key]
	if ok && e.expired(now) {
		delete(n.entries, key)
		ok = false
	}
	n.mu.Unlock()

	if !ok {
		atomic.AddInt64(&n.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&n.hits, 1)
	return e.value, true
}

// Fetch returns the cached value for (namespace, key), computing and storing
// it with the given ttl on a miss.
//
// Concurrent misses on the same key may each invoke compute and redundantly
// Put the result; the last write wins. This stampede is accepted behavior,
// not a bug: callers that cannot tolerate duplicate computation should
// serialize externally.
func (s *Store) Fetch(ns, key string, ttl time.Duration, compute func() interface{}) interface{} {
	if v, ok := s.Get(ns, key); ok {
		return v
	}
	v := compute()
	s.Put(ns, key, v, ttl)
	return v
}

// Delete removes the entry if present; absent keys are a no-op.
func (s *Store) Delete(ns, key string) {
	n := s.ns(ns)
	n.mu.Lock()
	delete(n.entries, key)
	n.mu.Unlock()
}

// Clear removes all entries for one namespace and resets its counters.
func (s *Store) Clear(ns string) {
	s.mu.RLock()
	n, ok := s.namespaces[ns]
	s.mu.RUnlock()
	if !ok {
		return
	}

	n.mu.Lock()
	n.entries = make(map[string]entry)
	n.mu.Unlock()
	atomic.StoreInt64(&n.hits, 0)
	atomic.StoreInt64(&n.misses, 0)
}

// ClearAll removes every entry in every namespace and resets all counters.
func (s *Store) ClearAll() {
	s.mu.RLock()
	names := make([]string, 0, len(s.namespaces))
	for name := range s.namespaces {
		names = append(names, name)
	}
	s.mu.RUnlock()

	for _, name := range names {
		s.Clear(name)
	}
}

// PruneExpired scans every namespace and removes entries past their TTL,
// returning the number removed. Live entries are never touched.
func (s *Store) PruneExpired() int {
	s.mu.RLock()
	shards := make([]*namespace, 0, len(s.namespaces))
	for _, n := range s.namespaces {
		shards = append(shards, n)
	}
	s.mu.RUnlock()

	now := time.Now().UnixNano()
	removed := 0
	for _, n := range shards {
		n.mu.Lock()
		for key, e := range n.entries {
			if e.expired(now) {
				delete(n.entries, key)
				removed++
			}
		}
		n.mu.Unlock()
	}
	return removed
}

// Stats returns accounting for one namespace. Size is the stored entry
// count at query time (expired-but-unswept entries included until the next
// Get or prune touches them); the memory figure is a per-entry heuristic,
// not an exact measurement.
func (s *Store) Stats(ns string) Stats {
	s.mu.RLock()
	n, ok := s.namespaces[ns]
	s.mu.RUnlock()
	if !ok {
		return Stats{}
	}
	return n.stats()
}

// TotalStats returns accounting summed across all namespaces.
func (s *Store) TotalStats() Stats {
	s.mu.RLock()
	shards := make([]*namespace, 0, len(s.namespaces))
	for _, n := range s.namespaces {
		shards = append(shards, n)
	}
	s.mu.RUnlock()

	var total Stats
	for _, n := range shards {
		st := n.stats()
		total.Hits += st.Hits
		total.Misses += st.Misses
		total.Size += st.Size
		total.MemoryBytes += st.MemoryBytes
	}
	return total
}

// Size returns the total stored entry count across all namespaces.
func (s *Store) Size() int {
	return s.TotalStats().Size
}

// Namespaces returns the sorted list of known namespaces.
func (s *Store) Namespaces() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.namespaces))
	for name := range s.namespaces {
		names = append(names, name)
	}
	s.mu.RUnlock()

	sort.Strings(names)
	return names
}

func (n *namespace) stats() Stats {
	n.mu.Lock()
	size := len(n.entries)
	var mem int64
	for key, e := range n.entries {
		mem += estimateSize(key, e.value)
	}
	n.mu.Unlock()

	return Stats{
		Hits:        atomic.LoadInt64(&n.hits),
		Misses:      atomic.LoadInt64(&n.misses),
		Size:        size,
		MemoryBytes: mem,
	}
}

// entryOverhead approximates map bucket, header, and bookkeeping cost per entry.
const entryOverhead = 120

func estimateSize(key string, value interface{}) int64 {
	size := int64(entryOverhead + len(key))
	switch v := value.(type) {
	case string:
		size += int64(len(v))
	case []byte:
		size += int64(len(v))
	default:
		size += 64
	}
	return size
}
