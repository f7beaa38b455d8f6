package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	// No janitor so tests control expiration timing themselves
	return NewStore(Config{DefaultTTL: time.Minute})
}

func TestStore_PutGet(t *testing.T) {
	store := newTestStore()
	defer store.Stop()

	store.Put("spotify", "track:1", "X", time.Minute)

	v, ok := store.Get("spotify", "track:1")
	require.True(t, ok)
	assert.Equal(t, "X", v)

	stats := store.Stats("spotify")
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
}

func TestStore_GetMiss(t *testing.T) {
	store := newTestStore()
	defer store.Stop()

	v, ok := store.Get("spotify", "absent")
	assert.False(t, ok)
	assert.Nil(t, v)

	stats := store.Stats("spotify")
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestStore_TTLExpiration(t *testing.T) {
	store := newTestStore()
	defer store.Stop()

	store.Put("spotify", "track:1", "X", 100*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	v, ok := store.Get("spotify", "track:1")
	require.True(t, ok)
	assert.Equal(t, "X", v)
	assert.Equal(t, int64(1), store.Stats("spotify").Hits)

	time.Sleep(100 * time.Millisecond)
	v, ok = store.Get("spotify", "track:1")
	assert.False(t, ok)
	assert.Nil(t, v)

	stats := store.Stats("spotify")
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 0, stats.Size, "expired entry must be removed on read")
}

func TestStore_NoExpiration(t *testing.T) {
	store := NewStore(Config{DefaultTTL: time.Millisecond})
	defer store.Stop()

	store.Put("config", "flag", true, NoExpiration)
	time.Sleep(5 * time.Millisecond)

	_, ok := store.Get("config", "flag")
	assert.True(t, ok)
	assert.Zero(t, store.PruneExpired())
}

func TestStore_DefaultExpiration(t *testing.T) {
	store := NewStore(Config{DefaultTTL: 50 * time.Millisecond})
	defer store.Stop()

	store.Put("api", "resp", "data", DefaultExpiration)
	time.Sleep(80 * time.Millisecond)

	_, ok := store.Get("api", "resp")
	assert.False(t, ok)
}

func TestStore_PutOverwrites(t *testing.T) {
	store := newTestStore()
	defer store.Stop()

	store.Put("ns", "k", 1, time.Minute)
	store.Put("ns", "k", 2, time.Minute)

	v, ok := store.Get("ns", "k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, store.Stats("ns").Size)
}

func TestStore_Fetch(t *testing.T) {
	store := newTestStore()
	defer store.Stop()

	calls := 0
	compute := func() interface{} {
		calls++
		return "computed"
	}

	v := store.Fetch("api", "key", time.Minute, compute)
	assert.Equal(t, "computed", v)
	assert.Equal(t, 1, calls)

	v = store.Fetch("api", "key", time.Minute, compute)
	assert.Equal(t, "computed", v)
	assert.Equal(t, 1, calls, "second fetch must hit the cache")

	stats := store.Stats("api")
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore()
	defer store.Stop()

	store.Put("ns", "k", "v", time.Minute)
	store.Delete("ns", "k")
	_, ok := store.Get("ns", "k")
	assert.False(t, ok)

	// Deleting an absent key is a no-op
	store.Delete("ns", "nope")
}

func TestStore_ClearResetsCounters(t *testing.T) {
	store := newTestStore()
	defer store.Stop()

	store.Put("ns", "k", "v", time.Minute)
	store.Get("ns", "k")
	store.Get("ns", "absent")

	store.Clear("ns")

	stats := store.Stats("ns")
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
	assert.Equal(t, 0, stats.Size)

	// Idempotent
	store.Clear("ns")
	assert.Equal(t, Stats{}, store.Stats("ns"))
}

func TestStore_ClearAll(t *testing.T) {
	store := newTestStore()
	defer store.Stop()

	store.Put("a", "k", "v", time.Minute)
	store.Put("b", "k", "v", time.Minute)
	store.Get("a", "k")

	store.ClearAll()

	total := store.TotalStats()
	assert.Equal(t, Stats{}, total)
}

func TestStore_PruneExpired(t *testing.T) {
	store := newTestStore()
	defer store.Stop()

	for i := 0; i < 10; i++ {
		store.Put("live", fmt.Sprintf("k%d", i), i, time.Minute)
	}
	for i := 0; i < 4; i++ {
		store.Put("stale", fmt.Sprintf("k%d", i), i, time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)

	removed := store.PruneExpired()
	assert.Equal(t, 4, removed)
	assert.Equal(t, 10, store.Size())

	// Nothing left to prune
	assert.Zero(t, store.PruneExpired())
}

func TestStore_Janitor(t *testing.T) {
	store := NewStore(Config{DefaultTTL: time.Minute, CleanupInterval: 20 * time.Millisecond})
	defer store.Stop()

	store.Put("ns", "k", "v", 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return store.Stats("ns").Size == 0
	}, time.Second, 10*time.Millisecond, "janitor should sweep the expired entry")
}

func TestStore_HitMissAccounting(t *testing.T) {
	store := newTestStore()
	defer store.Stop()

	store.Put("ns", "present", "v", time.Minute)

	const gets = 50
	for i := 0; i < gets; i++ {
		if i%2 == 0 {
			store.Get("ns", "present")
		} else {
			store.Get("ns", "absent")
		}
	}

	stats := store.Stats("ns")
	assert.Equal(t, int64(gets), stats.Hits+stats.Misses)

	total := store.TotalStats()
	assert.Equal(t, stats.Hits, total.Hits)
	assert.Equal(t, stats.Misses, total.Misses)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(Config{DefaultTTL: time.Minute, CleanupInterval: 5 * time.Millisecond})
	defer store.Stop()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%20)
				switch i % 4 {
				case 0:
					store.Put("ns", key, i, time.Millisecond)
				case 1:
					store.Get("ns", key)
				case 2:
					store.Delete("ns", key)
				default:
					store.PruneExpired()
				}
			}
		}(w)
	}
	wg.Wait()

	stats := store.Stats("ns")
	assert.GreaterOrEqual(t, stats.Hits+stats.Misses, int64(1))
}

func TestStore_StatsHitRate(t *testing.T) {
	assert.Zero(t, Stats{}.HitRate())
	assert.InDelta(t, 0.45, Stats{Hits: 45, Misses: 55}.HitRate(), 1e-9)
}

func TestStore_MemoryEstimate(t *testing.T) {
	store := newTestStore()
	defer store.Stop()

	store.Put("ns", "k", "some string value", time.Minute)
	assert.Greater(t, store.Stats("ns").MemoryBytes, int64(0))
}

func TestStore_Namespaces(t *testing.T) {
	store := newTestStore()
	defer store.Stop()

	store.Put("b", "k", 1, time.Minute)
	store.Put("a", "k", 1, time.Minute)

	assert.Equal(t, []string{"a", "b"}, store.Namespaces())
}
