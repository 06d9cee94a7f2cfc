package traffic

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SorayutChroenrit/Thailand-Accident-Risk-Prediction-sub001/internal/geo"
)

// ConditionsCache is a concurrent-safe LRU cache for per-cell traffic
// conditions with TTL expiration. Locations are bucketed into ~1 km cells
// so nearby queries share a reading.
type ConditionsCache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
	hits       atomic.Int64
	misses     atomic.Int64
}

type cacheEntry struct {
	conditions Conditions
	createdAt  time.Time
}

// CacheStats contains cache performance counters.
type CacheStats struct {
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// NewConditionsCache creates a cache with the given capacity and TTL.
func NewConditionsCache(maxEntries int, ttl time.Duration) *ConditionsCache {
	return &ConditionsCache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// cellKey buckets a point into a 0.01-degree cell (~1.1 km at the equator).
func cellKey(p geo.Point) string {
	return fmt.Sprintf("%.2f/%.2f", p.Lat, p.Lon)
}

// Get retrieves cached conditions for the cell containing p.
// The second return is false on miss or expiration.
func (c *ConditionsCache) Get(p geo.Point) (Conditions, bool) {
	key := cellKey(p)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return Conditions{}, false
	}

	if time.Since(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.misses.Add(1)
		return Conditions{}, false
	}

	// Move to back (most recently used).
	c.removeFromOrder(key)
	c.order = append(c.order, key)
	c.hits.Add(1)
	return entry.conditions, true
}

// Put stores conditions for the cell containing p, evicting the oldest
// entry if at capacity.
func (c *ConditionsCache) Put(p geo.Point, cond Conditions) {
	key := cellKey(p)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = &cacheEntry{conditions: cond, createdAt: time.Now()}
		c.removeFromOrder(key)
		c.order = append(c.order, key)
		return
	}

	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &cacheEntry{conditions: cond, createdAt: time.Now()}
	c.order = append(c.order, key)
}

// Stats returns cache performance counters.
func (c *ConditionsCache) Stats() CacheStats {
	c.mu.Lock()
	entries := len(c.entries)
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{Entries: entries, Hits: hits, Misses: misses, HitRate: hitRate}
}

func (c *ConditionsCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CachedSource wraps a Source with a ConditionsCache. Index readings are
// not cached here; the Refresher owns the index snapshot.
type CachedSource struct {
	src   Source
	cache *ConditionsCache
}

// NewCachedSource wraps src with the given cache.
func NewCachedSource(src Source, cache *ConditionsCache) *CachedSource {
	return &CachedSource{src: src, cache: cache}
}

// Conditions returns cached conditions for the cell containing at, falling
// back to the underlying source on miss.
func (c *CachedSource) Conditions(ctx context.Context, at geo.Point, t time.Time) (Conditions, error) {
	if cond, ok := c.cache.Get(at); ok {
		return cond, nil
	}
	cond, err := c.src.Conditions(ctx, at, t)
	if err != nil {
		return Conditions{}, err
	}
	c.cache.Put(at, cond)
	return cond, nil
}

// Index delegates to the underlying source.
func (c *CachedSource) Index(ctx context.Context, t time.Time) (IndexReading, error) {
	return c.src.Index(ctx, t)
}
