// Package cache memoizes the derived view products of the grid processor,
// keyed by the full (operation, axes, filters, data) tuple. Invalidation is
// coarse: any change to axes, filters or the loaded table clears everything.
// The single active dataset keeps the entry count small, so no eviction
// policy is needed beyond that.
package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ViewCache is a key/value store for derived views. Safe for concurrent
// readers; mutating operations are expected to come from one caller at a
// time, matching the rest of the pipeline.
type ViewCache struct {
	storage map[Key]any
	mutex   sync.RWMutex
	logger  Logger
	enabled bool

	// Performance counters
	hits          int64
	misses        int64
	invalidations int64
}

// New creates an empty, enabled cache.
func New() *ViewCache {
	return &ViewCache{
		storage: make(map[Key]any),
		enabled: true,
	}
}

// NewWithLogger creates an empty, enabled cache that reports hits, misses
// and invalidations through logger.
func NewWithLogger(logger Logger) *ViewCache {
	c := New()
	c.logger = logger
	return c
}

// SetLogger sets the logger for the cache
func (c *ViewCache) SetLogger(logger Logger) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.logger = logger
}

// SetEnabled turns the cache on or off. Disabling clears all entries; while
// disabled, Get always misses and Put stores nothing, so callers see rebuild
// behavior without branching.
func (c *ViewCache) SetEnabled(enabled bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.enabled = enabled
	if !enabled {
		c.storage = make(map[Key]any)
	}
}

// Enabled reports whether the cache is storing entries.
func (c *ViewCache) Enabled() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.enabled
}

// Get retrieves the cached value for key.
func (c *ViewCache) Get(key Key) (any, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if !c.enabled {
		return nil, false
	}

	value, exists := c.storage[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		if c.logger != nil {
			c.logger.Log("debug", fmt.Sprintf("[CACHE_MISS] Op: %s, Axes: (%s, %s, %s)",
				key.Op, key.XColumn, key.YColumn, key.ValueColumn))
		}
		return nil, false
	}

	atomic.AddInt64(&c.hits, 1)
	if c.logger != nil {
		c.logger.Log("debug", fmt.Sprintf("[CACHE_HIT] Op: %s, Axes: (%s, %s, %s)",
			key.Op, key.XColumn, key.YColumn, key.ValueColumn))
	}
	return value, true
}

// Put stores value under key, replacing any prior entry.
func (c *ViewCache) Put(key Key, value any) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.enabled {
		return
	}

	c.storage[key] = value
	if c.logger != nil {
		c.logger.Log("debug", fmt.Sprintf("[CACHE_STORE] Op: %s, Entries: %d",
			key.Op, len(c.storage)))
	}
}

// Invalidate drops every entry. Called from each mutator of the pipeline
// (load, axis change, filter change); reason is only for the log.
func (c *ViewCache) Invalidate(reason string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	dropped := len(c.storage)
	c.storage = make(map[Key]any)
	atomic.AddInt64(&c.invalidations, 1)

	if c.logger != nil {
		c.logger.Log("debug", fmt.Sprintf("[CACHE_INVALIDATE] Reason: %s, Dropped: %d entries",
			reason, dropped))
	}
}

// Len returns the number of cached entries
func (c *ViewCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.storage)
}

// Stats returns a snapshot of the cache counters.
func (c *ViewCache) Stats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := Stats{
		Entries:       len(c.storage),
		Hits:          atomic.LoadInt64(&c.hits),
		Misses:        atomic.LoadInt64(&c.misses),
		Invalidations: atomic.LoadInt64(&c.invalidations),
		Enabled:       c.enabled,
	}
	total := stats.Hits + stats.Misses
	if total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}
