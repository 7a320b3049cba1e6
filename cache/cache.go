// Package cache provides memoization for computed reflectivity curves.
// Population-based fitting revisits parameter vectors (elitist selection
// keeps survivors across generations), so caching curves keyed by the
// exact vector and q grid avoids recomputing identical models.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync"
)

// CurveCache caches reflectivity curves keyed by a hash of the parameter
// vector and evaluation grid.
type CurveCache struct {
	mu        sync.RWMutex
	cache     map[string][]float64
	maxSize   int
	hits      int64
	misses    int64
	evictions int64
}

// New creates a cache with the specified maximum entry count.
// Set maxSize to 0 for an unbounded cache.
func New(maxSize int) *CurveCache {
	return &CurveCache{
		cache:   make(map[string][]float64),
		maxSize: maxSize,
	}
}

// Key computes a deterministic hash of a parameter vector and q grid.
func Key(params, q []float64) string {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, v := range params {
		binary.BigEndian.PutUint64(buf, math.Float64bits(v))
		h.Write(buf)
	}
	h.Write([]byte{0}) // separator between vector and grid
	for _, v := range q {
		binary.BigEndian.PutUint64(buf, math.Float64bits(v))
		h.Write(buf)
	}
	return string(h.Sum(nil))
}

// Get retrieves a cached curve, or nil when absent.
func (c *CurveCache) Get(key string) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if curve, ok := c.cache[key]; ok {
		c.hits++
		return curve
	}
	c.misses++
	return nil
}

// Put stores a curve. When full, an arbitrary entry is evicted first.
func (c *CurveCache) Put(key string, curve []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 && len(c.cache) >= c.maxSize {
		for k := range c.cache {
			delete(c.cache, k)
			c.evictions++
			break
		}
	}
	c.cache[key] = curve
}

// GetOrCompute retrieves from the cache or computes, stores and returns
// the curve. Errors from compute are returned without caching.
func (c *CurveCache) GetOrCompute(key string, compute func() ([]float64, error)) ([]float64, error) {
	if curve := c.Get(key); curve != nil {
		return curve, nil
	}
	curve, err := compute()
	if err != nil {
		return nil, err
	}
	c.Put(key, curve)
	return curve, nil
}

// Clear removes all entries.
func (c *CurveCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string][]float64)
}

// Size returns the current number of cached curves.
func (c *CurveCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Stats describes cache effectiveness.
type Stats struct {
	Size      int
	MaxSize   int
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
}

// Stats returns a snapshot of the cache counters.
func (c *CurveCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return Stats{
		Size:      len(c.cache),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   hitRate,
	}
}
