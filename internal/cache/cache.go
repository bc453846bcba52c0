// Accessboard - Site Access Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/accessboard

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/accessboard/internal/metrics"
)

const sweepEvery = 5 * time.Minute

type item struct {
	value   interface{}
	expires time.Time
}

func (it item) expired(now time.Time) bool { return now.After(it.expires) }

// Stats is a point-in-time view of a cache's counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Cache is an in-memory map with per-entry expiry, safe for concurrent use.
// Counters are mirrored to the accessboard_cache_* collectors under the
// cache's name.
type Cache struct {
	name string
	ttl  time.Duration
	now  func() time.Time

	mu        sync.RWMutex
	items     map[string]item
	lastSweep time.Time

	hits, misses, evictions atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
}

// New returns a cache whose entries live for ttl. Expired entries are swept
// in the background until Close.
//
//	c := cache.New("dashboard", 5*time.Minute)
//	defer c.Close()
func New(name string, ttl time.Duration) *Cache {
	return newCache(name, ttl, time.Now)
}

func newCache(name string, ttl time.Duration, now func() time.Time) *Cache {
	c := &Cache{
		name:  name,
		ttl:   ttl,
		now:   now,
		items: make(map[string]item),
		done:  make(chan struct{}),
	}
	c.lastSweep = now()
	go c.sweepLoop()
	return c
}

// Get returns the value stored under key. An expired entry is dropped and
// counts as a miss.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	switch {
	case !ok:
	case it.expired(c.now()):
		c.mu.Lock()
		// Another goroutine may have refreshed the key meanwhile.
		if cur, still := c.items[key]; still && cur.expired(c.now()) {
			delete(c.items, key)
			c.evicted(1)
		}
		c.publishSize(len(c.items))
		c.mu.Unlock()
	default:
		c.hits.Add(1)
		metrics.RecordCacheHit(c.name)
		return it.value, true
	}

	c.misses.Add(1)
	metrics.RecordCacheMiss(c.name)
	return nil, false
}

// Set stores value under key for the cache's TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key for ttl.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = item{value: value, expires: c.now().Add(ttl)}
	c.publishSize(len(c.items))
	c.mu.Unlock()
}

// Delete drops key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	if _, ok := c.items[key]; ok {
		delete(c.items, key)
		c.evicted(1)
	}
	c.publishSize(len(c.items))
	c.mu.Unlock()
}

// Clear drops every entry. The dashboard calls it after each committed import.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := len(c.items)
	c.items = make(map[string]item)
	c.evicted(n)
	c.publishSize(0)
	c.mu.Unlock()
}

// GetStats returns the current counters.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	keys, last := len(c.items), c.lastSweep
	c.mu.RUnlock()
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		TotalKeys:   int64(keys),
		LastCleanup: last,
	}
}

// HitRate is hits over lookups as a percentage, 0 before the first lookup.
func (c *Cache) HitRate() float64 {
	hits, misses := c.hits.Load(), c.misses.Load()
	if hits+misses == 0 {
		return 0
	}
	return 100 * float64(hits) / float64(hits+misses)
}

// Close stops the background sweep. The cache remains usable.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Cache) sweepLoop() {
	t := time.NewTicker(sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			c.cleanup()
		}
	}
}

// cleanup drops every expired entry.
func (c *Cache) cleanup() {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, it := range c.items {
		if it.expired(now) {
			delete(c.items, key)
			n++
		}
	}
	c.lastSweep = now
	c.evicted(n)
	c.publishSize(len(c.items))
}

func (c *Cache) evicted(n int) {
	if n == 0 {
		return
	}
	c.evictions.Add(int64(n))
	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
}

func (c *Cache) publishSize(n int) {
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(n))
}

// GenerateKey derives a fixed-length key from a method name and its
// parameters, which must marshal to JSON deterministically.
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	sum := sha256.Sum256(data)
	return method + ":" + hex.EncodeToString(sum[:16])
}
