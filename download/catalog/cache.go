package catalog

import (
	"sync"
	"time"
)

// cacheEntry is one cached response with its expiry.
type cacheEntry struct {
	value     any
	expiresAt time.Time
	storedAt  time.Time
}

// TTLCache is a small thread-safe response cache. It keeps repeated reads of
// the same page within one run from hitting the network again; it never
// persists across processes, so every run still sees fresh catalog data.
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	maxSize int
	ttl     time.Duration
}

// NewTTLCache creates a cache holding at most maxSize entries for ttlSeconds.
func NewTTLCache(maxSize, ttlSeconds int) *TTLCache {
	return &TTLCache{
		entries: make(map[string]cacheEntry),
		maxSize: maxSize,
		ttl:     time.Duration(ttlSeconds) * time.Second,
	}
}

// Get returns the cached value for key, or nil when absent or expired.
func (c *TTLCache) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil
	}
	return entry.value
}

// Set stores value under key. When the cache is full the oldest entry makes
// room for the new one.
func (c *TTLCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	now := time.Now()
	c.entries[key] = cacheEntry{value: value, expiresAt: now.Add(c.ttl), storedAt: now}
}

// Len returns the current number of entries.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func (c *TTLCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.storedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
