package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"docs-portal/metrics"
)

// Closer is anything that holds resources until it is evicted.
type Closer interface {
	Close()
}

// BrowserCache keeps per-browser state keyed by browser ID with an idle TTL
// and a size bound. Evicted values are closed.
type BrowserCache[V Closer] struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, V]
}

// NewBrowserCache creates a cache holding at most size entries, each
// dropped after ttl without access.
func NewBrowserCache[V Closer](size int, ttl time.Duration) *BrowserCache[V] {
	onEvict := func(_ string, v V) {
		v.Close()
		metrics.BrowserSessions.Dec()
	}
	return &BrowserCache[V]{
		lru: expirable.NewLRU[string, V](size, onEvict, ttl),
	}
}

// Get returns the value for id and restarts its TTL.
func (c *BrowserCache[V]) Get(id string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lru.Get(id)
	if ok {
		c.lru.Add(id, v)
	}
	return v, ok
}

// GetOrCreate returns the value for id, creating and storing one with
// create when none is cached.
func (c *BrowserCache[V]) GetOrCreate(id string, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.lru.Get(id); ok {
		c.lru.Add(id, v)
		return v
	}
	v := create()
	c.lru.Add(id, v)
	metrics.BrowserSessions.Inc()
	return v
}

// Remove drops id, closing its value.
func (c *BrowserCache[V]) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(id)
}

// Len returns the number of cached entries, expired ones included until
// they are swept.
func (c *BrowserCache[V]) Len() int {
	return c.lru.Len()
}

// Purge closes and drops every entry.
func (c *BrowserCache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
