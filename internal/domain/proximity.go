package domain

import (
	"slices"
	"sync"
)

// Nearby is a location found within the proximity radius of an origin.
type Nearby struct {
	ID    string
	Miles float64
}

// ProximityCache holds, per origin, the nearby locations already computed.
//
// It is built lazily during a search and may be carried forward to later
// searches over the same location set. It is safe for concurrent use.
type ProximityCache struct {
	mu      sync.RWMutex
	entries map[string][]Nearby
}

func NewProximityCache() *ProximityCache {
	return &ProximityCache{entries: make(map[string][]Nearby)}
}

// Get returns the cached neighbors of an origin.
func (c *ProximityCache) Get(origin string) ([]Nearby, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n, ok := c.entries[origin]
	return n, ok
}

// Put stores the neighbors of an origin. The slice must not be modified afterwards.
func (c *ProximityCache) Put(origin string, nearby []Nearby) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[origin] = nearby
}

// Merge adds entries without overwriting origins already cached.
func (c *ProximityCache) Merge(entries map[string][]Nearby) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for origin, n := range entries {
		if _, ok := c.entries[origin]; !ok {
			c.entries[origin] = n
		}
	}
}

// Snapshot returns a copy of all entries.
func (c *ProximityCache) Snapshot() map[string][]Nearby {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string][]Nearby, len(c.entries))
	for origin, n := range c.entries {
		out[origin] = slices.Clone(n)
	}
	return out
}

func (c *ProximityCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
