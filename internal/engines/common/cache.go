package common

import (
	"sync"

	"github.com/omegabonobo/greedy-room-scheduler/internal/optimizer"
)

// DefaultResultCacheSize bounds the number of scheduling results kept for lookup.
const DefaultResultCacheSize = 128

// ResultCache keeps the most recent scheduling results by run ID.
// The oldest entry is evicted once the cache is full.
type ResultCache struct {
	mu    sync.RWMutex
	items map[string]*optimizer.Result
	order []string
	limit int
}

// NewResultCache creates a cache holding at most limit results.
func NewResultCache(limit int) *ResultCache {
	if limit <= 0 {
		limit = DefaultResultCacheSize
	}
	return &ResultCache{
		items: make(map[string]*optimizer.Result),
		limit: limit,
	}
}

// Set stores a result under its run ID.
func (c *ResultCache) Set(result *optimizer.Result) {
	if result == nil || result.Stats.RunID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	id := result.Stats.RunID
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = result
	for len(c.order) > c.limit {
		delete(c.items, c.order[0])
		c.order = c.order[1:]
	}
}

// Get returns the result of a run.
func (c *ResultCache) Get(runID string) (*optimizer.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.items[runID]
	return r, ok
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
