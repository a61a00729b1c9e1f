package cache

import (
	"sort"
	"sync"

	"stonkboard/internal/provider"
)

// Stock is what has been fetched for one pinned symbol-key. A nil field has
// not been fetched; an Earnings with no reports was fetched and is empty.
type Stock struct {
	Quote    *provider.Quote            `json:"quote,omitempty"`
	Earnings *provider.EarningsResponse `json:"earnings,omitempty"`
}

// Cache holds fetched stocks for the life of the process, keyed by
// symbol-key. Entries never expire and are never evicted: a key present here
// must not be fetched again, which keeps callers inside the provider's quota.
type Cache struct {
	mu    sync.RWMutex
	items map[string]Stock
}

func New() *Cache {
	return &Cache{items: make(map[string]Stock)}
}

func (c *Cache) Get(key string) (Stock, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.items[key]
	return s, ok
}

// Put stores s under key, replacing whatever was there.
func (c *Cache) Put(key string, s Stock) {
	c.mu.Lock()
	if c.items == nil {
		c.items = make(map[string]Stock)
	}
	c.items[key] = s
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns the cached keys in lexical order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	out := make([]string, 0, len(c.items))
	for k := range c.items {
		out = append(out, k)
	}
	c.mu.RUnlock()
	sort.Strings(out)
	return out
}
