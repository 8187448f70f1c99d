// Package draftcache keeps the uncommitted cart of each event in memory for
// the life of the process.
package draftcache

import (
	"strings"
	"sync"

	"github.com/dmitrijs2005/marketsales/internal/client/models"
)

// Cache maps event ids to drafts. Values are copied on the way in and out,
// so callers never share a draft through the cache. Concurrent writers of
// the same key are not ordered: the last Save wins.
type Cache struct {
	mu     sync.RWMutex
	drafts map[string]models.Draft
}

func New() *Cache {
	return &Cache{drafts: make(map[string]models.Draft)}
}

// Save stores a copy of d under key. A blank key is ignored.
func (c *Cache) Save(key string, d models.Draft) {
	if strings.TrimSpace(key) == "" {
		return
	}
	d = d.Clone()

	c.mu.Lock()
	c.drafts[key] = d
	c.mu.Unlock()
}

func (c *Cache) Load(key string) (models.Draft, bool) {
	c.mu.RLock()
	d, ok := c.drafts[key]
	c.mu.RUnlock()
	if !ok {
		return models.Draft{}, false
	}
	return d.Clone(), true
}

func (c *Cache) Clear(key string) {
	c.mu.Lock()
	delete(c.drafts, key)
	c.mu.Unlock()
}

// Len returns the number of cached drafts.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.drafts)
}
