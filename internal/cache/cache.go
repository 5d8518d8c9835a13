// Package cache holds embedding vectors keyed by text hash so that ledger
// entries are embedded at most once per run, however many candidates are
// checked against them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type item struct {
	vector    []float32
	expiresAt time.Time
}

type VectorCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]item
}

func New(ttl time.Duration) *VectorCache {
	return &VectorCache{
		ttl:   ttl,
		items: make(map[string]item),
	}
}

func (c *VectorCache) Set(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		vector:    vector,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *VectorCache) Get(key string) ([]float32, bool) {
	c.mu.RLock()
	it, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if time.Now().After(it.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return it.vector, true
}

// Key derives the cache key for a text.
func Key(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
