package session

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// BuildFunc builds the handler for a cache miss.
type BuildFunc func() (Handler, error)

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries int
	Hits    uint64
	Misses  uint64
	Builds  uint64
}

type entry struct {
	fingerprint string
	handler     Handler
}

// Cache maps shop ids to built handlers for the life of the process.
// Entries are keyed by shop id and tagged with a fingerprint of the token
// ciphertext they were built from; a lookup with a different ciphertext
// rebuilds. Concurrent misses for the same shop and ciphertext build once.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
	builds atomic.Uint64
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// GetOrCreate returns the cached handler for shopID if it was built from
// ciphertext, and otherwise builds, stores and returns a new one. Build
// errors are returned to every waiting caller and are not cached.
func (c *Cache) GetOrCreate(shopID, ciphertext string, build BuildFunc) (Handler, error) {
	fp := fingerprint(ciphertext)
	if h, ok := c.lookup(shopID, fp); ok {
		c.hits.Add(1)
		return h, nil
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(shopID+"\x00"+fp, func() (any, error) {
		if h, ok := c.lookup(shopID, fp); ok {
			return h, nil
		}
		h, err := build()
		if err != nil {
			return nil, err
		}
		c.builds.Add(1)

		c.mu.Lock()
		c.entries[shopID] = entry{fingerprint: fp, handler: h}
		c.mu.Unlock()
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Handler), nil
}

// Invalidate drops the entry for shopID. The next update rebuilds from the
// store's current ciphertext.
func (c *Cache) Invalidate(shopID string) {
	c.mu.Lock()
	delete(c.entries, shopID)
	c.mu.Unlock()
}

// Len returns the number of cached shops.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries: c.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Builds:  c.builds.Load(),
	}
}

func (c *Cache) lookup(shopID, fp string) (Handler, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[shopID]
	if !ok || e.fingerprint != fp {
		return nil, false
	}
	return e.handler, true
}

func fingerprint(ciphertext string) string {
	sum := sha256.Sum256([]byte(ciphertext))
	return hex.EncodeToString(sum[:16])
}
