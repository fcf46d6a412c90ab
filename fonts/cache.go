package fonts

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// FetchTimeout bounds fetches made without a caller-supplied deadline.
const FetchTimeout = 2 * time.Second

// Cache holds font bytes keyed by family for the life of the process.
// The first Get for a family fetches and stores; later calls read the stored
// bytes. Failed fetches are not stored. Fetches for different families run
// independently; concurrent Gets of one family share a single fetch.
type Cache struct {
	fetcher Fetcher

	mu    sync.Mutex
	blobs map[string][]byte
	locks map[string]*sync.Mutex
}

// NewCache returns a cache backed by f; a nil f uses the embedded fonts.
func NewCache(f Fetcher) *Cache {
	if f == nil {
		f = Embedded{}
	}
	return &Cache{fetcher: f, blobs: map[string][]byte{}, locks: map[string]*sync.Mutex{}}
}

// Get returns the registry entry for family together with its bytes.
func (c *Cache) Get(ctx context.Context, family string) (Entry, []byte, error) {
	entry, _ := Lookup(family)

	data, lock, ok := c.lookup(entry.Family)
	if ok {
		return entry, data, nil
	}
	lock.Lock()
	defer lock.Unlock()
	if data, _, ok = c.lookup(entry.Family); ok {
		return entry, data, nil
	}

	data, err := c.fetcher.Fetch(ctx, entry)
	if err != nil {
		return entry, nil, fmt.Errorf("fetch font %q: %w", entry.Family, err)
	}
	if len(data) == 0 {
		return entry, nil, fmt.Errorf("fetch font %q: empty resource", entry.Family)
	}
	c.mu.Lock()
	c.blobs[entry.Family] = data
	c.mu.Unlock()
	return entry, data, nil
}

// lookup returns the stored bytes, or the per-family lock guarding the fetch.
func (c *Cache) lookup(family string) ([]byte, *sync.Mutex, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if data, ok := c.blobs[family]; ok {
		return data, nil, true
	}
	lock, ok := c.locks[family]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[family] = lock
	}
	return nil, lock, false
}

// Len reports how many families are cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.blobs)
}
