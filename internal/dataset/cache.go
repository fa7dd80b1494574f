package dataset

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a read-through cache of loaded tables. An entry is valid only
// for the fingerprint it was loaded under; a lookup with any other
// fingerprint is a miss. Concurrent misses for the same key and
// fingerprint share a single load.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	group   singleflight.Group
	now     func() time.Time
}

type cacheEntry struct {
	fingerprint Fingerprint
	value       any
	loadedAt    time.Time
}

// CacheEntryInfo describes a cached entry for status reporting.
type CacheEntryInfo struct {
	Key         string    `json:"key"`
	Fingerprint string    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loadedAt"`
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		now:     time.Now,
	}
}

// Get returns the value cached for key if it was loaded under fp.
func (c *Cache) Get(key string, fp Fingerprint) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || entry.fingerprint != fp {
		return nil, false
	}
	return entry.value, true
}

// GetOrLoad returns the cached value for key under fp, calling load on a
// miss. Failed loads are not cached. The shared load is detached from the
// caller's cancellation; a cancelled caller stops waiting but the load
// completes for the others.
func (c *Cache) GetOrLoad(ctx context.Context, key string, fp Fingerprint, load func(context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key, fp); ok {
		return v, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key+"@"+string(fp), func() (any, error) {
		if v, ok := c.Get(key, fp); ok {
			return v, nil
		}
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = &cacheEntry{fingerprint: fp, value: v, loadedAt: c.now()}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Fingerprint returns the fingerprint key was last loaded under.
func (c *Cache) Fingerprint(key string) (Fingerprint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	return entry.fingerprint, true
}

// Delete removes an entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries lists the cached entries sorted by key.
func (c *Cache) Entries() []CacheEntryInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]CacheEntryInfo, 0, len(c.entries))
	for key, entry := range c.entries {
		infos = append(infos, CacheEntryInfo{
			Key:         key,
			Fingerprint: string(entry.fingerprint),
			LoadedAt:    entry.loadedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}
