package memdex

import "github.com/elastic/go-freelru"

// findCache memoizes Find results in front of the tree. Entries are keyed by
// the stored key rather than the caller's lookup key, so comparator-equal
// aliases of a key can never leave a stale value behind: only the canonical
// key that actually sits in a leaf is ever cached, and Insert/Erase maintain
// exactly that key.
//
// A nil *findCache is valid and inert, which keeps the call sites in the
// tree free of configuration branches.
type findCache[K comparable, V any] struct {
	lru *freelru.LRU[K, V]

	// Plain counters; the tree's single-writer contract covers the cache.
	hits      uint64
	misses    uint64
	evictions uint64
}

// CacheStats reports find-cache effectiveness counters. Zero for trees built
// without WithFindCache.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
}

func newFindCache[K comparable, V any](capacity uint32, hash func(K) uint32) (*findCache[K, V], error) {
	lru, err := freelru.New[K, V](capacity, hash)
	if err != nil {
		return nil, err
	}
	return &findCache[K, V]{lru: lru}, nil
}

func (c *findCache[K, V]) get(key K) (V, bool) {
	if c == nil {
		var zero V
		return zero, false
	}
	v, ok := c.lru.Get(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

func (c *findCache[K, V]) put(key K, value V) {
	if c == nil {
		return
	}
	if c.lru.Add(key, value) {
		c.evictions++
	}
}

func (c *findCache[K, V]) evict(key K) {
	if c == nil {
		return
	}
	c.lru.Remove(key)
}

func (c *findCache[K, V]) purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func (c *findCache[K, V]) stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	return CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Len:       c.lru.Len(),
	}
}
