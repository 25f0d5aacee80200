package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultMaxEntries is used when New is given a non-positive size.
const DefaultMaxEntries = 128

// Fingerprint returns the hex SHA-256 of content.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

type entry[V any] struct {
	key   string
	value V
}

// Cache is a thread-safe LRU of computed values keyed by fingerprint.
type Cache[V any] struct {
	mu       sync.Mutex
	maxSize  int
	items    map[string]*list.Element
	order    *list.List
	inflight singleflight.Group
	stats    *Statistics
	metrics  *cacheMetrics
}

// New creates a cache holding at most maxEntries values.
func New[V any](maxEntries int, opts ...Option) (*Cache[V], error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache[V]{
		maxSize: maxEntries,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		stats:   &Statistics{},
	}

	if o.registerer != nil {
		m, err := newCacheMetrics(o.registerer, o.namespace)
		if err != nil {
			return nil, err
		}
		c.metrics = m
	}
	return c, nil
}

// Get returns the value stored for key and marks it recently used.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		var zero V
		c.stats.misses.Add(1)
		c.metrics.recordMiss()
		return zero, false
	}

	c.order.MoveToFront(el)
	c.stats.hits.Add(1)
	c.metrics.recordHit()
	return el.Value.(*entry[V]).value, true
}

// GetOrCompute returns the cached value for key, or runs compute and stores
// its result. At most one compute runs per key at a time; concurrent callers
// for the same key wait for it and receive the same value. A compute that
// returns an error is not cached.
//
// shared reports whether the value came from the cache or from another
// caller's computation.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (value V, shared bool, err error) {
	if key == "" {
		var zero V
		return zero, false, errors.New("cache: empty key")
	}

	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	res, err, shared := c.inflight.Do(key, func() (any, error) {
		// Another caller may have finished between Get and Do.
		if v, ok := c.peek(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	v, _ := res.(V)
	return v, shared, nil
}

// Remove evicts the entry for key. It reports whether an entry existed.
func (c *Cache[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.order.Remove(el)
	delete(c.items, key)
	c.metrics.updateSize(len(c.items))
	return true
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of hit, miss and eviction counts.
func (c *Cache[V]) Stats() StatsSummary {
	return c.stats.summary(c.Len(), c.maxSize)
}

func (c *Cache[V]) peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		return el.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

func (c *Cache[V]) set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry[V]).value = value
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value})
	for len(c.items) > c.maxSize {
		c.evictOldest()
	}
	c.metrics.updateSize(len(c.items))
}

// evictOldest must be called with mu held.
func (c *Cache[V]) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[V]).key)
	c.stats.evictions.Add(1)
	c.metrics.recordEviction()
}
