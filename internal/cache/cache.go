package cache

import (
	"sync"
	"time"
)

// Entry is a cached value with its creation time.
type Entry[T any] struct {
	CreatedAt time.Time
	Value     T
}

// Cache is a TTL cache keyed by string. Expired entries are not evicted;
// they stop being returned and are replaced on the next Set.
type Cache[T any] struct {
	mu    sync.RWMutex
	items map[string]Entry[T]
	ttl   time.Duration
	now   func() time.Time
}

func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		items: make(map[string]Entry[T]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (c *Cache[T]) WithClock(now func() time.Time) *Cache[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = Entry[T]{
		CreatedAt: c.now(),
		Value:     value,
	}
}

// Get returns the value for key while now - CreatedAt < ttl.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero T
	item, exists := c.items[key]
	if !exists {
		return zero, false
	}
	if c.now().Sub(item.CreatedAt) >= c.ttl {
		return zero, false
	}
	return item.Value, true
}
