package cache

import (
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/singleflight"
)

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Cache memoizes computed values per key for a TTL. Concurrent misses on the
// same key share one computation.
type Cache[T any] struct {
	entries *xsync.Map[string, entry[T]]
	sfg     singleflight.Group
	ttl     time.Duration
	now     func() time.Time
}

func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		entries: xsync.NewMap[string, entry[T]](),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *Cache[T]) Get(key string, fn func() (T, error)) (T, error) {
	if e, ok := c.entries.Load(key); ok && c.now().Sub(e.fetchedAt) <= c.ttl {
		return e.value, nil
	}

	v, err, _ := c.sfg.Do(key, func() (any, error) {
		if e, ok := c.entries.Load(key); ok && c.now().Sub(e.fetchedAt) <= c.ttl {
			return e.value, nil
		}
		res, err := fn()
		if err != nil {
			return nil, err
		}
		c.entries.Store(key, entry[T]{value: res, fetchedAt: c.now()})
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops every cached key.
func (c *Cache[T]) Invalidate() {
	c.entries.Clear()
}

func (c *Cache[T]) Len() int {
	return c.entries.Size()
}
