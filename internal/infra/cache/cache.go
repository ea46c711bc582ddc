// Package cache provides an in-memory TTL cache. The ledger service keeps
// authenticated sessions in it, so entries expire after a period of
// inactivity rather than a fixed lifetime.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Option customizes an InMemory cache.
type Option[T any] func(*InMemory[T])

// WithEvictHook registers fn to run whenever an entry leaves the cache,
// either through Delete or expiry. fn runs without the cache lock held.
func WithEvictHook[T any](fn func(key string, value T)) Option[T] {
	return func(c *InMemory[T]) { c.onEvict = fn }
}

// WithClock overrides the time source. Tests use it to expire entries
// without sleeping.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *InMemory[T]) { c.now = now }
}

// InMemory is a thread-safe in-memory cache with TTL.
type InMemory[T any] struct {
	mu      sync.RWMutex
	items   map[string]entry[T]
	ttl     time.Duration
	now     func() time.Time
	onEvict func(key string, value T)

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a new in-memory cache with the given TTL and starts the
// background janitor. Call Close to stop it.
func New[T any](ttl time.Duration, opts ...Option[T]) *InMemory[T] {
	c := &InMemory[T]{
		items: make(map[string]entry[T]),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.cleanup()
	return c
}

// Get retrieves a value from the cache. Returns false if not found or expired.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || c.now().After(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Touch returns the value for key and pushes its expiry one TTL forward.
func (c *InMemory[T]) Touch(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.items[key]
	if !ok || now.After(e.expiresAt) {
		var zero T
		return zero, false
	}
	e.expiresAt = now.Add(c.ttl)
	c.items[key] = e
	return e.value, true
}

// Set stores a value in the cache with the configured TTL.
func (c *InMemory[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[T]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Delete removes a value from the cache.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	e, ok := c.items[key]
	delete(c.items, key)
	c.mu.Unlock()

	if ok && c.onEvict != nil {
		c.onEvict(key, e.value)
	}
}

// Len reports the number of live (unexpired) entries.
func (c *InMemory[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	n := 0
	for _, e := range c.items {
		if !now.After(e.expiresAt) {
			n++
		}
	}
	return n
}

// Sweep removes expired entries immediately and returns how many were dropped.
func (c *InMemory[T]) Sweep() int {
	c.mu.Lock()
	now := c.now()
	expired := make(map[string]T)
	for k, v := range c.items {
		if now.After(v.expiresAt) {
			expired[k] = v.value
			delete(c.items, k)
		}
	}
	c.mu.Unlock()

	if c.onEvict != nil {
		for k, v := range expired {
			c.onEvict(k, v)
		}
	}
	return len(expired)
}

// Close stops the background janitor. It is safe to call more than once.
func (c *InMemory[T]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// cleanup periodically removes expired entries.
func (c *InMemory[T]) cleanup() {
	interval := c.ttl
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}
