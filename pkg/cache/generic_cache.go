package cache

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultTTL           = time.Minute
	DefaultSweepInterval = 5 * time.Minute
	NoExpiration         = time.Duration(-1)
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// TTLCache is a thread-safe map whose entries expire. Expired entries are invisible to Get
// immediately and are reclaimed by a background sweeper.
type TTLCache[K comparable, V any] struct {
	mu            sync.RWMutex
	entries       map[K]entry[V]
	defaultTTL    time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	done          chan struct{}
	closeOnce     sync.Once
}

// Option is a functional option for configuring the cache.
type Option[K comparable, V any] func(*TTLCache[K, V])

// New creates a cache and starts its sweeper. Call Close to stop it.
func New[K comparable, V any](opts ...Option[K, V]) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		entries:       make(map[K]entry[V]),
		defaultTTL:    DefaultTTL,
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
		done:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	go c.sweep()

	return c
}

// WithDefaultTTL sets the lifetime used when Set is called with a zero ttl.
func WithDefaultTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *TTLCache[K, V]) {
		c.defaultTTL = ttl
	}
}

// WithSweepInterval sets how often expired entries are reclaimed.
func WithSweepInterval[K comparable, V any](interval time.Duration) Option[K, V] {
	return func(c *TTLCache[K, V]) {
		c.sweepInterval = interval
	}
}

// WithClock replaces time.Now, for tests.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *TTLCache[K, V]) {
		c.now = now
	}
}

// Set stores value under key. A zero ttl means the default TTL; NoExpiration keeps it until deleted.
func (c *TTLCache[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	var expiresAt time.Time
	switch {
	case ttl == NoExpiration:
	case ttl == 0:
		expiresAt = c.now().Add(c.defaultTTL)
	default:
		expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

func (c *TTLCache[K, V]) Get(ctx context.Context, key K) (V, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found || e.expired(c.now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *TTLCache[K, V]) Delete(ctx context.Context, key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len counts stored entries, including expired ones not yet swept.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *TTLCache[K, V]) Purge(ctx context.Context) {
	c.mu.Lock()
	c.entries = make(map[K]entry[V])
	c.mu.Unlock()
}

// Close stops the sweeper. It is safe to call more than once.
func (c *TTLCache[K, V]) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *TTLCache[K, V]) sweep() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.done:
			return
		}
	}
}

func (c *TTLCache[K, V]) removeExpired() {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
}
