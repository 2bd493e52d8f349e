// Package memory implements the in-process Cache and Lock drivers.
// The cache's bounded backing store is hashicorp/golang-lru/v2; the
// glob matching Keys/Count need is internal/globmatch since the
// stdlib's path.Match syntax differs from the Redis-style `[!abc]`
// negation used here.
package memory

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pumped-fn/kernel/component"
	"github.com/pumped-fn/kernel/internal/globmatch"
)

const defaultCapacity = 10000

type entry struct {
	value     any
	expiryMS  int64
	version   string
	renewable bool
	producer  func(ctx context.Context) (any, error)
	timer     *time.Timer
}

// Cache is an in-process, LRU-bounded Cache implementation.
type Cache struct {
	mu      sync.Mutex
	store   *lru.Cache[string, *entry]
	enabled bool
}

// NewCache constructs a Cache holding at most capacity entries beyond
// which the least-recently-used is evicted. capacity <= 0 uses a
// default of 10000.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	store, _ := lru.New[string, *entry](capacity)
	return &Cache{store: store, enabled: true}
}

func (c *Cache) Get(ctx context.Context, key string, version string) (component.CacheResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return component.CacheResult{}, nil
	}
	e, ok := c.store.Get(key)
	if !ok {
		return component.CacheResult{}, nil
	}
	if c.expiredLocked(e) {
		c.evictLocked(key, e)
		return component.CacheResult{}, nil
	}
	if version != "" && e.version != version {
		c.evictLocked(key, e)
		return component.CacheResult{}, nil
	}
	return component.CacheResult{Value: e.value, Hit: true, StoredVersion: e.version}, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, opts component.CacheOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return nil
	}
	if opts.ExpiryMS > 0 && time.Now().UnixMilli() >= opts.ExpiryMS {
		return nil
	}

	if existing, ok := c.store.Peek(key); ok && existing.timer != nil {
		existing.timer.Stop()
	}

	e := &entry{value: value, expiryMS: opts.ExpiryMS, version: opts.Version, renewable: opts.Renewable, producer: opts.Producer}
	if opts.Renewable && opts.ExpiryMS > 0 && opts.Producer != nil {
		if lifetimeMS := opts.ExpiryMS - time.Now().UnixMilli(); lifetimeMS > 0 {
			lifetime := time.Duration(lifetimeMS) * time.Millisecond
			e.timer = time.AfterFunc(lifetime, func() { c.rearm(key, opts, lifetime) })
		}
	}

	c.store.Add(key, e)
	return nil
}

func (c *Cache) rearm(key string, opts component.CacheOptions, lifetime time.Duration) {
	value, err := opts.Producer(context.Background())
	if err != nil {
		return
	}
	opts.ExpiryMS = time.Now().Add(lifetime).UnixMilli()
	_ = c.Set(context.Background(), key, value, opts)
}

func (c *Cache) Delete(ctx context.Context, key string) (any, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	c.evictLocked(key, e)
	return e.value, true, nil
}

func (c *Cache) Keys(ctx context.Context, pattern string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return nil, nil
	}
	var out []string
	for _, k := range c.store.Keys() {
		e, ok := c.store.Peek(k)
		if !ok || c.expiredLocked(e) {
			continue
		}
		if globmatch.Match(pattern, k) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (c *Cache) Count(ctx context.Context, pattern string) (int, error) {
	keys, err := c.Keys(ctx, pattern)
	return len(keys), err
}

func (c *Cache) Enable() {
	c.mu.Lock()
	c.enabled = true
	c.mu.Unlock()
}

func (c *Cache) Disable() {
	c.mu.Lock()
	c.enabled = false
	c.mu.Unlock()
}

func (c *Cache) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

func (c *Cache) expiredLocked(e *entry) bool {
	return e.expiryMS > 0 && time.Now().UnixMilli() > e.expiryMS
}

func (c *Cache) evictLocked(key string, e *entry) {
	if e.timer != nil {
		e.timer.Stop()
	}
	c.store.Remove(key)
}

var _ component.Cache = (*Cache)(nil)
