// Package redis implements the distributed Cache and Lock drivers on
// top of github.com/redis/go-redis/v9, the same client
// ipiton-alert-history-service/go-app's cache and lock packages use.
// Unlike drivers/memory, Keys/Count pass their pattern straight
// through to Redis's own SCAN MATCH syntax, which already matches the
// `*`, `?`, `[abc]`, `[!abc]` glob grammar used here.
package redisdriver

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pumped-fn/kernel/component"
)

type envelope struct {
	Value   json.RawMessage `json:"value"`
	Version string          `json:"version"`
}

// Cache is a Redis-backed Cache implementation. Renewable-entry
// timers are process-local, not stored in Redis: a process restart
// drops them, so a renewable entry then simply expires and is not
// rearmed until the next Set. The timers are not tied to the client
// connection; a client reconnect neither stops nor resets them.
type Cache struct {
	client  *redis.Client
	logger  zerolog.Logger
	enabled bool

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewCache wraps client as a Cache. logger defaults to a no-op logger.
func NewCache(client *redis.Client, logger zerolog.Logger) *Cache {
	return &Cache{client: client, logger: logger, enabled: true, timers: make(map[string]*time.Timer)}
}

func (c *Cache) Get(ctx context.Context, key string, version string) (component.CacheResult, error) {
	if !c.Enabled() {
		return component.CacheResult{}, nil
	}

	raw, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return component.CacheResult{}, nil
	}
	if err != nil {
		return component.CacheResult{}, err
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return component.CacheResult{}, err
	}
	if version != "" && env.Version != version {
		c.client.Del(ctx, key)
		return component.CacheResult{}, nil
	}

	var value any
	if err := json.Unmarshal(env.Value, &value); err != nil {
		return component.CacheResult{}, err
	}
	return component.CacheResult{Value: value, Hit: true, StoredVersion: env.Version}, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, opts component.CacheOptions) error {
	if !c.Enabled() {
		return nil
	}
	if opts.ExpiryMS > 0 && time.Now().UnixMilli() >= opts.ExpiryMS {
		return nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	env := envelope{Value: encoded, Version: opts.Version}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if opts.ExpiryMS > 0 {
		ttl = time.Until(time.UnixMilli(opts.ExpiryMS))
		if ttl <= 0 {
			return nil
		}
	}

	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return err
	}

	c.cancelTimer(key)
	if opts.Renewable && opts.ExpiryMS > 0 && opts.Producer != nil {
		if lifetimeMS := opts.ExpiryMS - time.Now().UnixMilli(); lifetimeMS > 0 {
			c.armTimer(key, time.Duration(lifetimeMS)*time.Millisecond, opts)
		}
	}

	return nil
}

func (c *Cache) armTimer(key string, delay time.Duration, opts component.CacheOptions) {
	timer := time.AfterFunc(delay, func() {
		value, err := opts.Producer(context.Background())
		if err != nil {
			c.logger.Error().Err(err).Str("key", key).Msg("renewable cache entry producer failed")
			return
		}
		opts.ExpiryMS = time.Now().Add(delay).UnixMilli()
		if err := c.Set(context.Background(), key, value, opts); err != nil {
			c.logger.Error().Err(err).Str("key", key).Msg("renewable cache entry rearm failed")
		}
	})
	c.mu.Lock()
	c.timers[key] = timer
	c.mu.Unlock()
}

func (c *Cache) cancelTimer(key string) {
	c.mu.Lock()
	if t, ok := c.timers[key]; ok {
		t.Stop()
		delete(c.timers, key)
	}
	c.mu.Unlock()
}

func (c *Cache) Delete(ctx context.Context, key string) (any, bool, error) {
	result, err := c.Get(ctx, key, "")
	if err != nil {
		return nil, false, err
	}
	if !result.Hit {
		return nil, false, nil
	}
	c.cancelTimer(key)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return nil, false, err
	}
	return result.Value, true, nil
}

func (c *Cache) Keys(ctx context.Context, pattern string) ([]string, error) {
	if !c.Enabled() {
		return nil, nil
	}
	var out []string
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
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

var _ component.Cache = (*Cache)(nil)
