package redisdriver

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pumped-fn/kernel/component"
)

// retryBackoff is the fixed interval between acquisition retries
// while waiting out a LockOptions.Timeout (at most 100ms).
const retryBackoff = 100 * time.Millisecond

const defaultTTL = 30 * time.Second

// releaseScript deletes key only if it is unowned (empty value, an
// anonymous Lock) or owned by the caller's auth. Same compare-and-
// delete shape ipiton-alert-history-service/go-app's DistributedLock
// uses, extended for the anonymous case: the empty string means
// anonymous, so any caller may later Unlock it.
const releaseScript = `
local v = redis.call("get", KEYS[1])
if v == false then
	return 0
end
if v == "" or v == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

// Lock is a Redis-backed distributed named mutual-exclusion
// implementation using SETNX for acquisition and a compare-and-delete
// Lua script for release.
type Lock struct {
	client *redis.Client
}

// NewLock wraps client as a Lock.
func NewLock(client *redis.Client) *Lock {
	return &Lock{client: client}
}

func (l *Lock) tryAcquire(ctx context.Context, key string, opts component.LockOptions) (bool, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return l.client.SetNX(ctx, key, opts.Auth, ttl).Result()
}

func (l *Lock) Lock(ctx context.Context, key string, opts component.LockOptions) (bool, error) {
	acquired, err := l.tryAcquire(ctx, key, opts)
	if err != nil {
		return false, err
	}
	if acquired {
		return true, nil
	}
	if opts.Timeout <= 0 {
		return false, nil
	}

	deadline := time.Now().Add(opts.Timeout)
	ticker := time.NewTicker(retryBackoff)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
			acquired, err := l.tryAcquire(ctx, key, opts)
			if err != nil {
				return false, err
			}
			if acquired {
				return true, nil
			}
			if time.Now().After(deadline) {
				return false, nil
			}
		}
	}
}

func (l *Lock) Unlock(ctx context.Context, key string, auth string) (bool, error) {
	result, err := l.client.Eval(ctx, releaseScript, []string{key}, auth).Result()
	if err != nil {
		return false, err
	}
	count, _ := result.(int64)
	return count == 1, nil
}

func (l *Lock) Locked(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ component.Lock = (*Lock)(nil)
