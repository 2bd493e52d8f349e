package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pumped-fn/kernel/component"
)

// retryBackoff is the fixed interval between acquisition retries
// while waiting out a LockOptions.Timeout (at most 100ms).
const retryBackoff = 100 * time.Millisecond

type lockEntry struct {
	auth   string
	expiry time.Time // zero means no TTL
}

// Lock is an in-process named mutual-exclusion implementation.
type Lock struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

// NewLock constructs an empty Lock.
func NewLock() *Lock {
	return &Lock{locks: make(map[string]*lockEntry)}
}

func (l *Lock) tryAcquire(key string, opts component.LockOptions) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.locks[key]; ok {
		if e.expiry.IsZero() || time.Now().Before(e.expiry) {
			return false
		}
	}

	var expiry time.Time
	if opts.TTL > 0 {
		expiry = time.Now().Add(opts.TTL)
	}
	l.locks[key] = &lockEntry{auth: opts.Auth, expiry: expiry}
	return true
}

func (l *Lock) Lock(ctx context.Context, key string, opts component.LockOptions) (bool, error) {
	if l.tryAcquire(key, opts) {
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
			if l.tryAcquire(key, opts) {
				return true, nil
			}
			if time.Now().After(deadline) {
				return false, nil
			}
		}
	}
}

func (l *Lock) Unlock(ctx context.Context, key string, auth string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[key]
	if !ok {
		return false, nil
	}
	if e.auth != "" && e.auth != auth {
		return false, nil
	}
	delete(l.locks, key)
	return true, nil
}

func (l *Lock) Locked(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[key]
	if !ok {
		return false, nil
	}
	if !e.expiry.IsZero() && time.Now().After(e.expiry) {
		delete(l.locks, key)
		return false, nil
	}
	return true, nil
}

var _ component.Lock = (*Lock)(nil)
