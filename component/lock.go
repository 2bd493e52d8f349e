package component

import (
	"context"
	"time"
)

// LockOptions configures a Lock.Lock call.
type LockOptions struct {
	// TTL bounds how long the lock is held before it is considered
	// abandoned. Required for distributed drivers; the in-memory
	// driver may ignore it since process death releases the lock
	// implicitly.
	TTL time.Duration
	// Timeout, if > 0, retries acquisition at a fixed backoff (capped
	// at 100ms) until success or the timeout elapses. Timeout <= 0
	// (the zero value) means "try once, return immediately".
	Timeout time.Duration
	// Auth is the owner-token. The empty string means anonymous: any
	// caller may later Unlock it.
	Auth string
}

// Lock is the abstract named mutual-exclusion contract. Concrete
// drivers live in drivers/memory and drivers/redis.
type Lock interface {
	// Lock attempts to acquire key. It returns true once acquired,
	// false if the timeout (or the immediate single attempt, when no
	// timeout is given) elapsed without success.
	Lock(ctx context.Context, key string, opts LockOptions) (bool, error)

	// Unlock releases key iff it is unowned or owned by auth.
	// Otherwise it returns false and leaves the lock untouched.
	Unlock(ctx context.Context, key string, auth string) (bool, error)

	// Locked reports whether key currently has an owner.
	Locked(ctx context.Context, key string) (bool, error)
}

// lockRetryBackoff is the fixed retry interval Lock implementations
// use while waiting out a Timeout: retry at a fixed backoff of at
// most 100ms.
const lockRetryBackoff = 100 * time.Millisecond
