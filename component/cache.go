package component

import "context"

// CacheOptions configures a Cache.Set call.
type CacheOptions struct {
	// ExpiryMS is an absolute Unix millisecond timestamp. Zero means
	// the entry never expires; a Set whose non-zero ExpiryMS is already
	// in the past is a no-op.
	ExpiryMS int64
	// Version, when non-empty, must match a Get's requested version
	// for the entry to be considered live.
	Version string
	// Renewable schedules a self-refresh shortly before ExpiryMS by
	// invoking Producer again and overwriting the entry. Stores that
	// cannot subscribe to their own expiry ignore this flag and
	// behave as non-renewable.
	Renewable bool
	// Producer is invoked by a renewable entry's rearm timer. It is
	// unused when Renewable is false.
	Producer func(ctx context.Context) (any, error)
}

// CacheResult is the outcome of a Cache.Get call.
type CacheResult struct {
	Value         any
	Hit           bool
	StoredVersion string
}

// Cache is the abstract key/value store contract. Concrete drivers
// live outside this package: drivers/memory for the in-process
// implementation, drivers/redis for the distributed one.
type Cache interface {
	// Get returns a miss if key is absent, expired, or (when version
	// is non-empty) stored under a different version. A store must
	// delete a stale entry as soon as a Get observes it.
	Get(ctx context.Context, key string, version string) (CacheResult, error)

	// Set stores value under key per opts. A past ExpiryMS is a
	// no-op, not an error.
	Set(ctx context.Context, key string, value any, opts CacheOptions) error

	// Delete removes key, returning its prior value if it had one.
	Delete(ctx context.Context, key string) (value any, hadValue bool, err error)

	// Keys returns every currently-live key matching pattern. Pattern
	// glob syntax: `*`, `?`, `[abc]`, `[!abc]`.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Count reports len(Keys(pattern)).
	Count(ctx context.Context, pattern string) (int, error)

	// Enable/Disable toggle the store. While disabled, every other
	// method behaves as a no-op: Get always misses, Set/Delete are
	// void, Keys/Count report empty.
	Enable()
	Disable()
	Enabled() bool
}
