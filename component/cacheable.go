package component

import "context"

// CacheableConfig configures the Cacheable policy. It wraps a method
// body of shape func(context.Context, A) (R, error)
// with a cache-aside lookup keyed from the method's static identity
// (Class, Method) plus whatever KeyArgs extracts from the call's
// argument.
type CacheableConfig[A, R any] struct {
	Class  string
	Method string

	// Store resolves the backing Cache lazily, on every call: see
	// FromInstance/FromComponent/FromSupplier.
	Store Resolver[Cache]

	// KeyArgs extracts the values that vary the cache key from the
	// call argument. Nil means the key is the same for every call.
	KeyArgs func(A) []any
	KeyGen  KeyGenerator

	// Options produces this call's CacheOptions. Nil means the zero
	// value (never expires, no version, not renewable).
	Options func(ctx context.Context, arg A) (CacheOptions, error)

	OnHit  func(key string, value R)
	OnMiss func(key string, value R)
}

// Cacheable wraps body with the cache-aside policy described by cfg.
// On a disabled store it falls straight through to body; an error
// resolving the store is returned without invoking body.
// On a hit it returns the stored value without invoking body. On a
// miss it invokes body, stores the result under the derived key, and
// returns it. Errors from body propagate unchanged, never reaching
// the store.
func Cacheable[A, R any](cfg CacheableConfig[A, R], body func(ctx context.Context, arg A) (R, error)) func(ctx context.Context, arg A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		var zero R

		store, err := cfg.Store(ctx)
		if err != nil {
			return zero, err
		}
		if !store.Enabled() {
			return body(ctx, arg)
		}

		keyGen := cfg.KeyGen
		if keyGen == nil {
			keyGen = DefaultKeyGenerator
		}
		var keyArgs []any
		if cfg.KeyArgs != nil {
			keyArgs = cfg.KeyArgs(arg)
		}
		key := keyGen(cfg.Class, cfg.Method, keyArgs...)

		var opts CacheOptions
		if cfg.Options != nil {
			opts, err = cfg.Options(ctx, arg)
			if err != nil {
				return zero, err
			}
		}

		found, err := store.Get(ctx, key, opts.Version)
		if err != nil {
			return zero, err
		}
		if found.Hit {
			typed, ok := found.Value.(R)
			if ok {
				if cfg.OnHit != nil {
					cfg.OnHit(key, typed)
				}
				return typed, nil
			}
		}

		value, err := body(ctx, arg)
		if err != nil {
			return value, err
		}

		if opts.Renewable && opts.Producer == nil {
			opts.Producer = func(ctx context.Context) (any, error) {
				v, err := body(ctx, arg)
				return v, err
			}
		}
		if err := store.Set(ctx, key, value, opts); err != nil {
			return value, err
		}

		if cfg.OnMiss != nil {
			cfg.OnMiss(key, value)
		}
		return value, nil
	}
}
