package component

import "context"

// LockableConfig configures the Lockable policy: the wrapped body
// runs only while the derived key is held, and the lock is released,
// however the body exits, before Lockable returns.
type LockableConfig[A any] struct {
	Class  string
	Method string

	Lock Resolver[Lock]

	KeyArgs func(A) []any
	KeyGen  KeyGenerator

	// Options produces this call's LockOptions. Nil means try-once,
	// no TTL, anonymous ownership.
	Options func(ctx context.Context, arg A) (LockOptions, error)

	OnAcquired func(key string)
	OnReleased func(key string)
	OnTimeout  func(key string, opts LockOptions)
}

// Lockable wraps body so it runs only after acquiring the derived
// key, and releases it unconditionally once body returns. A failed
// acquisition (timeout elapsed, or the single try-once attempt
// failed) signals LockTimeoutError and never invokes body.
func Lockable[A, R any](cfg LockableConfig[A], body func(ctx context.Context, arg A) (R, error)) func(ctx context.Context, arg A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		var zero R

		lock, err := cfg.Lock(ctx)
		if err != nil {
			return zero, err
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

		var opts LockOptions
		if cfg.Options != nil {
			opts, err = cfg.Options(ctx, arg)
			if err != nil {
				return zero, err
			}
		}

		acquired, err := lock.Lock(ctx, key, opts)
		if err != nil {
			return zero, err
		}
		if !acquired {
			if cfg.OnTimeout != nil {
				cfg.OnTimeout(key, opts)
			}
			return zero, &LockTimeoutError{Key: key, Timeout: opts.Timeout.Milliseconds()}
		}
		if cfg.OnAcquired != nil {
			cfg.OnAcquired(key)
		}

		defer func() {
			_, _ = lock.Unlock(ctx, key, opts.Auth)
			if cfg.OnReleased != nil {
				cfg.OnReleased(key)
			}
		}()

		return body(ctx, arg)
	}
}
