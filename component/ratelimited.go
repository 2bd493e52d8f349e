package component

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedConfig configures the supplemental RateLimited policy.
// golang.org/x/time/rate is the idiomatic Go token-bucket limiter, so
// it is exposed here as a sixth policy alongside Cacheable, Lockable,
// Conditional, StepOrdered, and CatchError.
type RateLimitedConfig[A any] struct {
	Class  string
	Method string

	Limiter Resolver[*rate.Limiter]

	KeyArgs func(A) []any
	KeyGen  KeyGenerator

	// Wait, when true, blocks until a token is available or ctx is
	// done. When false (the default), a call with no token available
	// fails immediately with RateLimitedError.
	Wait bool

	OnLimited func(key string)
}

// RateLimited wraps body with a token-bucket check against the
// resolved *rate.Limiter, keyed from the method's static identity and
// cfg.KeyArgs.
func RateLimited[A, R any](cfg RateLimitedConfig[A], body func(ctx context.Context, arg A) (R, error)) func(ctx context.Context, arg A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		var zero R

		limiter, err := cfg.Limiter(ctx)
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

		if cfg.Wait {
			if err := limiter.Wait(ctx); err != nil {
				return zero, err
			}
		} else if !limiter.Allow() {
			if cfg.OnLimited != nil {
				cfg.OnLimited(key)
			}
			return zero, &RateLimitedError{Key: key}
		}

		return body(ctx, arg)
	}
}
