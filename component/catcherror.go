package component

import "context"

// CatchErrorConfig configures the CatchError policy. Skip reports
// errors that must propagate unchanged, bypassing Handler entirely
// (typically sentinel or type checks via errors.Is or errors.As).
// Handler produces a substitute result, or a replacement error, for
// everything Skip lets through.
type CatchErrorConfig[R any] struct {
	Skip    func(err error) bool
	Handler func(ctx context.Context, err error) (R, error)
}

// CatchError wraps body so that a non-nil error is routed to
// cfg.Handler unless cfg.Skip reports it should propagate unchanged.
// A nil Skip never skips.
func CatchError[A, R any](cfg CatchErrorConfig[R], body func(ctx context.Context, arg A) (R, error)) func(ctx context.Context, arg A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		result, err := body(ctx, arg)
		if err == nil {
			return result, nil
		}
		if cfg.Skip != nil && cfg.Skip(err) {
			return result, err
		}
		return cfg.Handler(ctx, err)
	}
}
