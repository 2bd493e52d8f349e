package component

import "context"

// ConditionalConfig configures the Conditional (When) policy.
// Predicate runs before body on every call; body only runs when it
// reports true.
type ConditionalConfig[A any] struct {
	Method    string
	Predicate func(ctx context.Context, arg A) (bool, error)
}

// StaticCondition adapts a fixed boolean into a Predicate, for the
// literal-condition form of When.
func StaticCondition(ok bool) func(context.Context) (bool, error) {
	return func(context.Context) (bool, error) { return ok, nil }
}

// When wraps body so it only runs when cfg.Predicate reports true.
// Otherwise it signals ConditionNotMetError and never invokes body.
func When[A, R any](cfg ConditionalConfig[A], body func(ctx context.Context, arg A) (R, error)) func(ctx context.Context, arg A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		var zero R

		ok, err := cfg.Predicate(ctx, arg)
		if err != nil {
			return zero, err
		}
		if !ok {
			return zero, &ConditionNotMetError{Method: cfg.Method}
		}
		return body(ctx, arg)
	}
}
