package component

import (
	"context"
	"fmt"
)

// Resolver lazily resolves a policy's collaborator (a Cache, a Lock,
// a rate limiter, and so on) from the container. A Resolver is called
// on every invocation, not cached by the policy itself, so swapping
// the container's registration (e.g. via Restart) takes effect on the
// next call.
type Resolver[T any] func(ctx context.Context) (T, error)

// FromInstance returns a Resolver that always yields v, for tests and
// for collaborators that are not themselves components.
func FromInstance[T any](v T) Resolver[T] {
	return func(context.Context) (T, error) { return v, nil }
}

// FromComponent returns a Resolver that looks up name in c on every
// call and asserts it satisfies T.
func FromComponent[T any](c *Container, name string) Resolver[T] {
	return func(context.Context) (T, error) {
		var zero T
		v, err := LookupByName(c, name)
		if err != nil {
			return zero, err
		}
		typed, ok := v.(T)
		if !ok {
			return zero, &TypeMismatchError{Name: name, Expected: fmt.Sprintf("%T", zero), Actual: fmt.Sprintf("%T", v)}
		}
		return typed, nil
	}
}

// FromSupplier wraps an arbitrary zero-argument resolution function.
func FromSupplier[T any](supplier func(ctx context.Context) (T, error)) Resolver[T] {
	return supplier
}
