package component

import (
	"context"
	"errors"
	"testing"
)

var errSkippable = errors.New("skip me")

func TestCatchErrorSubstitutesResult(t *testing.T) {
	op := CatchError(CatchErrorConfig[string]{
		Handler: func(ctx context.Context, err error) (string, error) { return "fallback", nil },
	}, func(ctx context.Context, _ struct{}) (string, error) { return "", errFail })

	got, err := op(context.Background(), struct{}{})
	if err != nil {
		t.Fatalf("op: %v", err)
	}
	if got != "fallback" {
		t.Fatalf("got %q, want fallback", got)
	}
}

func TestCatchErrorSkipPropagatesUnchanged(t *testing.T) {
	handlerCalled := false
	op := CatchError(CatchErrorConfig[string]{
		Skip:    func(err error) bool { return errors.Is(err, errSkippable) },
		Handler: func(ctx context.Context, err error) (string, error) { handlerCalled = true; return "fallback", nil },
	}, func(ctx context.Context, _ struct{}) (string, error) { return "", errSkippable })

	_, err := op(context.Background(), struct{}{})
	if !errors.Is(err, errSkippable) {
		t.Fatalf("got %v, want errSkippable unchanged", err)
	}
	if handlerCalled {
		t.Fatalf("expected handler not to run for a skipped error")
	}
}

func TestCatchErrorNoErrorPassesThrough(t *testing.T) {
	op := CatchError(CatchErrorConfig[int]{
		Handler: func(ctx context.Context, err error) (int, error) { return -1, nil },
	}, func(ctx context.Context, _ struct{}) (int, error) { return 9, nil })

	got, err := op(context.Background(), struct{}{})
	if err != nil {
		t.Fatalf("op: %v", err)
	}
	if got != 9 {
		t.Fatalf("got %d, want 9", got)
	}
}
