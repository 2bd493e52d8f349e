package component

import (
	"context"
	"sync"
)

// StepState tracks the last completed step for one instance. A
// component with StepOrdered methods owns exactly one StepState,
// typically as a field initialized by NewStepState in its
// constructor.
type StepState struct {
	mu   sync.Mutex
	last int
}

// NewStepState returns a StepState with no steps completed.
func NewStepState() *StepState { return &StepState{} }

// Last reports the highest step that has completed.
func (s *StepState) Last() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// StepOrderedConfig configures the StepOrdered policy: a method may
// run unless a step above it has already completed, and completing it
// advances the shared StepState. Steps below it are not required to
// have run first.
type StepOrderedConfig struct {
	Method string
	Step   int
	State  *StepState
}

// StepOrdered wraps body so it raises OutOfOrderError when the
// instance's last completed step already exceeds cfg.Step. Otherwise
// it invokes body and, only on success, advances State to cfg.Step.
func StepOrdered[A, R any](cfg StepOrderedConfig, body func(ctx context.Context, arg A) (R, error)) func(ctx context.Context, arg A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		var zero R

		cfg.State.mu.Lock()
		last := cfg.State.last
		cfg.State.mu.Unlock()
		if last > cfg.Step {
			return zero, &OutOfOrderError{Method: cfg.Method, Step: cfg.Step, LastComplete: last}
		}

		result, err := body(ctx, arg)
		if err != nil {
			return result, err
		}

		cfg.State.mu.Lock()
		if cfg.State.last < cfg.Step {
			cfg.State.last = cfg.Step
		}
		cfg.State.mu.Unlock()

		return result, nil
	}
}
