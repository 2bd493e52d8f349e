package component

import "fmt"

// UnknownComponentError is raised by a strict lookup when no component
// is registered under the requested name.
type UnknownComponentError struct {
	Name string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("component: unknown component %q", e.Name)
}

// DuplicateComponentError is raised when a registration reuses a name
// that already has a live instance.
type DuplicateComponentError struct {
	Name string
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("component: duplicate component %q", e.Name)
}

// TypeMismatchError is raised by a typed lookup when the registered
// instance does not satisfy the requested type.
type TypeMismatchError struct {
	Name     string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("component: %q is %s, not %s", e.Name, e.Actual, e.Expected)
}

// NoBindingInScopeError is raised by carrier.GetOrFail/Set when no
// run() is currently active for the slot.
type NoBindingInScopeError struct {
	Slot string
}

func (e *NoBindingInScopeError) Error() string {
	return fmt.Sprintf("component: no binding in scope for %q", e.Slot)
}

// HookFailureError wraps a failure from a construction-time lifecycle
// hook (pre-init, onInit, post-init). It aborts the construction that
// produced it. Teardown failures (pre-destroy, onStop) are logged by
// Container.Destroy rather than returned as a HookFailureError.
type HookFailureError struct {
	Name  string
	Stage Stage
	Cause error
}

func (e *HookFailureError) Error() string {
	return fmt.Sprintf("component: %q hook %s failed: %v", e.Name, e.Stage, e.Cause)
}

func (e *HookFailureError) Unwrap() error {
	return e.Cause
}

// LockTimeoutError is raised by the Lockable policy when acquisition
// does not succeed before its deadline.
type LockTimeoutError struct {
	Key     string
	Timeout int64 // milliseconds
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("component: lock timeout on %q after %dms", e.Key, e.Timeout)
}

// ConditionNotMetError is raised by the Conditional (When) policy when
// its predicate evaluates false.
type ConditionNotMetError struct {
	Method string
}

func (e *ConditionNotMetError) Error() string {
	return fmt.Sprintf("component: condition not met for %q", e.Method)
}

// OutOfOrderError is raised by the StepOrdered policy when the
// instance's last completed step already exceeds the method's step
// number.
type OutOfOrderError struct {
	Method       string
	Step         int
	LastComplete int
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("component: %q step %d is out of order (last completed %d)", e.Method, e.Step, e.LastComplete)
}

// CronInvalidError is raised at Scheduler task setup when a cron
// expression fails to parse. The task is skipped; other tasks on the
// same Runner continue.
type CronInvalidError struct {
	Component string
	Task      string
	Cause     error
}

func (e *CronInvalidError) Error() string {
	return fmt.Sprintf("component: invalid cron for %s#%s: %v", e.Component, e.Task, e.Cause)
}

func (e *CronInvalidError) Unwrap() error {
	return e.Cause
}

// RateLimitedError is raised by the RateLimited policy when it is
// configured to reject rather than wait and no token is available.
type RateLimitedError struct {
	Key string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("component: rate limit exceeded for %q", e.Key)
}
