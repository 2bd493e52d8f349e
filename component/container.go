// Package component implements the framework's core quartet: a
// process-wide registry of named, typed singletons with declarative
// lifecycle hooks (this file), a scoped value carrier (carrier.go),
// cross-cutting invocation policies (cacheable.go, lockable.go,
// conditional.go, steporder.go, catcherror.go, ratelimited.go), and a
// scheduler bound to component lifecycle (scheduler.go), guarded by a
// shutdown supervisor (shutdown.go).
package component

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Record is a registered component: a stable name bound to a class
// identity and an instance.
type Record struct {
	Name         string
	Class        reflect.Type
	Instance     any
	RegisteredAt time.Time
}

// DestroyRecord describes what Destroy tore down.
type DestroyRecord struct {
	Name     string
	Instance any
	Class    reflect.Type
}

type absentSentinel struct{}

// Absent is returned by permissive lookups when no component is
// registered under the requested name.
var Absent = absentSentinel{}

// Container is a process-wide registry of named, typed singletons.
// The zero value is not usable; construct with New.
type Container struct {
	mu          sync.RWMutex
	byName      map[string]*Record
	pinnedNames map[reflect.Type]string
	autoClasses map[reflect.Type]func() (any, error)
	logger      zerolog.Logger
}

// Option configures a Container at construction time.
type Option func(*Container)

// WithLogger attaches a structured logger used for diagnostics that
// have no other way to surface (e.g. a pre-destroy hook failing during
// Destroy). The default is a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

// New creates an empty Container.
func New(opts ...Option) *Container {
	c := &Container{
		byName:      make(map[string]*Record),
		pinnedNames: make(map[reflect.Type]string),
		autoClasses: make(map[reflect.Type]func() (any, error)),
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func reflectedName(class reflect.Type) string {
	t := class
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return class.String()
}

// stableName resolves a component's name by priority: explicit
// argument, then a name already pinned on the class, then the class's
// reflected name.
func (c *Container) stableName(class reflect.Type, explicit string) string {
	if explicit != "" {
		return explicit
	}
	c.mu.RLock()
	pinned, ok := c.pinnedNames[class]
	c.mu.RUnlock()
	if ok {
		return pinned
	}
	return reflectedName(class)
}

// pinName sticks the first name a class is registered under; later
// registrations of the same class reuse it unless given an explicit
// override.
func (c *Container) pinName(class reflect.Type, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pinnedNames[class]; !ok {
		c.pinnedNames[class] = name
	}
}

func (c *Container) register(class reflect.Type, name string, instance any) (*Record, error) {
	c.mu.Lock()
	if _, exists := c.byName[name]; exists {
		c.mu.Unlock()
		return nil, &DuplicateComponentError{Name: name}
	}
	rec := &Record{Name: name, Class: class, Instance: instance, RegisteredAt: time.Now()}
	c.byName[name] = rec
	c.mu.Unlock()

	c.pinName(class, name)
	return rec, nil
}

func (c *Container) unregister(name string) {
	c.mu.Lock()
	delete(c.byName, name)
	c.mu.Unlock()
}

// Destroy removes the component registered under name: it runs
// pre-destroy hooks, then the conventional OnStop directly afterwards,
// and returns a record of what was removed. Destroying a missing name
// is a no-op returning nil; no hook runs.
//
// A hook or OnStop failure is logged and swallowed rather than left
// to abort the call, the same "don't let one bad teardown block the
// rest" posture the shutdown supervisor (shutdown.go) applies across
// components, applied here within a single component's two teardown
// steps.
func (c *Container) Destroy(name string) *DestroyRecord {
	c.mu.Lock()
	rec, ok := c.byName[name]
	if ok {
		delete(c.byName, name)
	}
	c.mu.Unlock()

	if !ok {
		return nil
	}

	if err := runStage(rec.Class, StagePreDestroy, rec.Instance); err != nil {
		c.logger.Error().Err(err).Str("component", name).Str("stage", string(StagePreDestroy)).Msg("lifecycle hook failed")
	}
	if stopper, ok := rec.Instance.(OnStopper); ok {
		if err := stopper.OnStop(); err != nil {
			c.logger.Error().Err(err).Str("component", name).Str("stage", string(StageOnStop)).Msg("lifecycle hook failed")
		}
	}

	return &DestroyRecord{Name: rec.Name, Instance: rec.Instance, Class: rec.Class}
}

// Enumerate lists registered components, optionally filtered. A nil
// filter returns every component.
func (c *Container) Enumerate(filter func(Record) bool) []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Record, 0, len(c.byName))
	for _, rec := range c.byName {
		if filter == nil || filter(*rec) {
			out = append(out, *rec)
		}
	}
	return out
}

// Names returns every registered component's stable name, sorted.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.byName))
	for n := range c.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// LookupByName returns the component registered under name, or
// UnknownComponentError if none exists.
func LookupByName(c *Container, name string) (any, error) {
	c.mu.RLock()
	rec, ok := c.byName[name]
	c.mu.RUnlock()
	if !ok {
		return nil, &UnknownComponentError{Name: name}
	}
	return rec.Instance, nil
}

// LookupByNamePermissive returns the component registered under name,
// or Absent if none exists.
func LookupByNamePermissive(c *Container, name string) any {
	c.mu.RLock()
	rec, ok := c.byName[name]
	c.mu.RUnlock()
	if !ok {
		return Absent
	}
	return rec.Instance
}

// Lookup returns the registered instance of type T by its class's
// pinned (or reflected) stable name, asserting it still satisfies T.
func Lookup[T any](c *Container) (T, error) {
	var zero T
	class := reflect.TypeOf(&zero).Elem()

	c.mu.RLock()
	name, pinned := c.pinnedNames[class]
	c.mu.RUnlock()
	if !pinned {
		name = reflectedName(class)
	}

	c.mu.RLock()
	rec, ok := c.byName[name]
	autoFactory, hasAuto := c.autoClasses[class]
	c.mu.RUnlock()

	if !ok {
		if hasAuto {
			instance, err := autoFactory()
			if err != nil {
				return zero, err
			}
			typed, ok := instance.(T)
			if !ok {
				return zero, &TypeMismatchError{Name: name, Expected: class.String(), Actual: fmt.Sprintf("%T", instance)}
			}
			return typed, nil
		}
		return zero, &UnknownComponentError{Name: name}
	}

	typed, ok := rec.Instance.(T)
	if !ok {
		return zero, &TypeMismatchError{Name: name, Expected: class.String(), Actual: fmt.Sprintf("%T", rec.Instance)}
	}
	return typed, nil
}

// LookupPermissive is the permissive counterpart of Lookup.
func LookupPermissive[T any](c *Container) (T, bool) {
	v, err := Lookup[T](c)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// ComponentOption configures a single AsComponent/AsSingleton
// registration.
type ComponentOption func(*componentConfig)

type componentConfig struct {
	name string
	auto bool
}

// WithName overrides the stable name a component registers under.
func WithName(name string) ComponentOption {
	return func(cfg *componentConfig) { cfg.name = name }
}

// WithAuto marks the class auto-instantiated: the first strict
// Lookup[T] of the class implicitly constructs it.
func WithAuto() ComponentOption {
	return func(cfg *componentConfig) { cfg.auto = true }
}

// ComponentRef is a typed handle to a singleton-scoped component. The
// underlying instance is constructed lazily on the first call to Get.
type ComponentRef[T any] struct {
	container *Container
	class     reflect.Type
	name      string

	mu      sync.Mutex
	factory func() (T, error)
	built   bool
	value   T
	err     error
}

// AsComponent wraps factory so that its first call registers the
// resulting instance under a stable name, runs its lifecycle hooks,
// and caches it; every subsequent Get returns the same instance.
func AsComponent[T any](c *Container, factory func() (T, error), opts ...ComponentOption) *ComponentRef[T] {
	var zero T
	class := reflect.TypeOf(&zero).Elem()

	cfg := &componentConfig{}
	for _, o := range opts {
		o(cfg)
	}

	name := c.stableName(class, cfg.name)
	ref := &ComponentRef[T]{container: c, class: class, name: name, factory: factory}

	if cfg.auto {
		MarkAuto[T](ref)
	}
	return ref
}

// AsSingleton is AsComponent without a name override: the stable name
// comes entirely from the class's pinned or reflected name.
func AsSingleton[T any](c *Container, factory func() (T, error)) *ComponentRef[T] {
	return AsComponent[T](c, factory)
}

// MarkAuto marks ref's class auto-instantiated and returns ref for
// chaining.
func MarkAuto[T any](ref *ComponentRef[T]) *ComponentRef[T] {
	ref.container.mu.Lock()
	ref.container.autoClasses[ref.class] = func() (any, error) { return ref.Get() }
	ref.container.mu.Unlock()
	return ref
}

// Name returns the stable name this component registers under.
func (r *ComponentRef[T]) Name() string { return r.name }

// Class returns the component's class identity.
func (r *ComponentRef[T]) Class() reflect.Type { return r.class }

// Get returns the singleton instance, constructing it on first call.
func (r *ComponentRef[T]) Get() (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.built {
		return r.value, r.err
	}
	r.value, r.err = r.build()
	r.built = true
	return r.value, r.err
}

func (r *ComponentRef[T]) build() (T, error) {
	var zero T
	instance, err := r.factory()
	if err != nil {
		return zero, err
	}

	if _, err := r.container.register(r.class, r.name, instance); err != nil {
		return zero, err
	}

	if err := r.initialize(instance); err != nil {
		r.container.unregister(r.name)
		return zero, err
	}

	return instance, nil
}

func (r *ComponentRef[T]) initialize(instance any) error {
	if err := runStage(r.class, StagePreInit, instance); err != nil {
		return &HookFailureError{Name: r.name, Stage: StagePreInit, Cause: err}
	}
	if oi, ok := instance.(OnIniter); ok {
		if err := oi.OnInit(); err != nil {
			return &HookFailureError{Name: r.name, Stage: StageOnInit, Cause: err}
		}
	}
	if err := runStage(r.class, StagePostInit, instance); err != nil {
		return &HookFailureError{Name: r.name, Stage: StagePostInit, Cause: err}
	}
	sealClass(r.class)
	return nil
}

// Restart destroys the current instance (if any) and constructs a new
// one under the same name with factory, returning both. It does not
// touch any Runner a Scheduler holds under the same name.
func (r *ComponentRef[T]) Restart(factory func() (T, error)) (previous T, next T, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec := r.container.Destroy(r.name); rec != nil {
		previous, _ = rec.Instance.(T)
	}

	r.factory = factory
	r.built = false
	r.value, r.err = r.build()
	r.built = true
	return previous, r.value, r.err
}
