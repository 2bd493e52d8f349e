// Package component provides the process-wide component container,
// scoped value carrier, cache/lock contracts, cross-cutting
// invocation policies, cron scheduler, and shutdown supervisor that
// make up a backend service's application core.
//
// # Overview
//
// The package is built around four pieces:
//
//  1. Container: a registry of named, typed singletons with
//     declarative lifecycle hooks (PreInit, PostInit, PreDestroy,
//     plus the conventional OnInit/OnStop methods).
//  2. Carrier: a scoped value (Slot/Run/Get/Set) that survives
//     suspension points within one call tree, built on
//     context.Context.
//  3. Policies: function wrappers (Cacheable, Lockable, When,
//     StepOrdered, CatchError, RateLimited) that add cross-cutting
//     behavior around a method body without touching it.
//  4. Scheduler and Supervise: a cron-driven task runner bound to
//     component lifecycle, and a signal-driven shutdown sequence.
//
// # Basic usage
//
// Register a component and fetch its singleton instance:
//
//	c := component.New()
//	svc := component.AsSingleton(c, func() (*Service, error) {
//	    return &Service{}, nil
//	})
//	instance, err := svc.Get()
//
// Bind a scoped value for the extent of a call tree:
//
//	var requestID = component.For[string]("requestID")
//
//	result, err := component.Run(ctx, requestID, uuid.NewString(), func(ctx context.Context) (int, error) {
//	    id, _ := component.Get(ctx, requestID)
//	    return handle(ctx, id)
//	})
//
// Wrap a method with a cache-aside policy:
//
//	lookupUser := component.Cacheable(component.CacheableConfig[string, *User]{
//	    Class:  "UserService",
//	    Method: "Lookup",
//	    Store:  component.FromComponent[component.Cache](c, "Cache"),
//	    KeyArgs: func(id string) []any { return []any{id} },
//	}, svc.lookupUser)
//
// # Policy composition
//
// Policies are plain function wrappers, so they compose by nesting:
//
//	op := component.Lockable(lockCfg, component.Cacheable(cacheCfg, body))
//
// The outermost wrapper runs first; Lockable around Cacheable means
// the lock is held across both the cache check and a miss's
// recomputation, so two callers never fill the same key at once. A
// caller that finds the key held waits only up to lockCfg's Timeout;
// with no Timeout it fails at once with LockTimeoutError.
package component
