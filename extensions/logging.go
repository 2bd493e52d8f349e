// Package extensions holds optional, standalone instrumentation for
// the component package's Runner and policy wrappers: nothing in
// component imports this package, so wiring an extension is always
// opt-in at the call site that builds a Runner, Cacheable, or
// Lockable wrapper.
package extensions

import (
	"github.com/rs/zerolog"

	"github.com/pumped-fn/kernel/component"
)

// LogRunnerEvents attaches logger to the started, completed, failed,
// and stopped events r emits, one structured line per event with
// component/task fields. The run event is not logged.
func LogRunnerEvents(r *component.Runner, logger zerolog.Logger) {
	r.OnStarted(func(componentName, taskName string) {
		logger.Info().Str("component", componentName).Str("task", taskName).Msg("task started")
	})
	r.OnCompleted(func(componentName, taskName string) {
		logger.Info().Str("component", componentName).Str("task", taskName).Msg("task completed")
	})
	r.OnFailed(func(componentName, taskName string, err error) {
		logger.Error().Err(err).Str("component", componentName).Str("task", taskName).Msg("task failed")
	})
	r.OnStopped(func(componentName, taskName string) {
		logger.Info().Str("component", componentName).Str("task", taskName).Msg("task stopped")
	})
}

// LogCacheOutcome returns OnHit/OnMiss callbacks for a CacheableConfig
// that log at debug level, cheap enough to leave wired in production.
func LogCacheOutcome[R any](logger zerolog.Logger, class, method string) (onHit func(key string, value R), onMiss func(key string, value R)) {
	onHit = func(key string, _ R) {
		logger.Debug().Str("class", class).Str("method", method).Str("key", key).Msg("cache hit")
	}
	onMiss = func(key string, _ R) {
		logger.Debug().Str("class", class).Str("method", method).Str("key", key).Msg("cache miss")
	}
	return onHit, onMiss
}

// LogLockOutcome returns OnAcquired/OnReleased/OnTimeout callbacks for
// a LockableConfig.
func LogLockOutcome(logger zerolog.Logger, class, method string) (onAcquired, onReleased func(key string), onTimeout func(key string, opts component.LockOptions)) {
	onAcquired = func(key string) {
		logger.Debug().Str("class", class).Str("method", method).Str("key", key).Msg("lock acquired")
	}
	onReleased = func(key string) {
		logger.Debug().Str("class", class).Str("method", method).Str("key", key).Msg("lock released")
	}
	onTimeout = func(key string, opts component.LockOptions) {
		logger.Warn().Str("class", class).Str("method", method).Str("key", key).Dur("timeout", opts.Timeout).Msg("lock timeout")
	}
	return onAcquired, onReleased, onTimeout
}
