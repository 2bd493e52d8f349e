package extensions

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pumped-fn/kernel/component"
)

// Metrics is a small registry of the counters/histograms this package
// instruments Cacheable, Lockable, and Runner with. Register it with a
// prometheus.Registerer once at process boot.
type Metrics struct {
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	lockWaits     *prometheus.HistogramVec
	lockTimeouts  *prometheus.CounterVec
	taskOutcomes  *prometheus.CounterVec
}

// NewMetrics constructs Metrics and registers its collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "component_cache_hits_total",
			Help: "Cacheable policy hits, labeled by class and method.",
		}, []string{"class", "method"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "component_cache_misses_total",
			Help: "Cacheable policy misses, labeled by class and method.",
		}, []string{"class", "method"}),
		lockWaits: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "component_lock_wait_seconds",
			Help:    "Time spent holding a Lockable-acquired lock before release.",
			Buckets: prometheus.DefBuckets,
		}, []string{"class", "method"}),
		lockTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "component_lock_timeouts_total",
			Help: "Lockable acquisition timeouts, labeled by class and method.",
		}, []string{"class", "method"}),
		taskOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "component_scheduler_task_outcomes_total",
			Help: "Runner task completions, labeled by component, task, and outcome.",
		}, []string{"component", "task", "outcome"}),
	}
	reg.MustRegister(m.cacheHits, m.cacheMisses, m.lockWaits, m.lockTimeouts, m.taskOutcomes)
	return m
}

// CacheOutcome returns OnHit/OnMiss callbacks for a CacheableConfig.
func CacheOutcome[R any](m *Metrics, class, method string) (onHit func(key string, value R), onMiss func(key string, value R)) {
	hits := m.cacheHits.WithLabelValues(class, method)
	misses := m.cacheMisses.WithLabelValues(class, method)
	onHit = func(string, R) { hits.Inc() }
	onMiss = func(string, R) { misses.Inc() }
	return onHit, onMiss
}

// LockOutcome returns OnAcquired/OnReleased/OnTimeout callbacks for a
// LockableConfig; the wait duration is measured between acquisition
// and release.
func LockOutcome(m *Metrics, class, method string) (onAcquired, onReleased func(key string), onTimeout func(key string, opts component.LockOptions)) {
	observe := m.lockWaits.WithLabelValues(class, method)
	timeouts := m.lockTimeouts.WithLabelValues(class, method)

	var acquiredAt time.Time
	onAcquired = func(string) { acquiredAt = time.Now() }
	onReleased = func(string) {
		if !acquiredAt.IsZero() {
			observe.Observe(time.Since(acquiredAt).Seconds())
		}
	}
	onTimeout = func(string, component.LockOptions) { timeouts.Inc() }
	return onAcquired, onReleased, onTimeout
}

// RunnerOutcomes attaches m's task-outcome counter to r's lifecycle
// events.
func RunnerOutcomes(m *Metrics, r *component.Runner) {
	r.OnCompleted(func(componentName, taskName string) {
		m.taskOutcomes.WithLabelValues(componentName, taskName, "completed").Inc()
	})
	r.OnFailed(func(componentName, taskName string, _ error) {
		m.taskOutcomes.WithLabelValues(componentName, taskName, "failed").Inc()
	})
}
