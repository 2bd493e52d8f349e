package component

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// WorkTracker lets components register outstanding asynchronous work
// so Supervise's quiescence check can see it. A component whose
// OnStop hook spawns background teardown work should Add before
// spawning it and Done when it completes.
type WorkTracker struct {
	n int64
}

// Add adjusts the pending-work count by delta.
func (w *WorkTracker) Add(delta int) { atomic.AddInt64(&w.n, int64(delta)) }

// Done is shorthand for Add(-1).
func (w *WorkTracker) Done() { atomic.AddInt64(&w.n, -1) }

// Pending reports the current outstanding-work count.
func (w *WorkTracker) Pending() int64 { return atomic.LoadInt64(&w.n) }

// ShutdownOptions configures Supervise.
type ShutdownOptions struct {
	// PollInterval is how often quiescence is checked after teardown
	// is dispatched. Default 100ms.
	PollInterval time.Duration
	// HardDeadline forces an exit regardless of quiescence. Default
	// 20s.
	HardDeadline time.Duration
	// Signals are the OS signals that trigger shutdown. Default
	// SIGINT and SIGTERM.
	Signals []os.Signal
	Logger  zerolog.Logger
	// Exit is called with the final process exit code. Default
	// os.Exit; tests substitute a recording stub instead of ending
	// the test binary.
	Exit func(code int)
}

// Supervise installs the shutdown supervisor. It blocks until one of
// opts.Signals arrives (or ctx is canceled, which returns without
// exiting, for tests), then destroys every component currently in c,
// polls until the registry is empty and work reports no pending
// items, and calls opts.Exit(0), or opts.Exit(1) if opts.HardDeadline
// elapses first.
func Supervise(ctx context.Context, c *Container, work *WorkTracker, opts ShutdownOptions) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.HardDeadline <= 0 {
		opts.HardDeadline = 20 * time.Second
	}
	if len(opts.Signals) == 0 {
		opts.Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}
	if work == nil {
		work = &WorkTracker{}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, opts.Signals...)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
	case <-ctx.Done():
		return
	}

	opts.Logger.Info().Msg("shutdown: signal received, tearing down components")

	for _, name := range c.Names() {
		teardown(c, name, opts.Logger)
	}

	deadline := time.After(opts.HardDeadline)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			opts.Logger.Warn().Msg("shutdown: hard deadline reached, forcing exit")
			opts.Exit(1)
			return
		case <-ticker.C:
			if len(c.Names()) == 0 && work.Pending() == 0 {
				opts.Logger.Info().Msg("shutdown: quiescent, exiting")
				opts.Exit(0)
				return
			}
		}
	}
}

// teardown destroys name, containing a panic so one component's
// broken onStop never aborts the rest of the shutdown loop. Same
// posture Container.Destroy already takes for plain hook errors.
func teardown(c *Container, name string, logger zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("component", name).Msg("shutdown: teardown panicked")
		}
	}()
	c.Destroy(name)
}
