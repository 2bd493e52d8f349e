package component

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSuperviseTearsDownAndExitsOnSignal(t *testing.T) {
	c := New()
	ref := AsSingleton(c, func() (*widget, error) { return &widget{}, nil })
	if _, err := ref.Get(); err != nil {
		t.Fatalf("Get: %v", err)
	}

	exited := make(chan int, 1)
	go Supervise(context.Background(), c, nil, ShutdownOptions{
		PollInterval: 5 * time.Millisecond,
		HardDeadline: time.Second,
		Signals:      []os.Signal{syscall.SIGUSR1},
		Exit:         func(code int) { exited <- code },
	})

	time.Sleep(20 * time.Millisecond)
	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("Kill: %v", err)
	}

	select {
	case code := <-exited:
		if code != 0 {
			t.Fatalf("exit code = %d, want 0", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Supervise never exited")
	}

	if len(c.Names()) != 0 {
		t.Fatalf("expected all components destroyed after shutdown")
	}
}

func TestSuperviseHardDeadlineForcesExit(t *testing.T) {
	c := New()
	work := &WorkTracker{}
	work.Add(1) // never completed, so quiescence never holds

	exited := make(chan int, 1)
	go Supervise(context.Background(), c, work, ShutdownOptions{
		PollInterval: 5 * time.Millisecond,
		HardDeadline: 30 * time.Millisecond,
		Signals:      []os.Signal{syscall.SIGUSR2},
		Exit:         func(code int) { exited <- code },
	})

	time.Sleep(20 * time.Millisecond)
	if err := syscall.Kill(os.Getpid(), syscall.SIGUSR2); err != nil {
		t.Fatalf("Kill: %v", err)
	}

	select {
	case code := <-exited:
		if code != 1 {
			t.Fatalf("exit code = %d, want 1 (hard deadline reached)", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Supervise never exited")
	}
}

func TestSuperviseCtxCancelReturnsWithoutExit(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan struct{})
	exitCalled := false

	go func() {
		Supervise(ctx, c, nil, ShutdownOptions{
			Signals: []os.Signal{syscall.SIGUSR1},
			Exit:    func(code int) { exitCalled = true },
		})
		close(returned)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatalf("Supervise did not return after ctx cancellation")
	}
	if exitCalled {
		t.Fatalf("Exit should not be called when returning via ctx cancellation")
	}
}

func TestWorkTrackerAddDone(t *testing.T) {
	w := &WorkTracker{}
	w.Add(3)
	if w.Pending() != 3 {
		t.Fatalf("Pending() = %d, want 3", w.Pending())
	}
	w.Done()
	w.Done()
	if w.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", w.Pending())
	}
}

type panickyWidget struct{}

func (p *panickyWidget) OnStop() error { panic("boom") }

func TestTeardownPanicIsContained(t *testing.T) {
	c := New()
	ref := AsComponent(c, func() (*panickyWidget, error) { return &panickyWidget{}, nil }, WithName("panicky"))
	if _, err := ref.Get(); err != nil {
		t.Fatalf("Get: %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("teardown panic leaked out of the helper: %v", r)
		}
	}()
	teardown(c, "panicky", zerolog.Nop())
}
