package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// TaskEvent names the lifecycle events a Runner's tasks emit.
type TaskEvent string

const (
	EventStarted   TaskEvent = "started"
	EventCompleted TaskEvent = "completed"
	EventFailed    TaskEvent = "failed"
	EventRun       TaskEvent = "run"
	EventStopped   TaskEvent = "stopped"
)

// TaskHandler is a Runner task's body.
type TaskHandler func(ctx context.Context) error

// CronSource resolves a task's cron expression, given its canonical
// key (<component-name>#<method-name>), possibly by awaiting an
// external store.
type CronSource func(ctx context.Context, key string) (string, error)

// LiteralCron adapts a fixed cron expression into a CronSource.
func LiteralCron(expr string) CronSource {
	return func(context.Context, string) (string, error) { return expr, nil }
}

// TaskSpec declares one cron-scheduled task on a Runner.
type TaskSpec struct {
	Name       string
	Cron       CronSource
	Handler    TaskHandler
	SingleShot bool
}

type taskState struct {
	mu      sync.Mutex
	spec    TaskSpec
	key     string
	expr    string
	entryID cron.EntryID
	stopped bool
}

// EventHandler receives a Runner event. args carries event-specific
// payload: EventFailed's args[0] is the error, and every event a
// firing emits (started, completed, failed, run) carries the firing's
// run ID (a fresh uuid.New().String() per fire) as its final arg.
// EventStopped carries no args.
type EventHandler func(componentName, taskName string, args ...any)

// Runner binds a component's declared tasks to a cron scheduler.
// Construct with NewRunner, add tasks with AddTask, then Start.
type Runner struct {
	mu        sync.Mutex
	component string
	tasks     map[string]*taskState
	order     []string
	handlers  map[TaskEvent][]EventHandler
	cron      *cron.Cron
	errSink   func(componentName, taskName string, err error)
}

// NewRunner constructs a Runner for component. errSink receives every
// task handler failure alongside (component-name, task-name); nil
// means failures are only visible via the failed event.
func NewRunner(component string, errSink func(componentName, taskName string, err error)) *Runner {
	if errSink == nil {
		errSink = func(string, string, error) {}
	}
	return &Runner{
		component: component,
		tasks:     make(map[string]*taskState),
		handlers:  make(map[TaskEvent][]EventHandler),
		cron:      cron.New(),
		errSink:   errSink,
	}
}

// On registers handler for event.
func (r *Runner) On(event TaskEvent, handler EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[event] = append(r.handlers[event], handler)
}

// Emit fires event for taskName to every registered handler.
func (r *Runner) Emit(event TaskEvent, taskName string, args ...any) {
	r.mu.Lock()
	handlers := append([]EventHandler(nil), r.handlers[event]...)
	r.mu.Unlock()
	for _, h := range handlers {
		h(r.component, taskName, args...)
	}
}

// OnStarted, OnCompleted, OnFailed, OnRun, and OnStopped are typed
// convenience wrappers over On for the onStarted/onCompleted/onFailed/
// onRun/onStopped observer set.
func (r *Runner) OnStarted(h func(componentName, taskName string)) {
	r.On(EventStarted, func(c, t string, _ ...any) { h(c, t) })
}

func (r *Runner) OnCompleted(h func(componentName, taskName string)) {
	r.On(EventCompleted, func(c, t string, _ ...any) { h(c, t) })
}

func (r *Runner) OnFailed(h func(componentName, taskName string, err error)) {
	r.On(EventFailed, func(c, t string, args ...any) {
		if len(args) > 0 {
			if err, ok := args[0].(error); ok {
				h(c, t, err)
			}
		}
	})
}

func (r *Runner) OnRun(h func(componentName, taskName string)) {
	r.On(EventRun, func(c, t string, _ ...any) { h(c, t) })
}

func (r *Runner) OnStopped(h func(componentName, taskName string)) {
	r.On(EventStopped, func(c, t string, _ ...any) { h(c, t) })
}

// AddTask resolves spec.Cron and registers its timer. A resolution or
// parse failure returns CronInvalidError without affecting any other
// task already added.
func (r *Runner) AddTask(ctx context.Context, spec TaskSpec) error {
	key := fmt.Sprintf("%s#%s", r.component, spec.Name)

	expr, err := spec.Cron(ctx, key)
	if err != nil {
		return &CronInvalidError{Component: r.component, Task: spec.Name, Cause: err}
	}

	state := &taskState{spec: spec, key: key, expr: expr}

	entryID, err := r.cron.AddFunc(expr, func() { r.fire(state) })
	if err != nil {
		return &CronInvalidError{Component: r.component, Task: spec.Name, Cause: err}
	}
	state.entryID = entryID

	r.mu.Lock()
	r.tasks[spec.Name] = state
	r.order = append(r.order, spec.Name)
	r.mu.Unlock()
	return nil
}

// FirstTask returns the name of the earliest-added task still
// registered on r, and false if r has none.
func (r *Runner) FirstTask() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range r.order {
		if _, ok := r.tasks[name]; ok {
			return name, true
		}
	}
	return "", false
}

func (r *Runner) fire(state *taskState) {
	state.mu.Lock()
	if state.stopped {
		state.mu.Unlock()
		return
	}
	state.mu.Unlock()

	runID := uuid.New().String()

	r.Emit(EventStarted, state.spec.Name, runID)
	err := state.spec.Handler(context.Background())
	if err != nil {
		r.Emit(EventFailed, state.spec.Name, err, runID)
		r.errSink(r.component, state.spec.Name, err)
	} else {
		r.Emit(EventCompleted, state.spec.Name, runID)
	}
	r.Emit(EventRun, state.spec.Name, runID)

	if state.spec.SingleShot && err == nil {
		r.StopTask(state.spec.Name)
	}
}

// Start begins firing every added task on its schedule.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cron.Start()
}

// Trigger fires name immediately, outside its schedule, without
// waiting for completion.
func (r *Runner) Trigger(name string) error {
	r.mu.Lock()
	state, ok := r.tasks[name]
	r.mu.Unlock()
	if !ok {
		return &UnknownComponentError{Name: name}
	}
	go r.fire(state)
	return nil
}

// StopTask stops name's timer and emits stopped for it. Stopping an
// already-stopped or unknown task is a no-op reporting false.
func (r *Runner) StopTask(name string) bool {
	r.mu.Lock()
	state, ok := r.tasks[name]
	r.mu.Unlock()
	if !ok {
		return false
	}

	state.mu.Lock()
	if state.stopped {
		state.mu.Unlock()
		return false
	}
	state.stopped = true
	state.mu.Unlock()

	r.cron.Remove(state.entryID)
	r.Emit(EventStopped, name)
	return true
}

// RestartTask re-arms name on its original cron expression, undoing a
// prior StopTask (or a completed SingleShot). Restarting an unknown or
// already-running task is a no-op reporting false.
func (r *Runner) RestartTask(name string) bool {
	r.mu.Lock()
	state, ok := r.tasks[name]
	r.mu.Unlock()
	if !ok {
		return false
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if !state.stopped {
		return false
	}

	entryID, err := r.cron.AddFunc(state.expr, func() { r.fire(state) })
	if err != nil {
		return false
	}
	state.entryID = entryID
	state.stopped = false
	return true
}

// Restart re-arms every task on r, including ones stopped by a prior
// StopTask or Stop.
func (r *Runner) Restart() {
	r.mu.Lock()
	names := make([]string, 0, len(r.tasks))
	for n := range r.tasks {
		names = append(names, n)
	}
	r.mu.Unlock()

	r.cron.Start()
	for _, n := range names {
		r.RestartTask(n)
	}
}

// Stop stops every task and the underlying cron scheduler.
func (r *Runner) Stop() {
	r.mu.Lock()
	names := make([]string, 0, len(r.tasks))
	for n := range r.tasks {
		names = append(names, n)
	}
	r.mu.Unlock()

	for _, n := range names {
		r.StopTask(n)
	}
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// TaskInfo describes one task for enumeration.
type TaskInfo struct {
	Name string
	Cron string
}

// Tasks lists every task currently registered on r.
func (r *Runner) Tasks() []TaskInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TaskInfo, 0, len(r.tasks))
	for _, name := range r.order {
		if s, ok := r.tasks[name]; ok {
			out = append(out, TaskInfo{Name: s.spec.Name, Cron: s.expr})
		}
	}
	return out
}

// Scheduler owns every Runner bound to components registered in a
// Container, and is the collaborator behind the admin boundary's
// scheduler management operations.
type Scheduler struct {
	mu        sync.Mutex
	container *Container
	runners   map[string]*Runner
}

// NewScheduler constructs a Scheduler bound to c. Destroying a
// Runner-backed component through the Scheduler also stops its
// Runner; destroying it directly through c does not, so components
// with tasks should always be torn down via Scheduler.Destroy.
func NewScheduler(c *Container) *Scheduler {
	return &Scheduler{container: c, runners: make(map[string]*Runner)}
}

// Register constructs, populates, and starts a Runner for
// componentName, skipping any task whose cron fails to resolve or
// parse (reported to errSink) rather than aborting the whole Runner.
func (s *Scheduler) Register(ctx context.Context, componentName string, errSink func(componentName, taskName string, err error), specs ...TaskSpec) *Runner {
	runner := NewRunner(componentName, errSink)
	for _, spec := range specs {
		if err := runner.AddTask(ctx, spec); err != nil {
			if errSink != nil {
				errSink(componentName, spec.Name, err)
			}
			continue
		}
	}
	runner.Start()

	s.mu.Lock()
	s.runners[componentName] = runner
	s.mu.Unlock()
	return runner
}

// Runner returns the Runner bound to componentName, if any.
func (s *Scheduler) Runner(componentName string) (*Runner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runners[componentName]
	return r, ok
}

// Enumerate lists every Runner's tasks, keyed by component name.
func (s *Scheduler) Enumerate() map[string][]TaskInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]TaskInfo, len(s.runners))
	for name, r := range s.runners {
		out[name] = r.Tasks()
	}
	return out
}

// Trigger fires componentName's taskName immediately.
func (s *Scheduler) Trigger(componentName, taskName string) error {
	r, ok := s.Runner(componentName)
	if !ok {
		return &UnknownComponentError{Name: componentName}
	}
	return r.Trigger(taskName)
}

// TriggerFirst fires componentName's earliest-added task immediately,
// the Runner-wide trigger the admin surface's POST /_job/:name exposes.
func (s *Scheduler) TriggerFirst(componentName string) error {
	r, ok := s.Runner(componentName)
	if !ok {
		return &UnknownComponentError{Name: componentName}
	}
	name, ok := r.FirstTask()
	if !ok {
		return &UnknownComponentError{Name: componentName}
	}
	return r.Trigger(name)
}

// StopTask stops one task on componentName's Runner.
func (s *Scheduler) StopTask(componentName, taskName string) error {
	r, ok := s.Runner(componentName)
	if !ok {
		return &UnknownComponentError{Name: componentName}
	}
	if !r.StopTask(taskName) {
		return &UnknownComponentError{Name: taskName}
	}
	return nil
}

// RestartRunner re-arms every task on componentName's Runner.
func (s *Scheduler) RestartRunner(componentName string) error {
	r, ok := s.Runner(componentName)
	if !ok {
		return &UnknownComponentError{Name: componentName}
	}
	r.Restart()
	return nil
}

// StopRunner stops every task on componentName's Runner without
// removing the component from the container.
func (s *Scheduler) StopRunner(componentName string) error {
	r, ok := s.Runner(componentName)
	if !ok {
		return &UnknownComponentError{Name: componentName}
	}
	r.Stop()
	return nil
}

// Destroy stops componentName's Runner and removes the component from
// the container.
func (s *Scheduler) Destroy(componentName string) *DestroyRecord {
	s.mu.Lock()
	r, ok := s.runners[componentName]
	if ok {
		delete(s.runners, componentName)
	}
	s.mu.Unlock()

	if ok {
		r.Stop()
	}
	return s.container.Destroy(componentName)
}
