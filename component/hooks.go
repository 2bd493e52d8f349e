package component

import (
	"reflect"

	"github.com/pumped-fn/kernel/pkg/meta"
)

// Stage identifies a lifecycle stage a hook runs at.
type Stage string

const (
	StagePreInit    Stage = "pre-init"
	StagePostInit   Stage = "post-init"
	StagePreDestroy Stage = "pre-destroy"

	// StageOnInit and StageOnStop never key the hook table: StageOnInit
	// tags a HookFailureError when the conventional OnInit method
	// failed, and StageOnStop tags the log line Container.Destroy
	// writes when OnStop failed.
	StageOnInit Stage = "onInit"
	StageOnStop Stage = "onStop"
)

func (s Stage) String() string { return string(s) }

// hookFn is a zero-argument method run without a receiver binding: it
// receives the instance as an opaque value so a free function can
// close over whatever state it needs.
type hookFn func(instance any) error

var hookTable = meta.New()

// AddHook registers an additional hook for class at the given stage.
// Hooks run in registration order within a stage; a hook added via
// AddHook runs before the class's own interface-implemented hook for
// that stage, covering the uncommon case of multiple hooks at the
// same stage.
//
// AddHook must be called before the class's first component is
// constructed. The table seals on first use: a class's hook set is
// established at declaration time and immutable thereafter.
func AddHook(class reflect.Type, stage Stage, fn func(instance any) error) error {
	return hookTable.Add(class, string(stage), hookFn(fn))
}

// PreIniter is implemented by components that need work done after
// the base constructor returns but before OnIniter.OnInit. The work
// must not observe "this" in any partially-initialized way.
type PreIniter interface {
	PreInit() error
}

// PostIniter is implemented by components that need work done after
// OnIniter.OnInit.
type PostIniter interface {
	PostInit() error
}

// PreDestroyer is implemented by components that need work done
// before the conventional OnStop.
type PreDestroyer interface {
	PreDestroy() error
}

// OnIniter is the conventional initialization hook: it runs after all
// pre-init hooks and before all post-init hooks.
type OnIniter interface {
	OnInit() error
}

// OnStopper is the conventional teardown hook: the registry invokes it
// directly after all pre-destroy hooks have run.
type OnStopper interface {
	OnStop() error
}

func stageHooks(class reflect.Type, stage Stage) []hookFn {
	raw := hookTable.Get(class, string(stage))
	out := make([]hookFn, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.(hookFn))
	}
	return out
}

// runStage executes the additive hooks for (class, stage) in order,
// followed by the instance's own interface-implemented hook for that
// stage if present. It stops at the first error.
func runStage(class reflect.Type, stage Stage, instance any) error {
	for _, h := range stageHooks(class, stage) {
		if err := h(instance); err != nil {
			return err
		}
	}

	switch stage {
	case StagePreInit:
		if pi, ok := instance.(PreIniter); ok {
			return pi.PreInit()
		}
	case StagePostInit:
		if pi, ok := instance.(PostIniter); ok {
			return pi.PostInit()
		}
	case StagePreDestroy:
		if pd, ok := instance.(PreDestroyer); ok {
			return pd.PreDestroy()
		}
	}
	return nil
}

func sealClass(class reflect.Type) {
	hookTable.Seal(class)
}
