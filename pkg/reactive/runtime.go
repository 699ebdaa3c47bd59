package reactive

import (
	"log/slog"
	"sync"
)

// Runtime is the registry that owns all reactive state: the dependency store,
// the active effect, the scheduler and the target→proxy cache.
//
// A Runtime is single-threaded. All reads, writes and flushes must happen on
// the goroutine that drives it.
type Runtime struct {
	deps *DepStore

	// active is the effect whose run is currently executing.
	// nil means reads are not tracked.
	active *Effect

	scheduler *Scheduler

	// proxies caches the wrapper of each target map (identity-preserving).
	proxies map[uintptr]*Reactive

	logger   *slog.Logger
	observer Observer
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithObserver installs an observer for runtime events (metrics).
func WithObserver(o Observer) RuntimeOption {
	return func(rt *Runtime) {
		rt.observer = o
	}
}

// WithDeferrer sets the primitive used to schedule deferred flushes.
func WithDeferrer(d Deferrer) RuntimeOption {
	return func(rt *Runtime) {
		rt.scheduler.deferrer = d
	}
}

// WithMaxFlushPasses bounds how many times Flush re-drains jobs queued by
// jobs of the same flush before giving up.
func WithMaxFlushPasses(n int) RuntimeOption {
	return func(rt *Runtime) {
		if n > 0 {
			rt.scheduler.maxPasses = n
		}
	}
}

// NewRuntime creates a Runtime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		deps:     newDepStore(),
		proxies:  make(map[uintptr]*Reactive),
		logger:   slog.Default().With("component", "reactive"),
		observer: nopObserver{},
	}
	rt.scheduler = newScheduler(rt)
	for _, opt := range opts {
		opt(rt)
	}
	if rt.observer == nil {
		rt.observer = nopObserver{}
	}
	return rt
}

var (
	defaultRuntime     *Runtime
	defaultRuntimeOnce sync.Once
)

// Default returns the process-wide runtime, creating it on first use.
func Default() *Runtime {
	defaultRuntimeOnce.Do(func() {
		defaultRuntime = NewRuntime()
	})
	return defaultRuntime
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Scheduler returns the runtime flush queue.
func (rt *Runtime) Scheduler() *Scheduler {
	return rt.scheduler
}

// Deps exposes the dependency store (read-only use).
func (rt *Runtime) Deps() *DepStore {
	return rt.deps
}

// ActiveEffect returns the effect currently running, or nil.
func (rt *Runtime) ActiveEffect() *Effect {
	return rt.active
}

// Tracking reports whether reads are currently being tracked.
func (rt *Runtime) Tracking() bool {
	return rt.active != nil
}

// Flush drains the scheduler synchronously.
func (rt *Runtime) Flush() {
	rt.scheduler.Flush()
}

// Untracked runs fn with tracking disabled.
func (rt *Runtime) Untracked(fn func()) {
	prev := rt.active
	rt.active = nil
	defer func() { rt.active = prev }()
	fn()
}

// Track records that the active effect reads key of target.
// It is a no-op when no effect is active.
func (rt *Runtime) Track(target uint64, key any) {
	if rt.active == nil {
		return
	}
	dep := rt.deps.ensure(target, key)
	rt.trackDep(dep, target, key)
}

// trackDep subscribes the active effect to dep.
func (rt *Runtime) trackDep(dep *Dep, target uint64, key any) {
	e := rt.active
	if e == nil {
		return
	}
	if dep.add(e) {
		e.deps = append(e.deps, depLink{dep: dep, target: target, key: key})
	}
}

// Trigger notifies every effect subscribed to key of target.
// Absent entries mean there are no subscribers.
func (rt *Runtime) Trigger(target uint64, key any, newValue any) {
	dep := rt.deps.Lookup(target, key)
	if dep == nil {
		return
	}
	rt.logger.Debug("trigger", "target", target, "key", key, "subscribers", dep.Len())
	rt.TriggerEffects(dep)
}

// TriggerEffects notifies the subscribers of dep. Computed effects are
// notified first so that derived values are marked dirty before any eager
// effect can read them.
func (rt *Runtime) TriggerEffects(dep *Dep) {
	subs := dep.Subscribers()
	if len(subs) == 0 {
		return
	}
	for _, e := range subs {
		if e.computed {
			rt.TriggerEffect(e)
		}
	}
	for _, e := range subs {
		if !e.computed {
			rt.TriggerEffect(e)
		}
	}
}

// TriggerEffect hands e to its scheduler, or runs it synchronously if it has
// none. The active effect is never re-triggered by its own writes.
func (rt *Runtime) TriggerEffect(e *Effect) {
	if e == rt.active {
		return
	}
	if e.scheduler != nil {
		e.scheduler()
		return
	}
	e.Run()
}

// Dispose forgets a reactive target: its dependency entries and its cached
// proxy are dropped. Effects still holding links to the removed sets simply
// stop being notified.
func (rt *Runtime) Dispose(r *Reactive) {
	if r == nil {
		return
	}
	rt.deps.drop(r.id)
	if key, ok := mapIdentity(r.target); ok {
		if cached, ok := rt.proxies[key]; ok && cached == r {
			delete(rt.proxies, key)
		}
	}
}
