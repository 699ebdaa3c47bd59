package reactive

// depLink records one subscription so it can be undone.
type depLink struct {
	dep    *Dep
	target uint64
	key    any
}

// Effect is a tracked computation. While Run executes, the effect is the
// runtime's active effect and every reactive read subscribes it.
//
// An Effect with a scheduler is never re-run directly by a write; the
// scheduler decides when (typically by queueing a job).
type Effect struct {
	id uint64
	rt *Runtime

	fn        func()
	scheduler func()
	onStop    func()
	name      string

	// computed marks the backing effect of a Computed. Computed effects are
	// notified before eager ones.
	computed bool

	// deps are the subscriptions made during the most recent run.
	deps []depLink

	// parent is the effect that was active when this one started running.
	parent *Effect

	stopped bool
	running bool
}

// EffectOption configures an Effect.
type EffectOption interface {
	applyEffect(e *Effect)
}

type effectOptionFunc func(*Effect)

func (f effectOptionFunc) applyEffect(e *Effect) { f(e) }

// WithScheduler routes triggers to fn instead of running the effect.
func WithScheduler(fn func()) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.scheduler = fn
	})
}

// OnStop registers a callback invoked once when the effect is stopped.
func OnStop(fn func()) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.onStop = fn
	})
}

// EffectName names the effect in logs and metrics.
func EffectName(name string) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.name = name
	})
}

type lazyOption struct{}

func (lazyOption) applyEffect(*Effect) {}

// Lazy prevents NewEffect from running the effect immediately.
func Lazy() EffectOption {
	return lazyOption{}
}

// NewEffect creates an effect over fn and runs it once unless Lazy is given.
func (rt *Runtime) NewEffect(fn func(), opts ...EffectOption) *Effect {
	e := rt.newEffect(fn)
	lazy := false
	for _, opt := range opts {
		if _, ok := opt.(lazyOption); ok {
			lazy = true
			continue
		}
		opt.applyEffect(e)
	}
	if !lazy {
		e.Run()
	}
	return e
}

func (rt *Runtime) newEffect(fn func()) *Effect {
	return &Effect{
		id:   nextID(),
		rt:   rt,
		fn:   fn,
		name: "effect",
	}
}

// ID returns the effect identity. Implements Job.
func (e *Effect) ID() uint64 {
	return e.id
}

// Name returns the effect name.
func (e *Effect) Name() string {
	return e.name
}

// Active reports whether the effect has not been stopped.
func (e *Effect) Active() bool {
	return !e.stopped
}

// IsComputed reports whether this effect backs a Computed.
func (e *Effect) IsComputed() bool {
	return e.computed
}

// Deps returns the number of dependency sets the effect currently belongs to.
func (e *Effect) Deps() int {
	return len(e.deps)
}

// Run executes the effect body with tracking enabled. Subscriptions from the
// previous run are dropped first, so the effect ends up subscribed exactly to
// what this run reads. A stopped effect runs its body untracked.
// Run implements Job.
func (e *Effect) Run() {
	rt := e.rt
	if e.stopped {
		rt.Untracked(e.fn)
		return
	}
	// A direct re-entrant run of an effect already on the stack would
	// recurse without bound.
	if e.running {
		rt.logger.Warn("recursive effect run skipped", "effect", e.name, "id", e.id)
		return
	}

	e.cleanupDeps()

	e.parent = rt.active
	rt.active = e
	e.running = true
	defer func() {
		rt.active = e.parent
		e.parent = nil
		e.running = false
	}()

	rt.observer.EffectRun(e.name, e.computed)
	e.fn()
}

// Stop detaches the effect from every dependency set. Later triggers no
// longer reach it; jobs already queued for it still run.
func (e *Effect) Stop() {
	if e.stopped {
		return
	}
	e.cleanupDeps()
	e.stopped = true
	if e.onStop != nil {
		e.onStop()
	}
}

// cleanupDeps removes the effect from all sets it joined.
func (e *Effect) cleanupDeps() {
	for _, link := range e.deps {
		link.dep.remove(e)
		if link.target != 0 {
			e.rt.deps.prune(link.target, link.key)
		}
	}
	e.deps = e.deps[:0]
}
