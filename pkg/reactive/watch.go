package reactive

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	immediate bool
	deep      bool
}

// Immediate runs the callback once right away with the zero value as old.
func Immediate() WatchOption {
	return func(c *watchConfig) { c.immediate = true }
}

// Deep makes the watcher depend on every nested field of a reactive source
// value and fire on any nested change.
func Deep() WatchOption {
	return func(c *watchConfig) { c.deep = true }
}

// Watch observes source and calls cb(new, old) through the scheduler after
// the values it read change. Without Deep, cb only fires when the new value
// differs from the old one. The returned function stops the watcher.
func Watch[T any](rt *Runtime, source func() T, cb func(newValue, oldValue T), opts ...WatchOption) (stop func()) {
	var cfg watchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	getter := source
	if cfg.deep {
		getter = func() T {
			v := source()
			traverse(any(v), make(map[uint64]bool))
			return v
		}
	}

	var (
		current  T
		oldValue T
		effect   *Effect
	)
	job := NewJob(func() {
		if !effect.Active() {
			return
		}
		effect.Run()
		if cfg.deep || !SameValue(any(current), any(oldValue)) {
			cb(current, oldValue)
			oldValue = current
		}
	})
	effect = rt.NewEffect(func() {
		current = getter()
	}, Lazy(), EffectName("watch"), WithScheduler(func() {
		rt.scheduler.Queue(job)
	}))

	effect.Run()
	if cfg.immediate {
		cb(current, oldValue)
	}
	oldValue = current

	return effect.Stop
}

// WatchReactive deeply watches every field of r.
func WatchReactive(r *Reactive, cb func(r *Reactive), opts ...WatchOption) (stop func()) {
	return Watch(r.rt, func() *Reactive { return r }, func(n, _ *Reactive) {
		cb(n)
	}, append(opts, Deep())...)
}

// traverse reads every field reachable from v so that each is tracked.
func traverse(v any, seen map[uint64]bool) {
	r, ok := v.(*Reactive)
	if !ok || seen[r.id] {
		return
	}
	seen[r.id] = true
	for _, key := range r.Keys() {
		traverse(r.Get(key), seen)
	}
}
