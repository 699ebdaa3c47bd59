package reactive

// Computed is a cached derived value.
//
// The getter runs lazily: a dependency change only marks the value dirty and
// notifies the computed's own subscribers; the getter re-runs on the next Get.
// Any number of reads between two invalidations cost one computation.
type Computed[T any] struct {
	rt     *Runtime
	dep    *Dep
	effect *Effect

	getter func() T
	value  T
	dirty  bool
}

// NewComputed creates a computed value over getter.
func NewComputed[T any](rt *Runtime, getter func() T) *Computed[T] {
	c := &Computed[T]{rt: rt, getter: getter, dirty: true}
	c.effect = rt.newEffect(func() {
		c.value = c.getter()
	})
	c.effect.computed = true
	c.effect.name = "computed"
	c.effect.scheduler = c.invalidate
	return c
}

// invalidate is the effect scheduler: mark dirty once and propagate.
func (c *Computed[T]) invalidate() {
	if c.dirty {
		return
	}
	c.dirty = true
	if c.dep != nil {
		c.rt.TriggerEffects(c.dep)
	}
}

// Get tracks the read and returns the value, recomputing it if dirty.
func (c *Computed[T]) Get() T {
	if c.rt.Tracking() {
		if c.dep == nil {
			c.dep = newDep()
		}
		c.rt.trackDep(c.dep, 0, nil)
	}
	return c.Peek()
}

// Peek returns the value without tracking, recomputing it if dirty.
// A getter that panics leaves the computed dirty.
func (c *Computed[T]) Peek() T {
	if c.dirty {
		c.recompute()
	}
	return c.value
}

func (c *Computed[T]) recompute() {
	c.dirty = false
	done := false
	defer func() {
		if !done {
			c.dirty = true
		}
	}()
	c.effect.Run()
	done = true
}

// Dirty reports whether the next read will recompute.
func (c *Computed[T]) Dirty() bool {
	return c.dirty
}

// Effect returns the backing effect.
func (c *Computed[T]) Effect() *Effect {
	return c.effect
}

// Stop detaches the computed from its dependencies. Its last value stays
// readable; further reads recompute untracked when dirty.
func (c *Computed[T]) Stop() {
	c.effect.Stop()
}
