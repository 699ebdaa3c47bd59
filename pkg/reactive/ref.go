package reactive

// Ref is a single reactive value cell.
//
// Reading Get inside an effect subscribes the effect; Set notifies the
// subscribers only when the new raw value differs from the stored one.
// For deep refs, Object values are additionally exposed through a Reactive
// wrapper (see Proxy) so that field mutations are tracked too.
type Ref[T any] struct {
	rt  *Runtime
	dep *Dep

	raw   T
	proxy *Reactive

	shallow bool
	equal   func(a, b T) bool
}

// NewRef creates a deep ref holding value.
func NewRef[T any](rt *Runtime, value T) *Ref[T] {
	r := &Ref[T]{rt: rt}
	r.store(value)
	return r
}

// NewShallowRef creates a ref whose Object values are not wrapped.
func NewShallowRef[T any](rt *Runtime, value T) *Ref[T] {
	r := &Ref[T]{rt: rt, shallow: true}
	r.store(value)
	return r
}

// Get returns the value and tracks the read.
func (r *Ref[T]) Get() T {
	r.track()
	return r.raw
}

// Peek returns the value without tracking.
func (r *Ref[T]) Peek() T {
	return r.raw
}

// Proxy returns the reactive wrapper of an Object value, tracking the read.
// It returns nil for shallow refs and non-object values.
func (r *Ref[T]) Proxy() *Reactive {
	r.track()
	return r.proxy
}

// Set stores value and notifies subscribers if it differs from the current
// raw value. A reactive wrapper is unwrapped first, so setting a ref to its
// own Proxy is a no-op.
func (r *Ref[T]) Set(value T) {
	value = unwrapRaw(value)
	if r.equals(r.raw, value) {
		return
	}
	r.store(value)
	r.trigger()
}

// Update replaces the value with fn(current).
func (r *Ref[T]) Update(fn func(T) T) {
	r.Set(fn(r.raw))
}

// WithEquals sets a custom change-detection function.
func (r *Ref[T]) WithEquals(fn func(a, b T) bool) *Ref[T] {
	r.equal = fn
	return r
}

// Subscribers returns the number of effects currently reading the ref.
func (r *Ref[T]) Subscribers() int {
	return r.dep.Len()
}

func (r *Ref[T]) store(value T) {
	r.raw = unwrapRaw(value)
	r.proxy = nil
	if r.shallow {
		return
	}
	if w, ok := r.rt.ToReactive(any(r.raw)).(*Reactive); ok {
		r.proxy = w
	}
}

// unwrapRaw replaces a *Reactive held in value by its target when T can
// hold an Object.
func unwrapRaw[T any](value T) T {
	w, ok := any(value).(*Reactive)
	if !ok || w == nil {
		return value
	}
	if raw, ok := any(w.target).(T); ok {
		return raw
	}
	return value
}

func (r *Ref[T]) equals(a, b T) bool {
	if r.equal != nil {
		return r.equal(a, b)
	}
	return SameValue(any(a), any(b))
}

func (r *Ref[T]) track() {
	if !r.rt.Tracking() {
		return
	}
	if r.dep == nil {
		r.dep = newDep()
	}
	r.rt.trackDep(r.dep, 0, nil)
}

func (r *Ref[T]) trigger() {
	if r.dep == nil {
		return
	}
	r.rt.TriggerEffects(r.dep)
}
