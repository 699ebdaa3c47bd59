package reactive

import (
	"fmt"
	"sort"
)

// Object is a plain structured value that can be made reactive.
type Object map[string]any

// iterationKey is the pseudo-field tracked by operations that depend on the
// set of keys rather than on one key's value.
type iterationKey struct{}

// IterationKey is the field key under which key-set reads are tracked.
var IterationKey any = iterationKey{}

// Reactive wraps an Object so that reads register dependencies and writes
// trigger them. Field access goes through Get and Set.
//
// Each Object has at most one Reactive per Runtime; wrapping it again returns
// the existing wrapper.
type Reactive struct {
	rt     *Runtime
	id     uint64
	target Object
}

// Reactive returns the reactive wrapper for target, creating it on first
// use. A nil target gets a fresh empty Object.
func (rt *Runtime) Reactive(target Object) *Reactive {
	if target == nil {
		target = Object{}
	}
	key, _ := mapIdentity(target)
	if existing, ok := rt.proxies[key]; ok {
		return existing
	}
	r := &Reactive{rt: rt, id: nextID(), target: target}
	rt.proxies[key] = r
	return r
}

// ID returns the target identity used in the dependency store.
func (r *Reactive) ID() uint64 {
	return r.id
}

// Runtime returns the owning runtime.
func (r *Reactive) Runtime() *Runtime {
	return r.rt
}

// Raw returns the wrapped Object. Reads and writes on it are not tracked.
func (r *Reactive) Raw() Object {
	return r.target
}

// Get returns the value of key and tracks the read. Nested objects are
// returned wrapped so that reads through them are tracked as well.
func (r *Reactive) Get(key string) any {
	r.rt.Track(r.id, key)
	return r.wrap(r.target[key])
}

// Peek returns the value of key without tracking.
func (r *Reactive) Peek(key string) any {
	return r.wrap(r.target[key])
}

// Has reports whether key is present and tracks the read.
func (r *Reactive) Has(key string) bool {
	r.rt.Track(r.id, key)
	_, ok := r.target[key]
	return ok
}

// Set stores value under key. Subscribers of key are triggered only if the
// stored raw value changed; adding a new key also triggers key-set readers.
func (r *Reactive) Set(key string, value any) {
	raw := toRawValue(value)
	old, had := r.target[key]
	r.target[key] = raw
	switch {
	case !had:
		r.rt.Trigger(r.id, key, raw)
		r.rt.Trigger(r.id, IterationKey, nil)
	case !SameValue(old, raw):
		r.rt.Trigger(r.id, key, raw)
	}
}

// Delete removes key, triggering its subscribers and key-set readers.
func (r *Reactive) Delete(key string) {
	if _, had := r.target[key]; !had {
		return
	}
	delete(r.target, key)
	r.rt.Trigger(r.id, key, nil)
	r.rt.Trigger(r.id, IterationKey, nil)
}

// Keys returns the keys in sorted order and tracks the key set.
func (r *Reactive) Keys() []string {
	r.rt.Track(r.id, IterationKey)
	keys := make([]string, 0, len(r.target))
	for k := range r.target {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys and tracks the key set.
func (r *Reactive) Len() int {
	r.rt.Track(r.id, IterationKey)
	return len(r.target)
}

// String implements fmt.Stringer without tracking.
func (r *Reactive) String() string {
	return fmt.Sprintf("Reactive#%d%v", r.id, map[string]any(r.target))
}

func (r *Reactive) wrap(v any) any {
	switch obj := v.(type) {
	case Object:
		return r.rt.Reactive(obj)
	case map[string]any:
		return r.rt.Reactive(Object(obj))
	}
	return v
}

// IsReactive reports whether v is a reactive wrapper.
func IsReactive(v any) bool {
	_, ok := v.(*Reactive)
	return ok
}

// ToRaw unwraps a reactive wrapper; other values are returned unchanged.
func ToRaw(v any) any {
	if r, ok := v.(*Reactive); ok {
		return r.target
	}
	return v
}

// ToReactive wraps Object values through rt; other values are returned
// unchanged.
func (rt *Runtime) ToReactive(v any) any {
	switch obj := v.(type) {
	case Object:
		return rt.Reactive(obj)
	case map[string]any:
		return rt.Reactive(Object(obj))
	}
	return v
}

// toRawValue normalizes a value before it is stored in a target.
func toRawValue(v any) any {
	switch obj := v.(type) {
	case *Reactive:
		return obj.target
	case map[string]any:
		return Object(obj)
	}
	return v
}
