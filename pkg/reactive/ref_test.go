package reactive

import (
	"math"
	"testing"
)

func TestRefGetSet(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, 1)
	var seen []int
	rt.NewEffect(func() { seen = append(seen, r.Get()) })

	r.Set(2)
	r.Update(func(n int) int { return n * 10 })

	want := []int{1, 2, 20}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestRefEqualWriteIsSilent(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, "same")
	runs := 0
	rt.NewEffect(func() {
		_ = r.Get()
		runs++
	})
	r.Set("same")
	if runs != 1 {
		t.Errorf("equal write notified subscribers: %d runs", runs)
	}
}

func TestRefNaNIsSameValue(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, math.NaN())
	runs := 0
	rt.NewEffect(func() {
		_ = r.Get()
		runs++
	})
	r.Set(math.NaN())
	if runs != 1 {
		t.Errorf("NaN write notified subscribers: %d runs", runs)
	}
}

func TestRefComparesRawObjectIdentity(t *testing.T) {
	rt := NewRuntime()
	obj := Object{"a": 1}
	r := NewRef(rt, obj)
	runs := 0
	rt.NewEffect(func() {
		_ = r.Get()
		runs++
	})

	r.Set(obj)
	if runs != 1 {
		t.Errorf("re-storing the same raw object notified: %d runs", runs)
	}

	r.Set(Object{"a": 1})
	if runs != 2 {
		t.Errorf("storing a distinct object did not notify: %d runs", runs)
	}
}

func TestRefSetUnwrapsItsProxy(t *testing.T) {
	rt := NewRuntime()
	r := NewRef[any](rt, Object{"n": 1})
	runs := 0
	rt.NewEffect(func() {
		_ = r.Get()
		runs++
	})

	r.Set(r.Proxy())
	if runs != 1 {
		t.Errorf("setting the ref to its own proxy notified: %d runs", runs)
	}
	if _, ok := r.Peek().(Object); !ok {
		t.Errorf("raw value is %T, want Object", r.Peek())
	}

	other := rt.Reactive(Object{"n": 2})
	r.Set(other)
	if runs != 2 {
		t.Errorf("storing another wrapper did not notify: %d runs", runs)
	}
	if IsReactive(r.Peek()) {
		t.Error("ref stored a reactive wrapper as its raw value")
	}
	if r.Proxy() != other {
		t.Error("proxy is not the cached wrapper of the stored object")
	}
}

func TestDeepRefTracksNestedWrites(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, Object{"name": "a"})
	var names []any
	rt.NewEffect(func() {
		names = append(names, r.Proxy().Get("name"))
	})

	r.Proxy().Set("name", "b")
	if len(names) != 2 || names[1] != "b" {
		t.Errorf("names = %v, want [a b]", names)
	}
	if r.Proxy() != rt.Reactive(r.Peek()) {
		t.Error("deep ref proxy is not the cached wrapper of its raw value")
	}
}

func TestShallowRefDoesNotWrap(t *testing.T) {
	rt := NewRuntime()
	r := NewShallowRef(rt, Object{"name": "a"})
	if r.Proxy() != nil {
		t.Error("shallow ref exposed a reactive wrapper")
	}
}

func TestRefWithEquals(t *testing.T) {
	rt := NewRuntime()
	type point struct{ X, Y int }
	r := NewRef(rt, point{1, 2}).WithEquals(func(a, b point) bool { return a.X == b.X })
	runs := 0
	rt.NewEffect(func() {
		_ = r.Get()
		runs++
	})
	r.Set(point{1, 99})
	if runs != 1 {
		t.Errorf("custom equality ignored: %d runs", runs)
	}
}
