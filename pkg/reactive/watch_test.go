package reactive

import (
	"reflect"
	"testing"
)

func TestWatchFiresAfterFlush(t *testing.T) {
	rt, d := newManualRuntime()
	n := NewRef(rt, 0)
	var calls [][2]int
	Watch(rt, n.Get, func(newV, oldV int) {
		calls = append(calls, [2]int{newV, oldV})
	})

	n.Set(1)
	n.Set(2)
	if len(calls) != 0 {
		t.Fatal("watch callback ran synchronously")
	}
	d.Drain()
	n.Set(3)
	d.Drain()

	want := [][2]int{{2, 0}, {3, 2}}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestWatchSkipsUnchangedResult(t *testing.T) {
	rt, d := newManualRuntime()
	n := NewRef(rt, 1)
	calls := 0
	Watch(rt, func() bool { return n.Get() > 0 }, func(bool, bool) { calls++ })

	n.Set(2)
	d.Drain()
	if calls != 0 {
		t.Errorf("callback fired for unchanged derived value")
	}
	n.Set(-1)
	d.Drain()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWatchImmediate(t *testing.T) {
	rt := NewRuntime()
	n := NewRef(rt, 7)
	var got []int
	Watch(rt, n.Get, func(newV, oldV int) {
		got = append(got, newV, oldV)
	}, Immediate())
	if !reflect.DeepEqual(got, []int{7, 0}) {
		t.Errorf("got %v, want [7 0]", got)
	}
}

func TestWatchDeepSeesNestedWrites(t *testing.T) {
	rt, d := newManualRuntime()
	state := rt.Reactive(Object{
		"settings": Object{"theme": "dark"},
	})
	calls := 0
	WatchReactive(state, func(*Reactive) { calls++ })

	state.Get("settings").(*Reactive).Set("theme", "light")
	d.Drain()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	state.Set("extra", true)
	d.Drain()
	if calls != 2 {
		t.Errorf("calls = %d after key add, want 2", calls)
	}
}

func TestWatchStop(t *testing.T) {
	rt, d := newManualRuntime()
	n := NewRef(rt, 0)
	calls := 0
	stop := Watch(rt, n.Get, func(int, int) { calls++ })

	n.Set(1)
	stop()
	d.Drain()
	n.Set(2)
	d.Drain()
	if calls != 0 {
		t.Errorf("stopped watcher fired %d times", calls)
	}
}
