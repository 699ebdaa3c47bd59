package reactive

import "testing"

func TestEffectRunsOnCreate(t *testing.T) {
	rt := NewRuntime()
	ran := 0
	rt.NewEffect(func() { ran++ })
	if ran != 1 {
		t.Errorf("expected 1 run on creation, got %d", ran)
	}
}

func TestEffectLazyDoesNotRun(t *testing.T) {
	rt := NewRuntime()
	ran := 0
	e := rt.NewEffect(func() { ran++ }, Lazy())
	if ran != 0 {
		t.Fatalf("lazy effect ran on creation")
	}
	e.Run()
	if ran != 1 {
		t.Errorf("expected 1 run after Run, got %d", ran)
	}
}

func TestTrackIsNoopWithoutActiveEffect(t *testing.T) {
	rt := NewRuntime()
	state := rt.Reactive(Object{"a": 1})
	_ = state.Get("a")
	if rt.Deps().Targets() != 0 {
		t.Errorf("untracked read created %d dependency entries", rt.Deps().Targets())
	}
}

func TestEffectRetriggeredOncePerWrite(t *testing.T) {
	rt := NewRuntime()
	state := rt.Reactive(Object{"a": 1, "b": 1})
	runs := 0
	rt.NewEffect(func() {
		_ = state.Get("a")
		_ = state.Get("a")
		runs++
	})

	state.Set("a", 2)
	if runs != 2 {
		t.Errorf("expected 2 runs after one write, got %d", runs)
	}

	state.Set("b", 2)
	if runs != 2 {
		t.Errorf("write to unread field re-ran effect: %d runs", runs)
	}
}

func TestTriggerWithoutSubscribersIsNoop(t *testing.T) {
	rt := NewRuntime()
	rt.Trigger(12345, "missing", 1)
}

func TestComputedSubscribersNotifiedFirst(t *testing.T) {
	rt := NewRuntime()
	src := rt.Reactive(Object{"n": 1})

	var order []string

	// Subscribe the eager effect before the computed.
	eager := rt.NewEffect(func() {
		_ = src.Get("n")
	}, Lazy(), WithScheduler(func() { order = append(order, "eager") }))
	eager.Run()

	derived := rt.NewEffect(func() {
		_ = src.Get("n")
	}, Lazy(), WithScheduler(func() { order = append(order, "computed") }))
	derived.computed = true
	derived.Run()

	src.Set("n", 2)

	if len(order) != 2 || order[0] != "computed" || order[1] != "eager" {
		t.Errorf("notification order = %v, want [computed eager]", order)
	}
}

func TestEffectWithSchedulerIsNotRunDirectly(t *testing.T) {
	rt := NewRuntime()
	n := NewRef(rt, 0)
	runs, scheduled := 0, 0
	rt.NewEffect(func() {
		_ = n.Get()
		runs++
	}, WithScheduler(func() { scheduled++ }))

	n.Set(1)
	if runs != 1 {
		t.Errorf("scheduled effect ran directly: %d runs", runs)
	}
	if scheduled != 1 {
		t.Errorf("expected scheduler to be called once, got %d", scheduled)
	}
}

func TestEffectDropsStaleDependencies(t *testing.T) {
	rt := NewRuntime()
	flag := NewRef(rt, true)
	a := NewRef(rt, 0)
	b := NewRef(rt, 0)
	runs := 0
	rt.NewEffect(func() {
		runs++
		if flag.Get() {
			_ = a.Get()
		} else {
			_ = b.Get()
		}
	})

	flag.Set(false)
	if runs != 2 {
		t.Fatalf("expected 2 runs, got %d", runs)
	}

	// a is no longer read; writing it must not re-run the effect.
	a.Set(1)
	if runs != 2 {
		t.Errorf("stale dependency re-triggered effect: %d runs", runs)
	}
	b.Set(1)
	if runs != 3 {
		t.Errorf("expected 3 runs after writing b, got %d", runs)
	}
}

func TestEffectStop(t *testing.T) {
	rt := NewRuntime()
	state := rt.Reactive(Object{"x": 0})
	runs := 0
	stopped := false
	e := rt.NewEffect(func() {
		_ = state.Get("x")
		runs++
	}, OnStop(func() { stopped = true }))

	e.Stop()
	if !stopped {
		t.Error("OnStop callback not invoked")
	}
	if e.Active() {
		t.Error("effect still active after Stop")
	}
	state.Set("x", 1)
	if runs != 1 {
		t.Errorf("stopped effect re-ran: %d runs", runs)
	}
	if rt.Deps().Targets() != 0 {
		t.Errorf("stopped effect left %d dependency entries", rt.Deps().Targets())
	}

	// Stop is idempotent.
	e.Stop()
}

func TestStoppedEffectRunsUntracked(t *testing.T) {
	rt := NewRuntime()
	n := NewRef(rt, 0)
	runs := 0
	e := rt.NewEffect(func() {
		_ = n.Get()
		runs++
	})
	e.Stop()
	e.Run()
	if runs != 2 {
		t.Fatalf("expected manual Run of stopped effect to execute, got %d runs", runs)
	}
	if n.Subscribers() != 0 {
		t.Errorf("stopped effect re-subscribed on Run")
	}
}

func TestEffectDoesNotRetriggerItself(t *testing.T) {
	rt := NewRuntime()
	n := NewRef(rt, 0)
	runs := 0
	rt.NewEffect(func() {
		runs++
		n.Set(n.Get() + 1)
	})
	if runs != 1 {
		t.Errorf("self-writing effect ran %d times, want 1", runs)
	}
	if n.Peek() != 1 {
		t.Errorf("n = %d, want 1", n.Peek())
	}
}

func TestNestedEffectsRestoreActive(t *testing.T) {
	rt := NewRuntime()
	outerSrc := NewRef(rt, 0)
	innerSrc := NewRef(rt, 0)
	outerRuns, innerRuns := 0, 0

	rt.NewEffect(func() {
		outerRuns++
		rt.NewEffect(func() {
			innerRuns++
			_ = innerSrc.Get()
		})
		_ = outerSrc.Get()
	})

	if rt.ActiveEffect() != nil {
		t.Fatal("active effect not restored after nested run")
	}

	innerSrc.Set(1)
	if outerRuns != 1 {
		t.Errorf("inner dependency re-ran outer effect: %d", outerRuns)
	}
	if innerRuns != 2 {
		t.Errorf("inner runs = %d, want 2", innerRuns)
	}
}

func TestUntracked(t *testing.T) {
	rt := NewRuntime()
	n := NewRef(rt, 0)
	runs := 0
	rt.NewEffect(func() {
		runs++
		rt.Untracked(func() { _ = n.Get() })
	})
	n.Set(1)
	if runs != 1 {
		t.Errorf("untracked read subscribed the effect: %d runs", runs)
	}
}
