// Package reactive provides the dependency-tracking core of reactor.
//
// A Runtime owns all reactive bookkeeping: the dependency store that maps a
// reactive target's fields to the effects reading them, the currently active
// effect, the flush scheduler and the target→proxy cache. Nothing here is
// safe for concurrent use; a Runtime must be driven from a single goroutine
// (see package loop for an event loop that guarantees this).
//
// # Core Types
//
// Effect is a tracked computation. Reads performed while it runs subscribe
// it; writes to those fields re-run it (or hand it to its scheduler):
//
//	rt := reactive.NewRuntime()
//	state := rt.Reactive(reactive.Object{"count": 0})
//	rt.NewEffect(func() {
//	    fmt.Println("count is", state.Get("count"))
//	})
//	state.Set("count", 1) // prints "count is 1"
//
// Ref is a single reactive cell, Computed a cached derived value that is
// recomputed lazily on the next read after any dependency changes:
//
//	n := reactive.NewRef(rt, 2)
//	sq := reactive.NewComputed(rt, func() int { return n.Get() * n.Get() })
//	sq.Get() // 4
//
// # Scheduling
//
// Effects created WithScheduler are never run directly by a write. Their
// scheduler usually queues a Job on the runtime Scheduler, which collapses
// duplicate jobs and runs them in registration order once the current unit of
// work completes:
//
//	rt.NewEffect(render, reactive.WithScheduler(func() {
//	    rt.Scheduler().Queue(job)
//	}))
package reactive
