// Package loop provides a single-goroutine event loop that hosts a reactive
// runtime.
//
// Work from other goroutines enters through Post or Do. Each task runs to
// completion on the loop goroutine, then every callback deferred during that
// task runs before the next task starts. Plugged into a runtime with
// reactive.WithDeferrer, this gives the scheduler microtask semantics: all
// writes made by one task are flushed together, once.
//
//	l := loop.New()
//	rt := reactive.NewRuntime(reactive.WithDeferrer(l))
//	go l.Run(ctx)
//
//	l.Post(func() {
//	    count.Set(count.Peek() + 1)
//	})
package loop
