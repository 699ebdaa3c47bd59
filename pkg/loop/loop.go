package loop

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

var (
	// ErrClosed is returned when posting to a loop that was closed.
	ErrClosed = errors.New("loop: closed")

	// ErrQueueFull is returned by Post when the task queue is at capacity.
	ErrQueueFull = errors.New("loop: task queue full")
)

// DefaultQueueSize is the task queue capacity used by New.
const DefaultQueueSize = 256

// Loop runs tasks one at a time on a single goroutine. Loop implements
// reactive.Deferrer.
type Loop struct {
	tasks  chan func()
	done   chan struct{}
	closed atomic.Bool
	once   sync.Once

	// mu guards micro and running; running clears only with micro empty.
	mu      sync.Mutex
	micro   []func()
	running bool

	logger *slog.Logger

	taskCount  atomic.Uint64
	microCount atomic.Uint64
	panicCount atomic.Uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for task panics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithQueueSize sets the task queue capacity.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.tasks = make(chan func(), n)
		}
	}
}

// New creates a loop. Nothing runs until Run is called.
func New(opts ...Option) *Loop {
	l := &Loop{
		tasks:  make(chan func(), DefaultQueueSize),
		done:   make(chan struct{}),
		logger: slog.Default().With("component", "loop"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post queues fn to run on the loop. It never blocks.
func (l *Loop) Post(fn func()) error {
	if fn == nil {
		return nil
	}
	if l.closed.Load() {
		return ErrClosed
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrClosed
	default:
		l.logger.Warn("task queue full, dropping task")
		return ErrQueueFull
	}
}

// Do runs fn on the loop and waits until it and the callbacks it deferred
// have finished, or ctx is done.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}
	if l.closed.Load() {
		return ErrClosed
	}
	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	// The deferred callbacks drain after the task returns; wait for a marker
	// task queued behind them.
	select {
	case <-finished:
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return l.barrier(ctx)
}

// barrier waits for the microtasks of the task that just finished.
func (l *Loop) barrier(ctx context.Context) error {
	reached := make(chan struct{})
	select {
	case l.tasks <- func() { close(reached) }:
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-reached:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Defer queues fn to run after the current task. Called outside a task, fn
// runs after the next one.
func (l *Loop) Defer(fn func()) {
	l.mu.Lock()
	l.micro = append(l.micro, fn)
	idle := !l.running
	l.mu.Unlock()
	if idle {
		// Wake an idle loop so the callback is not stranded.
		_ = l.Post(func() {})
	}
}

// Run processes tasks until ctx is done or Close is called. It returns nil
// after Close and ctx.Err() on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.tasks:
			l.runTask(fn)
		case <-l.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Loop) runTask(fn func()) {
	l.mu.Lock()
	l.running = true
	l.mu.Unlock()

	l.safeRun(fn)
	l.taskCount.Add(1)
	for {
		batch := l.takeMicro()
		if len(batch) == 0 {
			return
		}
		for _, m := range batch {
			l.safeRun(m)
			l.microCount.Add(1)
		}
	}
}

// takeMicro returns the pending callbacks. An empty result also marks the
// loop idle.
func (l *Loop) takeMicro() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.micro
	l.micro = nil
	if len(batch) == 0 {
		l.running = false
	}
	return batch
}

func (l *Loop) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.panicCount.Add(1)
			l.logger.Error("task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Close stops the loop. Queued tasks that have not started are dropped.
func (l *Loop) Close() {
	if l.closed.Swap(true) {
		return
	}
	l.once.Do(func() { close(l.done) })
}

// Done returns a channel closed by Close.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Stats is a snapshot of loop counters.
type Stats struct {
	Tasks      uint64
	Microtasks uint64
	Panics     uint64
	Queued     int
}

// Stats returns current counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Tasks:      l.taskCount.Load(),
		Microtasks: l.microCount.Load(),
		Panics:     l.panicCount.Load(),
		Queued:     len(l.tasks),
	}
}
