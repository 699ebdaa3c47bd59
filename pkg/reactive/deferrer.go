package reactive

// Deferrer schedules a callback to run after the current synchronous unit of
// work completes. It is the host's microtask primitive.
type Deferrer interface {
	Defer(fn func())
}

// DeferFunc adapts a function to the Deferrer interface.
type DeferFunc func(fn func())

// Defer implements Deferrer.
func (f DeferFunc) Defer(fn func()) { f(fn) }

// ManualDeferrer collects deferred callbacks until the host calls Drain.
// It suits hosts without an event loop (tests, request/response handlers).
type ManualDeferrer struct {
	pending []func()
}

// NewManualDeferrer creates an empty ManualDeferrer.
func NewManualDeferrer() *ManualDeferrer {
	return &ManualDeferrer{}
}

// Defer implements Deferrer.
func (d *ManualDeferrer) Defer(fn func()) {
	d.pending = append(d.pending, fn)
}

// Len returns the number of callbacks waiting.
func (d *ManualDeferrer) Len() int {
	return len(d.pending)
}

// Drain runs pending callbacks, including ones deferred while draining, and
// returns how many ran.
func (d *ManualDeferrer) Drain() int {
	n := 0
	for len(d.pending) > 0 {
		batch := d.pending
		d.pending = nil
		for _, fn := range batch {
			fn()
			n++
		}
	}
	return n
}
