package renderer

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

const tracerName = "github.com/vango-dev/reactor/pkg/renderer"

// ErrorHandler receives errors recovered at component boundaries.
type ErrorHandler func(err error, component string)

// Renderer reconciles trees against one Adapter. Like the runtime it uses,
// a Renderer is single-threaded.
type Renderer struct {
	adapter  Adapter
	rt       *reactive.Runtime
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
	onError  ErrorHandler

	// instances is the component arena, indexed by uid.
	instances map[uint64]*Instance
	nextUID   uint64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRuntime sets the reactive runtime used for component state and
// scheduling. Defaults to reactive.Default().
func WithRuntime(rt *reactive.Runtime) Option {
	return func(r *Renderer) {
		if rt != nil {
			r.rt = rt
		}
	}
}

// WithLogger sets the renderer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver installs a reconciliation observer.
func WithObserver(o Observer) Option {
	return func(r *Renderer) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithTracer sets the tracer for render spans. Defaults to the global
// OpenTelemetry provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Renderer) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithErrorHandler sets the callback for recovered component errors.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(r *Renderer) {
		r.onError = fn
	}
}

// New creates a Renderer over adapter.
func New(adapter Adapter, opts ...Option) *Renderer {
	r := &Renderer{
		adapter:   adapter,
		logger:    slog.Default().With("component", "renderer"),
		observer:  nopObserver{},
		instances: make(map[uint64]*Instance),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rt == nil {
		r.rt = reactive.Default()
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	return r
}

// Runtime returns the reactive runtime the renderer schedules on.
func (r *Renderer) Runtime() *reactive.Runtime {
	return r.rt
}

// Adapter returns the host adapter.
func (r *Renderer) Adapter() Adapter {
	return r.adapter
}

// Instance returns the live component instance with the given uid.
func (r *Renderer) Instance(uid uint64) (*Instance, bool) {
	inst, ok := r.instances[uid]
	return inst, ok
}

// Instances returns the number of live component instances.
func (r *Renderer) Instances() int {
	return len(r.instances)
}

// Root renders trees into one container.
type Root struct {
	r         *Renderer
	container any
	current   *vdom.Node
}

// CreateRoot binds a container handle.
func (r *Renderer) CreateRoot(container any) *Root {
	return &Root{r: r, container: container}
}

// Current returns the tree currently mounted in the root.
func (root *Root) Current() *vdom.Node {
	return root.current
}

// Render patches the mounted tree into node and flushes the resulting
// component updates. A nil node unmounts everything.
func (root *Root) Render(ctx context.Context, node *vdom.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, span := root.r.tracer.Start(ctx, "reactor.render",
		trace.WithAttributes(attribute.String("reactor.root", node.Name())))
	defer span.End()

	if node == nil {
		if root.current != nil {
			root.r.Unmount(root.current)
		}
	} else {
		root.r.Patch(root.current, node, root.container, nil)
	}
	root.current = node
	root.r.rt.Flush()
	return nil
}

// Unmount removes the mounted tree.
func (root *Root) Unmount() {
	if root.current == nil {
		return
	}
	root.r.Unmount(root.current)
	root.current = nil
}
