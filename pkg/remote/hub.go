package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	rerrors "github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/adapter/memory"
	"github.com/vango-dev/reactor/pkg/loop"
	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/reactive"
)

const tracerName = "github.com/vango-dev/reactor/pkg/remote"

// ErrHubClosed is returned when joining a closed hub.
var ErrHubClosed = errors.New("remote: hub closed")

// Hub fans document mutations out to viewers.
//
// The document, the pending op buffer and the sequence counter belong to the
// loop goroutine. The viewer set is guarded by mu.
type Hub struct {
	doc    *memory.Document
	loop   *loop.Loop
	config Config

	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
	upgrader websocket.Upgrader

	pending []memory.Op
	seq     uint64

	mu      sync.Mutex
	viewers map[string]*viewer
	closed  bool
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithObserver sets the observer for viewer metrics.
func WithObserver(o Observer) Option {
	return func(h *Hub) {
		if o != nil {
			h.observer = o
		}
	}
}

// WithTracer sets the tracer for event spans.
// Default: the global OpenTelemetry tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(h *Hub) {
		h.tracer = t
	}
}

// WithConfig replaces the connection settings. Zero fields keep their
// defaults.
func WithConfig(c Config) Option {
	return func(h *Hub) {
		d := DefaultConfig()
		if c.WriteTimeout <= 0 {
			c.WriteTimeout = d.WriteTimeout
		}
		if c.PongWait <= 0 {
			c.PongWait = d.PongWait
		}
		if c.PingInterval <= 0 || c.PingInterval >= c.PongWait {
			c.PingInterval = c.PongWait * 9 / 10
		}
		if c.SendBuffer <= 0 {
			c.SendBuffer = d.SendBuffer
		}
		if c.MaxMessageSize <= 0 {
			c.MaxMessageSize = d.MaxMessageSize
		}
		h.config = c
	}
}

// New creates a hub for doc. doc must only be mutated on l. The hub
// publishes after every flush of rt's scheduler; call Publish yourself after
// rendering outside a flush (such as Root.Render).
func New(doc *memory.Document, l *loop.Loop, rt *reactive.Runtime, opts ...Option) *Hub {
	h := &Hub{
		doc:      doc,
		loop:     l,
		config:   DefaultConfig(),
		logger:   slog.Default().With("component", "remote"),
		observer: nopObserver{},
		viewers:  make(map[string]*viewer),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.tracer == nil {
		h.tracer = otel.Tracer(tracerName)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.config.CheckOrigin,
	}
	doc.Subscribe(func(op memory.Op) {
		h.pending = append(h.pending, op)
	})
	if rt != nil {
		rt.Scheduler().OnPostFlush(h.Publish)
	}
	return h
}

// Seq returns the sequence number of the last published batch. Call it on
// the loop.
func (h *Hub) Seq() uint64 {
	return h.seq
}

// Viewers returns the number of connected viewers.
func (h *Hub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

// Publish sends the ops collected since the last call as one batch. It must
// run on the loop.
func (h *Hub) Publish() {
	if len(h.pending) == 0 {
		return
	}
	h.seq++
	batch := protocol.Batch{Seq: h.seq, Commands: h.pending}
	h.pending = nil

	frames, err := protocol.EncodeBatch(protocol.FrameCommands, batch)
	if err != nil {
		// Viewers can no longer follow the stream; make them rejoin.
		rerr := rerrors.FromError(err, "P003")
		h.logger.Error("batch not encodable, resetting viewers", "seq", batch.Seq, "error", rerr)
		h.closeAll(rerr)
		return
	}
	h.broadcast(encodeFrames(frames))
}

func encodeFrames(frames []*protocol.Frame) [][]byte {
	out := make([][]byte, len(frames))
	for i, f := range frames {
		out[i] = f.Encode()
	}
	return out
}

func (h *Hub) broadcast(frames [][]byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, v := range h.viewers {
		h.sendLocked(v, frames)
	}
}

// sendLocked queues frames for v, dropping v if its buffer is full.
func (h *Hub) sendLocked(v *viewer, frames [][]byte) bool {
	for _, f := range frames {
		select {
		case v.send <- f:
		default:
			h.logger.Warn("viewer too slow, dropping",
				"viewer", v.id,
				"error", rerrors.New("N002").WithDetail(fmt.Sprintf("buffer of %d frames", cap(v.send))))
			h.removeLocked(v, true)
			return false
		}
	}
	return true
}

func (h *Hub) send(v *viewer, frames ...[]byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.viewers[v.id] == v {
		h.sendLocked(v, frames)
	}
}

// join registers v on the loop: pending ops are published to the existing
// viewers first, so the snapshot v receives is exactly the state the next
// batch builds on.
func (h *Hub) join(ctx context.Context, v *viewer) error {
	var joinErr error
	err := h.loop.Do(ctx, func() {
		h.Publish()

		hello := protocol.NewFrame(protocol.FrameHello,
			protocol.Hello{Session: v.id, Version: protocol.Version}.Encode())
		frames, err := protocol.EncodeBatch(protocol.FrameSnapshot,
			protocol.Batch{Seq: h.seq, Commands: h.doc.Snapshot()})
		if err != nil {
			joinErr = rerrors.FromError(err, "P003")
			return
		}

		h.mu.Lock()
		defer h.mu.Unlock()
		if h.closed {
			joinErr = ErrHubClosed
			return
		}
		h.viewers[v.id] = v
		h.observer.ViewerConnected()
		h.sendLocked(v, append([][]byte{hello.Encode()}, encodeFrames(frames)...))
		h.logger.Info("viewer joined", "viewer", v.id, "seq", h.seq, "viewers", len(h.viewers))
	})
	if err != nil {
		return err
	}
	return joinErr
}

func (h *Hub) remove(v *viewer, dropped bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(v, dropped)
}

func (h *Hub) removeLocked(v *viewer, dropped bool) {
	if h.viewers[v.id] != v {
		return
	}
	delete(h.viewers, v.id)
	close(v.send)
	h.observer.ViewerDisconnected(dropped)
	h.logger.Info("viewer left", "viewer", v.id, "dropped", dropped, "viewers", len(h.viewers))
}

// closeAll disconnects every viewer, sending err first when set.
func (h *Hub) closeAll(err *rerrors.ReactorError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, v := range h.viewers {
		if err != nil {
			h.sendLocked(v, [][]byte{errorFrame(err, true)})
		}
		h.removeLocked(v, false)
	}
}

// Close disconnects all viewers and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.closeAll(nil)
}

// dispatch runs a viewer event against the document on the loop. Each event
// gets a span that ends once the flush it caused has been published.
func (h *Hub) dispatch(v *viewer, ev protocol.Event) {
	err := h.loop.Post(func() {
		_, span := h.tracer.Start(context.Background(), "reactor.event."+ev.Name,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("reactor.viewer", v.id),
				attribute.String("reactor.event", ev.Name),
				attribute.Int("reactor.node", ev.Node),
			))

		n := h.doc.Lookup(ev.Node)
		if n == nil {
			h.logger.Debug("event for unknown node", "viewer", v.id, "node", ev.Node)
			span.SetStatus(codes.Error, "unknown node")
			span.End()
			return
		}
		if !h.doc.Dispatch(n, ev.Name, ev.Payload) {
			h.logger.Debug("no listener", "viewer", v.id, "node", ev.Node, "event", ev.Name)
			span.SetAttributes(attribute.Bool("reactor.handled", false))
			span.End()
			return
		}

		before := h.seq
		h.loop.Defer(func() {
			span.SetAttributes(
				attribute.Bool("reactor.handled", true),
				attribute.Int64("reactor.batches", int64(h.seq-before)),
			)
			span.SetStatus(codes.Ok, "")
			span.End()
		})
	})
	if err != nil {
		h.logger.Warn("event dropped", "viewer", v.id, "error", err)
	}
}

func newViewerID() string {
	return uuid.NewString()
}

func errorFrame(err *rerrors.ReactorError, fatal bool) []byte {
	msg := protocol.ErrorMessage{Code: err.Code, Message: err.Message, Fatal: fatal}
	return protocol.NewFrame(protocol.FrameError, msg.Encode()).Encode()
}
