package remote

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/reactor/pkg/adapter/memory"
	"github.com/vango-dev/reactor/pkg/loop"
	"github.com/vango-dev/reactor/pkg/protocol"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/renderer"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	t     *testing.T
	loop  *loop.Loop
	doc   *memory.Document
	hub   *Hub
	srv   *httptest.Server
	count *reactive.Ref[int]
}

// newFixture serves a click counter through a hub.
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{t: t, loop: loop.New(loop.WithLogger(quiet()))}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = f.loop.Run(context.Background())
	}()

	rt := reactive.NewRuntime(reactive.WithDeferrer(f.loop), reactive.WithLogger(quiet()))
	f.doc = memory.New(memory.WithLogger(quiet()), memory.WithoutRecording())
	f.hub = New(f.doc, f.loop, rt, append([]Option{WithLogger(quiet())}, opts...)...)
	r := renderer.New(f.doc, renderer.WithRuntime(rt), renderer.WithLogger(quiet()))

	counter := &vdom.ComponentType{
		Name: "Clicks",
		Setup: func(ctx *vdom.SetupContext) any {
			f.count = reactive.NewRef(ctx.Runtime(), 0)
			return vdom.RenderFunc(func() *vdom.Node {
				return vdom.Button(
					vdom.On("click", func(any) { f.count.Set(f.count.Peek() + 1) }),
					vdom.Textf("clicked %d", f.count.Get()),
				)
			})
		},
	}
	root := r.CreateRoot(f.doc.Root())
	f.do(func() {
		if err := root.Render(context.Background(), vdom.Div(vdom.Component(counter))); err != nil {
			t.Errorf("Render: %v", err)
		}
		f.hub.Publish()
	})

	f.srv = httptest.NewServer(f.hub.Router(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "metrics")
	})))
	t.Cleanup(func() {
		f.hub.Close()
		f.srv.Close()
		f.loop.Close()
		wg.Wait()
	})
	return f
}

func (f *fixture) do(fn func()) {
	f.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.loop.Do(ctx, fn); err != nil {
		f.t.Fatalf("loop.Do: %v", err)
	}
}

func (f *fixture) html() string {
	var html string
	f.do(func() { html = f.doc.HTML() })
	return html
}

func (f *fixture) seq() uint64 {
	var seq uint64
	f.do(func() { seq = f.hub.Seq() })
	return seq
}

type client struct {
	t       *testing.T
	conn    *websocket.Conn
	replica *memory.Document
	asm     protocol.Assembler
	session string
	seq     uint64
}

// dial connects a viewer and applies its snapshot.
func (f *fixture) dial() *client {
	f.t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		f.t.Fatalf("Dial: %v", err)
	}
	f.t.Cleanup(func() { conn.Close() })

	c := &client{t: f.t, conn: conn, replica: memory.New(memory.WithLogger(quiet()))}
	hello := c.read()
	if hello.Type != protocol.FrameHello {
		f.t.Fatalf("first frame = %s, want Hello", hello.Type)
	}
	h, err := protocol.DecodeHello(hello.Payload)
	if err != nil || h.Version != protocol.Version || h.Session == "" {
		f.t.Fatalf("hello = %+v, %v", h, err)
	}
	c.session = h.Session

	for {
		fr := c.read()
		if fr.Type != protocol.FrameSnapshot {
			f.t.Fatalf("frame = %s, want Snapshot", fr.Type)
		}
		if c.apply(fr) {
			return c
		}
	}
}

func (c *client) read() *protocol.Frame {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("ReadMessage: %v", err)
	}
	f, err := protocol.DecodeFrame(msg)
	if err != nil {
		c.t.Fatalf("DecodeFrame: %v", err)
	}
	return f
}

func (c *client) apply(f *protocol.Frame) bool {
	c.t.Helper()
	b, done, err := c.asm.Add(f)
	if err != nil {
		c.t.Fatalf("Assembler: %v", err)
	}
	if !done {
		return false
	}
	for _, op := range b.Commands {
		if err := c.replica.Apply(op); err != nil {
			c.t.Fatalf("Apply(%s): %v", op, err)
		}
	}
	c.seq = b.Seq
	return true
}

// await applies command batches until seq has been reached.
func (c *client) await(seq uint64) {
	c.t.Helper()
	for c.seq < seq {
		f := c.read()
		if f.Type != protocol.FrameCommands {
			c.t.Fatalf("frame = %s, want Commands", f.Type)
		}
		c.apply(f)
	}
}

func (c *client) write(f *protocol.Frame) {
	c.t.Helper()
	if err := c.conn.WriteMessage(websocket.BinaryMessage, f.Encode()); err != nil {
		c.t.Fatalf("WriteMessage: %v", err)
	}
}

func TestViewerFollowsUpdates(t *testing.T) {
	f := newFixture(t)
	c := f.dial()

	if got, want := c.replica.HTML(), "<div><button>clicked 0</button></div>"; got != want {
		t.Fatalf("snapshot html = %s, want %s", got, want)
	}

	f.do(func() { f.count.Set(5) })
	c.await(f.seq())

	if got, want := c.replica.HTML(), f.html(); got != want {
		t.Errorf("replica = %s, server = %s", got, want)
	}
	if !strings.Contains(c.replica.HTML(), "clicked 5") {
		t.Errorf("replica = %s", c.replica.HTML())
	}
}

func TestViewerEventsReachListeners(t *testing.T) {
	f := newFixture(t)
	c := f.dial()

	button := c.replica.Root().Children[0].Children[0]
	if !button.HasListener("click") {
		t.Fatal("snapshot lost the click listener")
	}
	before := c.seq
	c.write(protocol.NewFrame(protocol.FrameEvent, protocol.Event{Node: button.ID, Name: "click"}.Encode()))
	c.await(before + 1)

	if got := c.replica.HTML(); got != "<div><button>clicked 1</button></div>" {
		t.Errorf("replica = %s", got)
	}
}

func TestLateViewerMatchesEarlyViewer(t *testing.T) {
	f := newFixture(t)
	early := f.dial()

	for i := 1; i <= 3; i++ {
		f.do(func() { f.count.Set(i * 10) })
	}
	seq := f.seq()
	early.await(seq)

	late := f.dial()
	if late.seq != seq {
		t.Errorf("late snapshot seq = %d, want %d", late.seq, seq)
	}
	if early.replica.HTML() != late.replica.HTML() {
		t.Errorf("early = %s, late = %s", early.replica.HTML(), late.replica.HTML())
	}
	if early.session == late.session {
		t.Error("viewers share a session ID")
	}

	f.do(func() { f.count.Set(99) })
	seq = f.seq()
	early.await(seq)
	late.await(seq)
	if early.replica.HTML() != late.replica.HTML() {
		t.Errorf("diverged: early = %s, late = %s", early.replica.HTML(), late.replica.HTML())
	}
}

func TestBadFramesGetErrorReplies(t *testing.T) {
	f := newFixture(t)
	c := f.dial()

	tests := []struct {
		name  string
		frame []byte
		code  string
	}{
		{"garbage", []byte{0x42}, "P001"},
		{"bad event", protocol.NewFrame(protocol.FrameEvent, []byte{0x80}).Encode(), "P001"},
		{"server frame", protocol.NewFrame(protocol.FrameCommands, nil).Encode(), "P002"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.conn.WriteMessage(websocket.BinaryMessage, tt.frame); err != nil {
				t.Fatal(err)
			}
			reply := c.read()
			if reply.Type != protocol.FrameError {
				t.Fatalf("reply = %s, want Error", reply.Type)
			}
			em, err := protocol.DecodeErrorMessage(reply.Payload)
			if err != nil {
				t.Fatal(err)
			}
			if em.Code != tt.code || em.Fatal {
				t.Errorf("error = %+v, want code %s", em, tt.code)
			}
		})
	}
}

func TestPingPong(t *testing.T) {
	f := newFixture(t)
	c := f.dial()

	c.write(protocol.NewFrame(protocol.FramePing, []byte("t1")))
	reply := c.read()
	if reply.Type != protocol.FramePong || string(reply.Payload) != "t1" {
		t.Errorf("reply = %s %q", reply.Type, reply.Payload)
	}
}

func TestHTTPEndpoints(t *testing.T) {
	f := newFixture(t)
	f.dial()

	res, err := http.Get(f.srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	var h health
	json.NewDecoder(res.Body).Decode(&h)
	res.Body.Close()
	if res.StatusCode != http.StatusOK || h.Status != "ok" || h.Viewers != 1 {
		t.Errorf("healthz = %d %+v", res.StatusCode, h)
	}

	res, err = http.Get(f.srv.URL + "/snapshot")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if string(body) != "<div><button>clicked 0</button></div>" {
		t.Errorf("snapshot = %s", body)
	}

	res, err = http.Get(f.srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(res.Body)
	res.Body.Close()
	if string(body) != "metrics" {
		t.Errorf("metrics = %s", body)
	}
}

func TestViewerLeaves(t *testing.T) {
	f := newFixture(t)
	c := f.dial()
	if f.hub.Viewers() != 1 {
		t.Fatalf("viewers = %d", f.hub.Viewers())
	}
	c.conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for f.hub.Viewers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer never removed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

type countingObserver struct {
	mu                       sync.Mutex
	connected, left, dropped int
	frames                   int
}

func (o *countingObserver) ViewerConnected() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.connected++
}

func (o *countingObserver) ViewerDisconnected(dropped bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.left++
	if dropped {
		o.dropped++
	}
}

func (o *countingObserver) FrameSent(int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.frames++
}

func TestSlowViewerIsDropped(t *testing.T) {
	obs := &countingObserver{}
	doc := memory.New(memory.WithLogger(quiet()))
	h := New(doc, loop.New(), nil, WithLogger(quiet()), WithObserver(obs))

	slow := &viewer{id: "slow", send: make(chan []byte, 1)}
	fast := &viewer{id: "fast", send: make(chan []byte, 4)}
	h.viewers[slow.id] = slow
	h.viewers[fast.id] = fast

	h.broadcast([][]byte{{1}, {2}})

	if h.Viewers() != 1 {
		t.Fatalf("viewers = %d, want 1", h.Viewers())
	}
	if _, ok := h.viewers["fast"]; !ok {
		t.Error("fast viewer dropped")
	}
	if _, open := <-slow.send; !open {
		t.Error("slow viewer lost its buffered frame")
	}
	if _, open := <-slow.send; open {
		t.Error("slow viewer channel still open")
	}
	if obs.dropped != 1 {
		t.Errorf("dropped = %d", obs.dropped)
	}
}

func TestPublishBatchesPendingOps(t *testing.T) {
	doc := memory.New(memory.WithLogger(quiet()))
	h := New(doc, loop.New(), nil, WithLogger(quiet()))
	v := &viewer{id: "v", send: make(chan []byte, 8)}
	h.viewers[v.id] = v

	h.Publish()
	if len(v.send) != 0 || h.Seq() != 0 {
		t.Fatal("empty publish sent a batch")
	}

	el := doc.CreateElement("p")
	doc.Insert(el, doc.Root(), nil)
	h.Publish()

	if h.Seq() != 1 || len(v.send) != 1 {
		t.Fatalf("seq = %d, queued = %d", h.Seq(), len(v.send))
	}
	frame, err := protocol.DecodeFrame(<-v.send)
	if err != nil {
		t.Fatal(err)
	}
	b, err := protocol.DecodeBatch(frame.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if b.Seq != 1 || len(b.Commands) != 2 {
		t.Errorf("batch = %+v", b)
	}
}
