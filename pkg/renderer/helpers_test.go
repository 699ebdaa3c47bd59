package renderer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/reactor/pkg/adapter/memory"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

type harness struct {
	t        *testing.T
	doc      *memory.Document
	rt       *reactive.Runtime
	deferrer *reactive.ManualDeferrer
	r        *Renderer
	root     *Root
	errs     []error
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{t: t, deferrer: reactive.NewManualDeferrer()}
	h.doc = memory.New(memory.WithLogger(quiet))
	h.rt = reactive.NewRuntime(reactive.WithDeferrer(h.deferrer), reactive.WithLogger(quiet))
	base := []Option{
		WithRuntime(h.rt),
		WithLogger(quiet),
		WithErrorHandler(func(err error, _ string) { h.errs = append(h.errs, err) }),
	}
	h.r = New(h.doc, append(base, opts...)...)
	h.root = h.r.CreateRoot(h.doc.Root())
	return h
}

// render renders node into the root.
func (h *harness) render(node *vdom.Node) {
	h.t.Helper()
	if err := h.root.Render(context.Background(), node); err != nil {
		h.t.Fatalf("Render: %v", err)
	}
}

func (h *harness) flush() {
	h.deferrer.Drain()
}

func (h *harness) html() string {
	return h.doc.HTML()
}

func (h *harness) reset() {
	h.doc.ResetOps()
}

func (h *harness) counts() map[string]int {
	return memory.Counts(h.doc.Ops())
}

func list(keys ...string) *vdom.Node {
	return vdom.Ul(vdom.Keyed(keys, vdom.Li))
}
