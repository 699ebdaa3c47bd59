package memory

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/reactor/pkg/vdom"
)

func newDoc() *Document {
	return New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestInsertAppendsAndMoves(t *testing.T) {
	d := newDoc()
	ul := d.CreateElement("ul")
	a := d.CreateElement("li")
	b := d.CreateElement("li")
	d.SetElementText(a, "a")
	d.SetElementText(b, "b")
	d.Insert(a, ul, nil)
	d.Insert(b, ul, nil)
	d.Insert(ul, d.Root(), nil)
	d.ResetOps()

	d.Insert(b, ul, a)

	if got := d.HTML(); got != "<ul><li>b</li><li>a</li></ul>" {
		t.Errorf("html = %s", got)
	}
	want := []Op{{Kind: OpInsert, Node: b.(*Node).ID, Parent: ul.(*Node).ID, Anchor: a.(*Node).ID, Move: true}}
	if diff := cmp.Diff(want, d.Ops()); diff != "" {
		t.Errorf("ops (-want +got):\n%s", diff)
	}
	if next := d.NextSibling(b); next != a {
		t.Errorf("NextSibling(b) = %v", next)
	}
	if next := d.NextSibling(a); next != nil {
		t.Errorf("NextSibling(last) = %v", next)
	}
}

func TestInsertRejectsForeignAnchor(t *testing.T) {
	d := newDoc()
	p := d.CreateElement("div")
	stray := d.CreateElement("span")
	c := d.CreateText("x")
	d.ResetOps()

	d.Insert(c, p, stray)
	if len(d.Ops()) != 0 || len(p.(*Node).Children) != 0 {
		t.Error("insert with foreign anchor was applied")
	}
	d.Insert("not a node", p, nil)
	if len(d.Ops()) != 0 {
		t.Error("insert with foreign handle was applied")
	}
}

func TestRemoveForgetsSubtree(t *testing.T) {
	d := newDoc()
	div := d.CreateElement("div")
	span := d.CreateElement("span")
	d.Insert(span, div, nil)
	d.Insert(div, d.Root(), nil)
	before := d.Len()

	d.Remove(div)
	if d.Len() != before-2 {
		t.Errorf("Len = %d, want %d", d.Len(), before-2)
	}
	if d.Lookup(span.(*Node).ID) != nil {
		t.Error("child still registered")
	}
	if d.HTML() != "" {
		t.Errorf("html = %q", d.HTML())
	}
}

func TestPatchPropDispatch(t *testing.T) {
	d := newDoc()
	el := d.CreateElement("input")
	n := el.(*Node)

	d.PatchProp(el, "class", nil, []string{"a", "b"})
	d.PatchProp(el, "style", nil, map[string]string{"color": "red", "margin": "0"})
	d.PatchProp(el, "value", nil, "typed")
	d.PatchProp(el, "disabled", nil, true)
	d.PatchProp(el, "hidden", nil, false)
	d.PatchProp(el, "type", nil, "text")

	if n.Class != "a b" {
		t.Errorf("class = %q", n.Class)
	}
	if n.DOMProps["value"] != "typed" {
		t.Errorf("value prop = %v", n.DOMProps["value"])
	}
	if _, ok := n.Attr("value"); ok {
		t.Error("value stored as attribute")
	}
	if _, ok := n.Attr("hidden"); ok {
		t.Error("false attribute was set")
	}
	if got := n.HTML(); got != `<input class="a b" style="color: red; margin: 0" disabled type="text">` {
		t.Errorf("html = %s", got)
	}

	ops := d.Ops()[1:]
	want := []Op{
		{Kind: OpPatchProp, Node: n.ID, Key: "class", Value: "a b"},
		{Kind: OpPatchProp, Node: n.ID, Key: "style", Value: "color: red; margin: 0"},
		{Kind: OpPatchProp, Node: n.ID, Key: "value", Value: "typed"},
		{Kind: OpPatchProp, Node: n.ID, Key: "disabled"},
		{Kind: OpPatchProp, Node: n.ID, Key: "hidden", Cleared: true},
		{Kind: OpPatchProp, Node: n.ID, Key: "type", Value: "text"},
	}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("ops (-want +got):\n%s", diff)
	}
}

func TestEventInvokerIsReused(t *testing.T) {
	d := newDoc()
	el := d.CreateElement("button")
	n := el.(*Node)
	var got []string

	d.PatchProp(el, "onClick", nil, vdom.EventHandler(func(any) { got = append(got, "first") }))
	inv := n.listeners["click"]
	d.PatchProp(el, "onClick", nil, func() { got = append(got, "second") })
	if n.listeners["click"] != inv {
		t.Error("invoker replaced on handler swap")
	}

	if !d.Dispatch(n, "click", nil) {
		t.Fatal("Dispatch found no listener")
	}
	if diff := cmp.Diff([]string{"second"}, got); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}

	d.PatchProp(el, "onClick", nil, nil)
	if n.HasListener("click") || d.Dispatch(n, "click", nil) {
		t.Error("listener survived removal")
	}
	last := d.Ops()[len(d.Ops())-1]
	if !last.Cleared || last.Value != "" {
		t.Errorf("removal op = %+v", last)
	}
}

func TestSetElementTextReplacesChildren(t *testing.T) {
	d := newDoc()
	p := d.CreateElement("p")
	d.Insert(d.CreateElement("b"), p, nil)
	d.SetElementText(p, "plain")
	if got := p.(*Node).HTML(); got != "<p>plain</p>" {
		t.Errorf("html = %s", got)
	}
	d.SetElementText(p, "")
	if got := p.(*Node).HTML(); got != "<p></p>" {
		t.Errorf("html after clear = %s", got)
	}
}

func TestSubscribeSeesOpsWithoutRecording(t *testing.T) {
	d := New(WithoutRecording())
	var seen []OpKind
	d.Subscribe(func(op Op) { seen = append(seen, op.Kind) })
	d.Insert(d.CreateComment("c"), d.Root(), nil)

	if len(d.Ops()) != 0 {
		t.Errorf("ops recorded: %v", d.Ops())
	}
	if diff := cmp.Diff([]OpKind{OpCreateComment, OpInsert}, seen); diff != "" {
		t.Errorf("seen (-want +got):\n%s", diff)
	}
}

func TestCounts(t *testing.T) {
	ops := []Op{
		{Kind: OpCreateElement},
		{Kind: OpInsert},
		{Kind: OpInsert, Move: true},
		{Kind: OpInsert, Move: true},
		{Kind: OpRemove},
	}
	want := map[string]int{"CreateElement": 1, "Insert": 1, "Move": 2, "Remove": 1}
	if diff := cmp.Diff(want, Counts(ops)); diff != "" {
		t.Errorf("counts (-want +got):\n%s", diff)
	}
}

// buildSample creates a small tree touching every op kind.
func buildSample(d *Document) (list, second any) {
	list = d.CreateElement("ul")
	d.PatchProp(list, "class", nil, "items")
	for _, label := range []string{"one", "two", "three"} {
		li := d.CreateElement("li")
		d.SetElementText(li, label)
		d.PatchProp(li, "onClick", nil, func() {})
		d.Insert(li, list, nil)
		if label == "two" {
			second = li
		}
	}
	d.Insert(list, d.Root(), nil)
	note := d.CreateComment("end")
	d.Insert(note, d.Root(), nil)
	text := d.CreateText("tail")
	d.Insert(text, d.Root(), note)
	d.SetText(text, "tail!")
	return list, second
}

func TestApplyMirrorsLiveOps(t *testing.T) {
	src := newDoc()
	replica := newDoc()
	src.Subscribe(func(op Op) {
		if err := replica.Apply(op); err != nil {
			t.Fatalf("Apply(%s): %v", op, err)
		}
	})

	list, second := buildSample(src)
	src.Insert(second, list, nil)
	src.PatchProp(list, "data-state", nil, "sorted")
	src.SetElementText(second, "TWO")
	extra := src.CreateElement("li")
	src.Insert(extra, list, nil)
	src.Remove(second)

	if src.HTML() != replica.HTML() {
		t.Errorf("replica diverged:\n src: %s\nrepl: %s", src.HTML(), replica.HTML())
	}
	if !replica.Lookup(list.(*Node).ID).Children[0].HasListener("click") {
		t.Error("listener not replayed")
	}
}

func TestSnapshotRebuildsTree(t *testing.T) {
	src := newDoc()
	list, _ := buildSample(src)
	src.PatchProp(list, "style", nil, "color: blue")

	late := newDoc()
	for _, op := range src.Snapshot() {
		if err := late.Apply(op); err != nil {
			t.Fatalf("Apply(%s): %v", op, err)
		}
	}
	if src.HTML() != late.HTML() {
		t.Fatalf("snapshot diverged:\n src: %s\nlate: %s", src.HTML(), late.HTML())
	}

	// Live ops after the snapshot keep applying.
	src.Subscribe(func(op Op) {
		if err := late.Apply(op); err != nil {
			t.Fatalf("Apply(%s): %v", op, err)
		}
	})
	li := src.CreateElement("li")
	src.SetElementText(li, "four")
	src.Insert(li, list, nil)
	if src.HTML() != late.HTML() {
		t.Errorf("diverged after live ops:\n src: %s\nlate: %s", src.HTML(), late.HTML())
	}
}

func TestApplyErrors(t *testing.T) {
	d := newDoc()
	tests := []struct {
		name string
		op   Op
		want error
	}{
		{"unknown node", Op{Kind: OpSetText, Node: 99}, ErrUnknownNode},
		{"recreate root", Op{Kind: OpCreateElement, Node: 1, Tag: "div"}, ErrInvalidOp},
		{"unknown parent", Op{Kind: OpInsert, Node: 1, Parent: 42}, ErrUnknownNode},
		{"bad kind", Op{Kind: OpKind(200), Node: 1}, ErrInvalidOp},
		{"set text on element", Op{Kind: OpSetText, Node: 1, Value: "x"}, ErrInvalidOp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.Apply(tt.op); !errors.Is(err, tt.want) {
				t.Errorf("Apply = %v, want %v", err, tt.want)
			}
		})
	}
}
