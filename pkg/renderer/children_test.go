package renderer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/reactor/pkg/adapter/memory"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func liIDs(ul *vdom.Node) []int {
	ids := make([]int, len(ul.Children))
	for i, c := range ul.Children {
		ids[i] = c.El.(*memory.Node).ID
	}
	return ids
}

func TestKeyedAppendMountsOnlyTheNewNode(t *testing.T) {
	h := newHarness(t)
	h.render(list("a", "b", "c"))
	h.reset()

	h.render(list("a", "b", "c", "d"))

	want := map[string]int{"CreateElement": 1, "SetElementText": 1, "Insert": 1}
	if diff := cmp.Diff(want, h.counts()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
	if got := h.html(); got != "<ul><li>a</li><li>b</li><li>c</li><li>d</li></ul>" {
		t.Errorf("html = %s", got)
	}
}

func TestKeyedPrependUsesFirstNodeAsAnchor(t *testing.T) {
	h := newHarness(t)
	h.render(list("b", "c"))
	h.reset()

	h.render(list("a", "b", "c"))

	ops := h.doc.Ops()
	last := ops[len(ops)-1]
	if last.Kind != memory.OpInsert || last.Anchor == 0 {
		t.Fatalf("expected anchored insert, got %v", last)
	}
	if got := h.html(); got != "<ul><li>a</li><li>b</li><li>c</li></ul>" {
		t.Errorf("html = %s", got)
	}
}

func TestKeyedRemoveFromMiddle(t *testing.T) {
	h := newHarness(t)
	h.render(list("a", "b", "c", "d"))
	h.reset()

	h.render(list("a", "d"))

	want := map[string]int{"Remove": 2}
	if diff := cmp.Diff(want, h.counts()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
	if got := h.html(); got != "<ul><li>a</li><li>d</li></ul>" {
		t.Errorf("html = %s", got)
	}
}

func TestKeyedRotateMovesOnce(t *testing.T) {
	h := newHarness(t)
	before := list("A", "B", "C")
	h.render(before)
	oldIDs := liIDs(before)
	h.reset()

	after := list("C", "A", "B")
	h.render(after)

	want := map[string]int{"Move": 1}
	if diff := cmp.Diff(want, h.counts()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
	if got := h.html(); got != "<ul><li>C</li><li>A</li><li>B</li></ul>" {
		t.Errorf("html = %s", got)
	}
	wantIDs := []int{oldIDs[2], oldIDs[0], oldIDs[1]}
	if diff := cmp.Diff(wantIDs, liIDs(after)); diff != "" {
		t.Errorf("host nodes were not reused (-want +got):\n%s", diff)
	}
}

func TestKeyedMixedUpdate(t *testing.T) {
	h := newHarness(t)
	before := list("A", "B", "C")
	h.render(before)
	oldIDs := liIDs(before)
	h.reset()

	after := list("B", "D", "C")
	h.render(after)

	want := map[string]int{"Remove": 1, "CreateElement": 1, "SetElementText": 1, "Insert": 1}
	if diff := cmp.Diff(want, h.counts()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
	if got := h.html(); got != "<ul><li>B</li><li>D</li><li>C</li></ul>" {
		t.Errorf("html = %s", got)
	}
	ids := liIDs(after)
	if ids[0] != oldIDs[1] || ids[2] != oldIDs[2] {
		t.Errorf("B and C were not patched in place: %v vs %v", ids, oldIDs)
	}
}

func TestKeyedReverse(t *testing.T) {
	h := newHarness(t)
	h.render(list("a", "b", "c", "d", "e"))
	h.reset()

	h.render(list("e", "d", "c", "b", "a"))

	c := h.counts()
	if c["Move"] != 4 || c["CreateElement"] != 0 || c["Remove"] != 0 {
		t.Errorf("counts = %v, want 4 moves only", c)
	}
	if got := h.html(); got != "<ul><li>e</li><li>d</li><li>c</li><li>b</li><li>a</li></ul>" {
		t.Errorf("html = %s", got)
	}
}

func TestKeyedShuffleWithInsertAndRemove(t *testing.T) {
	h := newHarness(t)
	h.render(list("a", "b", "c", "d", "e", "f", "g"))
	h.reset()

	h.render(list("a", "c", "e", "x", "d", "b", "g"))

	if got := h.html(); got != "<ul><li>a</li><li>c</li><li>e</li><li>x</li><li>d</li><li>b</li><li>g</li></ul>" {
		t.Errorf("html = %s", got)
	}
	c := h.counts()
	if c["Remove"] != 1 || c["CreateElement"] != 1 {
		t.Errorf("counts = %v, want one remove (f) and one create (x)", c)
	}
	// c and d stay on the increasing run; e and b move.
	if c["Move"] != 2 {
		t.Errorf("moves = %d, want 2", c["Move"])
	}
}

func TestUnkeyedChildrenMatchedByType(t *testing.T) {
	h := newHarness(t)
	h.render(vdom.Div(vdom.P("one"), vdom.Div("mid"), vdom.P("two")))
	h.reset()

	h.render(vdom.Div(vdom.P("one"), vdom.Span("mid"), vdom.P("two")))

	if got := h.html(); got != "<div><p>one</p><span>mid</span><p>two</p></div>" {
		t.Errorf("html = %s", got)
	}
	c := h.counts()
	if c["Remove"] != 1 || c["CreateElement"] != 1 || c["Move"] != 0 {
		t.Errorf("counts = %v", c)
	}
}

func TestDuplicateKeysDoNotDoublePatch(t *testing.T) {
	h := newHarness(t)
	h.render(vdom.Ul(vdom.Li(vdom.Key("x"), "1"), vdom.Li(vdom.Key("x"), "2"), vdom.Li(vdom.Key("y"), "3")))

	h.render(vdom.Ul(vdom.Li(vdom.Key("y"), "3"), vdom.Li(vdom.Key("x"), "1")))

	if got := h.html(); got != "<ul><li>3</li><li>1</li></ul>" {
		t.Errorf("html = %s", got)
	}
}

func TestFragmentChildrenReorderBeforeSibling(t *testing.T) {
	h := newHarness(t)
	frag := func(keys ...string) *vdom.Node {
		return vdom.Div(
			vdom.Fragment(vdom.Keyed(keys, vdom.Span)),
			vdom.P("tail"),
		)
	}
	h.render(frag("a", "b"))
	h.render(frag("b", "a", "c"))

	if got := h.html(); got != "<div><span>b</span><span>a</span><span>c</span><p>tail</p></div>" {
		t.Errorf("html = %s", got)
	}
}

func TestKeyedFragmentsMoveAsAWhole(t *testing.T) {
	h := newHarness(t)
	group := func(k string) *vdom.Node {
		return vdom.Fragment(vdom.Key(k), vdom.Span(k+"1"), vdom.Span(k+"2"))
	}
	h.render(vdom.Div(group("a"), group("b")))
	h.render(vdom.Div(group("b"), group("a")))

	if got := h.html(); got != "<div><span>b1</span><span>b2</span><span>a1</span><span>a2</span></div>" {
		t.Errorf("html = %s", got)
	}
}

func TestEmptyFragmentKeepsItsPosition(t *testing.T) {
	h := newHarness(t)
	tree := func(items ...string) *vdom.Node {
		return vdom.Ul(
			vdom.Fragment(vdom.Key("f"), vdom.Keyed(items, vdom.Li)),
			vdom.Li(vdom.Key("x"), "x"),
		)
	}
	h.render(tree())
	h.render(tree("y"))
	if got := h.html(); got != "<ul><li>y</li><li>x</li></ul>" {
		t.Errorf("html = %s", got)
	}

	h.render(tree())
	h.render(tree("y", "z"))
	if got := h.html(); got != "<ul><li>y</li><li>z</li><li>x</li></ul>" {
		t.Errorf("html = %s", got)
	}
}

func TestEmptyFragmentInSuffixKeepsItsPosition(t *testing.T) {
	h := newHarness(t)
	tree := func(items ...string) *vdom.Node {
		return vdom.Ul(
			vdom.Li(vdom.Key("x"), "x"),
			vdom.Fragment(vdom.Key("f"), vdom.Keyed(items, vdom.Li)),
			vdom.Li(vdom.Key("z"), "z"),
		)
	}
	h.render(tree())
	h.render(tree("y"))
	if got := h.html(); got != "<ul><li>x</li><li>y</li><li>z</li></ul>" {
		t.Errorf("html = %s", got)
	}
}

func TestMovedEmptyFragmentFillsInPlace(t *testing.T) {
	h := newHarness(t)
	frag := func(items ...string) *vdom.Node {
		return vdom.Fragment(vdom.Key("f"), vdom.Keyed(items, vdom.Li))
	}
	a := func() *vdom.Node { return vdom.Li(vdom.Key("a"), "a") }
	b := func() *vdom.Node { return vdom.Li(vdom.Key("b"), "b") }

	h.render(vdom.Ul(frag(), a(), b()))
	h.render(vdom.Ul(a(), b(), frag()))
	h.render(vdom.Ul(a(), b(), frag("y")))

	if got := h.html(); got != "<ul><li>a</li><li>b</li><li>y</li></ul>" {
		t.Errorf("html = %s", got)
	}
}

func TestFragmentMarkersRemovedWithFragment(t *testing.T) {
	h := newHarness(t)
	h.render(vdom.Div(vdom.Fragment(vdom.Span("a")), vdom.P("p")))
	live := h.doc.Len()

	h.render(vdom.Div(vdom.Span("b"), vdom.P("p")))
	if got := h.html(); got != "<div><span>b</span><p>p</p></div>" {
		t.Errorf("html = %s", got)
	}
	// the fragment's start and end markers are gone
	if got := h.doc.Len(); got != live-2 {
		t.Errorf("live host nodes = %d, want %d", got, live-2)
	}
}
