package memory

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// handlerValue stands in for a listener in op values.
const handlerValue = "<handler>"

// domProps are stored as live properties rather than attributes.
var domProps = map[string]bool{
	"value":         true,
	"checked":       true,
	"selected":      true,
	"muted":         true,
	"indeterminate": true,
}

// Document is an in-memory host tree. It is not safe for concurrent use; the
// renderer drives it from one goroutine.
type Document struct {
	root    *Node
	nextID  int
	localID int
	byID    map[int]*Node

	ops       []Op
	record    bool
	listeners []func(Op)

	logger *slog.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger used for rejected adapter calls.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithoutRecording disables the op log. Subscribers still see every op.
func WithoutRecording() Option {
	return func(d *Document) {
		d.record = false
	}
}

// New creates a Document with an empty root container.
func New(opts ...Option) *Document {
	d := &Document{
		byID:   make(map[int]*Node),
		record: true,
		logger: slog.Default().With("component", "memory"),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.root = d.newNode(ElementNode)
	d.root.Tag = "root"
	return d
}

// Root returns the root container.
func (d *Document) Root() *Node {
	return d.root
}

// Lookup returns the node with the given ID, or nil.
func (d *Document) Lookup(id int) *Node {
	return d.byID[id]
}

// Len returns the number of live nodes, the root included.
func (d *Document) Len() int {
	return len(d.byID)
}

// Ops returns a copy of the op log.
func (d *Document) Ops() []Op {
	return append([]Op(nil), d.ops...)
}

// ResetOps clears the op log.
func (d *Document) ResetOps() {
	d.ops = nil
}

// Subscribe registers fn to receive every op as it happens.
func (d *Document) Subscribe(fn func(Op)) {
	d.listeners = append(d.listeners, fn)
}

// HTML serializes the children of the root.
func (d *Document) HTML() string {
	var b strings.Builder
	for _, c := range d.root.Children {
		c.writeHTML(&b)
	}
	return b.String()
}

func (d *Document) newNode(kind NodeKind) *Node {
	d.nextID++
	n := &Node{ID: d.nextID, Kind: kind}
	d.byID[n.ID] = n
	return n
}

func (d *Document) emit(op Op) {
	if d.record {
		d.ops = append(d.ops, op)
	}
	for _, fn := range d.listeners {
		fn(op)
	}
}

// node resolves a handle. Foreign handles are logged and rejected.
func (d *Document) node(h any, call string) *Node {
	n, ok := h.(*Node)
	if !ok || n == nil {
		d.logger.Error("invalid handle", "call", call, "handle", fmt.Sprintf("%T", h))
		return nil
	}
	return n
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) any {
	n := d.newNode(ElementNode)
	n.Tag = tag
	d.emit(Op{Kind: OpCreateElement, Node: n.ID, Tag: tag})
	return n
}

// CreateText creates a detached text node.
func (d *Document) CreateText(text string) any {
	n := d.newNode(TextNode)
	n.Text = text
	d.emit(Op{Kind: OpCreateText, Node: n.ID, Value: text})
	return n
}

// CreateComment creates a detached comment node.
func (d *Document) CreateComment(text string) any {
	n := d.newNode(CommentNode)
	n.Text = text
	d.emit(Op{Kind: OpCreateComment, Node: n.ID, Value: text})
	return n
}

// SetElementText replaces the children of an element with a single text
// node, or with nothing when text is empty.
func (d *Document) SetElementText(el any, text string) {
	n := d.node(el, "SetElementText")
	if n == nil {
		return
	}
	for _, c := range n.Children {
		c.Parent = nil
		d.forget(c)
	}
	n.Children = nil
	if text != "" {
		t := d.newNode(TextNode)
		t.Text = text
		t.Parent = n
		n.Children = []*Node{t}
	}
	d.emit(Op{Kind: OpSetElementText, Node: n.ID, Value: text})
}

// SetText updates the content of a text or comment node.
func (d *Document) SetText(node any, text string) {
	n := d.node(node, "SetText")
	if n == nil {
		return
	}
	n.Text = text
	d.emit(Op{Kind: OpSetText, Node: n.ID, Value: text})
}

// Insert places child in parent before anchor, or last when anchor is nil.
// An attached child is moved.
func (d *Document) Insert(child, parent, anchor any) {
	c := d.node(child, "Insert")
	p := d.node(parent, "Insert")
	if c == nil || p == nil {
		return
	}
	var a *Node
	if anchor != nil {
		if a = d.node(anchor, "Insert"); a == nil {
			return
		}
		if a.Parent != p {
			d.logger.Error("anchor is not a child of parent", "anchor", a.ID, "parent", p.ID)
			return
		}
	}
	move := c.Parent != nil
	c.detach()

	idx := len(p.Children)
	if a != nil {
		idx = p.indexOf(a)
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[idx+1:], p.Children[idx:])
	p.Children[idx] = c
	c.Parent = p

	op := Op{Kind: OpInsert, Node: c.ID, Parent: p.ID, Move: move}
	if a != nil {
		op.Anchor = a.ID
	}
	d.emit(op)
}

// Remove detaches a node and forgets its subtree.
func (d *Document) Remove(child any) {
	c := d.node(child, "Remove")
	if c == nil {
		return
	}
	c.detach()
	d.forget(c)
	d.emit(Op{Kind: OpRemove, Node: c.ID})
}

func (d *Document) forget(n *Node) {
	delete(d.byID, n.ID)
	for _, c := range n.Children {
		d.forget(c)
	}
}

// NextSibling returns the node following h in its parent, or nil.
func (d *Document) NextSibling(h any) any {
	n := d.node(h, "NextSibling")
	if n == nil {
		return nil
	}
	if next := n.NextSibling(); next != nil {
		return next
	}
	return nil
}

// PatchProp applies one prop change. A nil next clears the prop.
func (d *Document) PatchProp(el any, key string, prev, next any) {
	n := d.node(el, "PatchProp")
	if n == nil {
		return
	}
	op := Op{Kind: OpPatchProp, Node: n.ID, Key: key}
	switch {
	case key == "class":
		n.Class = classString(next)
		op.Value, op.Cleared = n.Class, n.Class == ""
	case key == "style":
		n.Style = styleMap(next)
		op.Value, op.Cleared = styleString(n.Style), len(n.Style) == 0
	case vdom.IsEventProp(key):
		d.patchEvent(n, vdom.EventName(key), next)
		op.Value, op.Cleared = handlerValue, !n.HasListener(vdom.EventName(key))
	case domProps[key]:
		if next == nil {
			delete(n.DOMProps, key)
		} else {
			if n.DOMProps == nil {
				n.DOMProps = make(map[string]any)
			}
			n.DOMProps[key] = next
		}
		op.Value, op.Cleared = fmt.Sprint(next), next == nil
	default:
		patchAttr(n, key, next)
		v, ok := n.Attrs[key]
		op.Value, op.Cleared = v, !ok
	}
	if op.Cleared {
		op.Value = ""
	}
	d.emit(op)
}

func (d *Document) patchEvent(n *Node, event string, next any) {
	fn := handlerFunc(next)
	if fn == nil {
		if next != nil {
			d.logger.Warn("unsupported handler type", "event", event, "type", fmt.Sprintf("%T", next))
		}
		delete(n.listeners, event)
		return
	}
	if inv, ok := n.listeners[event]; ok {
		inv.value = fn
		return
	}
	if n.listeners == nil {
		n.listeners = make(map[string]*invoker)
	}
	n.listeners[event] = &invoker{value: fn}
}

// Dispatch invokes the listener for event on n. It reports whether a
// listener was registered.
func (d *Document) Dispatch(n *Node, event string, payload any) bool {
	inv, ok := n.listeners[event]
	if !ok {
		return false
	}
	inv.value(payload)
	return true
}

func handlerFunc(v any) func(any) {
	switch h := v.(type) {
	case vdom.EventHandler:
		return h
	case func(any):
		return h
	case func():
		return func(any) { h() }
	}
	return nil
}

func patchAttr(n *Node, key string, next any) {
	switch v := next.(type) {
	case nil:
		delete(n.Attrs, key)
		return
	case bool:
		if !v {
			delete(n.Attrs, key)
			return
		}
	}
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	if b, ok := next.(bool); ok && b {
		n.Attrs[key] = ""
		return
	}
	n.Attrs[key] = fmt.Sprint(next)
}

func classString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case []string:
		return strings.Join(c, " ")
	}
	return fmt.Sprint(v)
}

func styleMap(v any) map[string]string {
	switch s := v.(type) {
	case nil:
		return nil
	case map[string]string:
		out := make(map[string]string, len(s))
		for k, val := range s {
			out[k] = val
		}
		return out
	case string:
		out := make(map[string]string)
		for _, decl := range strings.Split(s, ";") {
			name, val, ok := strings.Cut(decl, ":")
			if !ok {
				continue
			}
			out[strings.TrimSpace(name)] = strings.TrimSpace(val)
		}
		return out
	}
	return nil
}
