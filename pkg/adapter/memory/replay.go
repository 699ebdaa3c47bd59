package memory

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vango-dev/reactor/pkg/vdom"
)

var (
	// ErrUnknownNode is returned by Apply for ops naming a node the replica
	// never saw.
	ErrUnknownNode = errors.New("memory: unknown node")

	// ErrInvalidOp is returned by Apply for ops it cannot replay.
	ErrInvalidOp = errors.New("memory: invalid op")
)

// Snapshot returns ops that rebuild the current tree in an empty Document
// through Apply. Node IDs are preserved.
func (d *Document) Snapshot() []Op {
	var ops []Op
	for _, c := range d.root.Children {
		ops = snapshotNode(ops, c, d.root.ID)
	}
	return ops
}

func snapshotNode(ops []Op, n *Node, parent int) []Op {
	switch n.Kind {
	case TextNode:
		ops = append(ops, Op{Kind: OpCreateText, Node: n.ID, Value: n.Text})
	case CommentNode:
		ops = append(ops, Op{Kind: OpCreateComment, Node: n.ID, Value: n.Text})
	default:
		ops = append(ops, Op{Kind: OpCreateElement, Node: n.ID, Tag: n.Tag})
		ops = append(ops, snapshotProps(n)...)
		for _, c := range n.Children {
			ops = snapshotNode(ops, c, n.ID)
		}
	}
	return append(ops, Op{Kind: OpInsert, Node: n.ID, Parent: parent})
}

func snapshotProps(n *Node) []Op {
	var ops []Op
	prop := func(key, value string) {
		ops = append(ops, Op{Kind: OpPatchProp, Node: n.ID, Key: key, Value: value})
	}
	if n.Class != "" {
		prop("class", n.Class)
	}
	if len(n.Style) > 0 {
		prop("style", styleString(n.Style))
	}
	for _, key := range sortedKeys(n.Attrs) {
		prop(key, n.Attrs[key])
	}
	for _, key := range sortedKeys(n.DOMProps) {
		prop(key, fmt.Sprint(n.DOMProps[key]))
	}
	for _, event := range n.Listeners() {
		prop(vdom.EventProp(event), handlerValue)
	}
	return ops
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply replays an op recorded by another Document, taking node IDs from the
// op. A Document fed a source's Snapshot followed by its live ops mirrors the
// source tree. Replayed listeners are no-ops.
func (d *Document) Apply(op Op) error {
	switch op.Kind {
	case OpCreateElement, OpCreateText, OpCreateComment:
		if _, exists := d.byID[op.Node]; exists || op.Node <= 0 {
			return fmt.Errorf("%w: create of existing node #%d", ErrInvalidOp, op.Node)
		}
		n := &Node{ID: op.Node}
		switch op.Kind {
		case OpCreateElement:
			n.Kind, n.Tag = ElementNode, op.Tag
		case OpCreateText:
			n.Kind, n.Text = TextNode, op.Value
		default:
			n.Kind, n.Text = CommentNode, op.Value
		}
		d.byID[n.ID] = n
		if n.ID > d.nextID {
			d.nextID = n.ID
		}
		d.emit(op)
		return nil
	}

	n, err := d.lookup(op.Node)
	if err != nil {
		return err
	}
	switch op.Kind {
	case OpSetElementText:
		if n.Kind != ElementNode {
			return fmt.Errorf("%w: element text on %s #%d", ErrInvalidOp, n.Kind, n.ID)
		}
		d.SetElementText(n, op.Value)
		d.localize(n)
	case OpSetText:
		if n.Kind == ElementNode {
			return fmt.Errorf("%w: set text on element #%d", ErrInvalidOp, n.ID)
		}
		d.SetText(n, op.Value)
	case OpInsert:
		parent, err := d.lookup(op.Parent)
		if err != nil {
			return err
		}
		var anchor any
		if op.Anchor != 0 {
			a, err := d.lookup(op.Anchor)
			if err != nil {
				return err
			}
			if a.Parent != parent {
				return fmt.Errorf("%w: anchor #%d is not a child of #%d", ErrInvalidOp, a.ID, parent.ID)
			}
			anchor = a
		}
		d.Insert(n, parent, anchor)
	case OpRemove:
		d.Remove(n)
	case OpPatchProp:
		var next any
		switch {
		case op.Cleared:
		case vdom.IsEventProp(op.Key):
			next = func(any) {}
		default:
			next = op.Value
		}
		d.PatchProp(n, op.Key, nil, next)
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidOp, op.Kind)
	}
	return nil
}

func (d *Document) lookup(id int) (*Node, error) {
	n, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w #%d", ErrUnknownNode, id)
	}
	return n, nil
}

// localize moves the text node SetElementText created out of the source ID
// space, so it cannot collide with IDs the source assigns later.
func (d *Document) localize(n *Node) {
	for _, c := range n.Children {
		delete(d.byID, c.ID)
		d.localID--
		c.ID = d.localID
		d.byID[c.ID] = c
	}
}
