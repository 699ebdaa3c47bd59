package vdom

import "strings"

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindComment               // Placeholder, never updated
	KindFragment              // Grouping without a handle
	KindComponent             // Stateful component
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// ShapeFlags summarizes what a node is and what its children look like, so
// the renderer can branch without inspecting fields.
type ShapeFlags uint16

const (
	ShapeElement ShapeFlags = 1 << iota
	ShapeStatefulComponent
	ShapeTextChildren
	ShapeArrayChildren
	ShapeSlotsChildren
)

// Has reports whether all bits of flag are set.
func (s ShapeFlags) Has(flag ShapeFlags) bool {
	return s&flag == flag
}

// String lists the set flags, e.g. "element|array-children".
func (s ShapeFlags) String() string {
	names := []struct {
		flag ShapeFlags
		name string
	}{
		{ShapeElement, "element"},
		{ShapeStatefulComponent, "component"},
		{ShapeTextChildren, "text-children"},
		{ShapeArrayChildren, "array-children"},
		{ShapeSlotsChildren, "slots-children"},
	}
	var parts []string
	for _, n := range names {
		if s.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Props holds attributes and event handlers.
type Props map[string]any

// Slots holds the content functions passed to a component.
type Slots map[string]func() []*Node

// Node is one position of the tree.
type Node struct {
	Kind Kind
	Tag  string         // Element tag name (e.g., "div")
	Type *ComponentType // For KindComponent
	Key  string         // Reconciliation key; empty means unkeyed

	Props Props

	// Text is the content of text and comment nodes, and the children of an
	// element with ShapeTextChildren.
	Text     string
	Children []*Node
	Slots    Slots
	Shape    ShapeFlags

	// El is the platform handle, set once on mount and cleared on unmount.
	// For fragments it is the empty start marker; components have none.
	El any

	// Anchor is the empty end marker of a mounted fragment.
	Anchor any

	// Instance is the arena index of the component instance, 0 if none.
	Instance uint64
}

// HasKey reports whether the node carries an explicit key.
func (n *Node) HasKey() bool {
	return n != nil && n.Key != ""
}

// HasTextChildren reports whether the node's children are a text string.
func (n *Node) HasTextChildren() bool {
	return n.Shape.Has(ShapeTextChildren)
}

// HasArrayChildren reports whether the node's children are a node list.
func (n *Node) HasArrayChildren() bool {
	return n.Shape.Has(ShapeArrayChildren)
}

// Name returns a short label for logs: the tag, the component name or the
// kind.
func (n *Node) Name() string {
	switch {
	case n == nil:
		return "<nil>"
	case n.Kind == KindElement:
		return n.Tag
	case n.Kind == KindComponent && n.Type != nil:
		return n.Type.Name
	}
	return strings.ToLower(n.Kind.String())
}

// SameType reports whether b can be patched into a's place: same kind, same
// tag or component type, same key.
func SameType(a, b *Node) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind || a.Key != b.Key {
		return false
	}
	switch a.Kind {
	case KindElement:
		return a.Tag == b.Tag
	case KindComponent:
		return a.Type == b.Type
	}
	return true
}
