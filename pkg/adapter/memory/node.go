package memory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// NodeKind distinguishes host node types.
type NodeKind uint8

const (
	ElementNode NodeKind = iota
	TextNode
	CommentNode
)

// String returns the string representation of the NodeKind.
func (k NodeKind) String() string {
	switch k {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

// Node is a host node.
type Node struct {
	ID   int
	Kind NodeKind
	Tag  string
	Text string

	Class string
	Style map[string]string
	Attrs map[string]string

	// DOMProps holds live properties such as value and checked.
	DOMProps map[string]any

	listeners map[string]*invoker

	Parent   *Node
	Children []*Node
}

// invoker is the stable listener registered for an event. Updating a handler
// swaps the value instead of re-registering.
type invoker struct {
	value func(payload any)
}

// Attr returns the attribute value and whether it is set.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// HasListener reports whether an event listener is registered.
func (n *Node) HasListener(event string) bool {
	_, ok := n.listeners[event]
	return ok
}

// Listeners returns the registered event names in sorted order.
func (n *Node) Listeners() []string {
	names := make([]string, 0, len(n.listeners))
	for name := range n.listeners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TextContent concatenates the text of n and its descendants.
func (n *Node) TextContent() string {
	switch n.Kind {
	case TextNode:
		return n.Text
	case CommentNode:
		return ""
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// NextSibling returns the node after n in its parent, or nil.
func (n *Node) NextSibling() *Node {
	if n.Parent == nil {
		return nil
	}
	siblings := n.Parent.Children
	for i, c := range siblings {
		if c == n && i+1 < len(siblings) {
			return siblings[i+1]
		}
	}
	return nil
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) detach() {
	if n.Parent == nil {
		return
	}
	p := n.Parent
	if i := p.indexOf(n); i >= 0 {
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	n.Parent = nil
}

// HTML serializes the subtree. Attributes are written in sorted order so the
// output is stable; listeners and DOM properties are omitted.
func (n *Node) HTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	switch n.Kind {
	case TextNode:
		b.WriteString(n.Text)
		return
	case CommentNode:
		fmt.Fprintf(b, "<!--%s-->", n.Text)
		return
	}
	b.WriteString("<")
	b.WriteString(n.Tag)
	if n.Class != "" {
		fmt.Fprintf(b, " class=%q", n.Class)
	}
	if len(n.Style) > 0 {
		fmt.Fprintf(b, " style=%q", styleString(n.Style))
	}
	names := make([]string, 0, len(n.Attrs))
	for name := range n.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if v := n.Attrs[name]; v == "" {
			fmt.Fprintf(b, " %s", name)
		} else {
			fmt.Fprintf(b, " %s=%q", name, v)
		}
	}
	b.WriteString(">")
	if vdom.IsVoidElement(n.Tag) {
		return
	}
	for _, c := range n.Children {
		c.writeHTML(b)
	}
	fmt.Fprintf(b, "</%s>", n.Tag)
}

func styleString(style map[string]string) string {
	names := make([]string, 0, len(style))
	for name := range style {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+style[name])
	}
	return strings.Join(parts, "; ")
}
