package vdom

import "fmt"

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// H creates an element node.
// Arguments can be: nil, Attr, []Attr, Props, *Node, []*Node, string.
func H(tag string, args ...any) *Node {
	return createElement(tag, args)
}

// Element is H with the arguments already collected. A props map without a
// "key" entry is used as is, so passing the same map on every render lets
// the renderer skip the prop diff.
func Element(tag string, props Props, children ...*Node) *Node {
	node := &Node{Kind: KindElement, Tag: tag, Shape: ShapeElement}
	if _, keyed := props["key"]; keyed {
		for k, v := range props {
			node.setProp(k, v)
		}
	} else {
		node.Props = props
	}
	if len(children) > 0 {
		node.Children = children
		node.Shape |= ShapeArrayChildren
	}
	return node
}

func createElement(tag string, args []any) *Node {
	node := &Node{Kind: KindElement, Tag: tag, Shape: ShapeElement}
	var children []any

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			node.setProp(v.Key, v.Value)
		case []Attr:
			for _, a := range v {
				node.setProp(a.Key, a.Value)
			}
		case Props:
			for k, val := range v {
				node.setProp(k, val)
			}
		case *Node:
			if v != nil {
				children = append(children, v)
			}
		case []*Node:
			for _, c := range v {
				if c != nil {
					children = append(children, c)
				}
			}
		case string:
			children = append(children, v)
		default:
			children = append(children, fmt.Sprint(v))
		}
	}

	if len(children) == 1 {
		if s, ok := children[0].(string); ok {
			node.Text = s
			node.Shape |= ShapeTextChildren
			return node
		}
	}
	if len(children) > 0 {
		node.Children = toNodes(children)
		node.Shape |= ShapeArrayChildren
	}
	return node
}

// setProp stores a prop; "key" sets the reconciliation key instead.
func (n *Node) setProp(key string, value any) {
	if key == "" {
		return
	}
	if key == "key" {
		n.Key = fmt.Sprint(value)
		return
	}
	if n.Props == nil {
		n.Props = make(Props)
	}
	n.Props[key] = value
}

func toNodes(items []any) []*Node {
	nodes := make([]*Node, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case *Node:
			nodes = append(nodes, v)
		case string:
			nodes = append(nodes, Text(v))
		}
	}
	return nodes
}

// Text creates a text node.
func Text(content string) *Node {
	return &Node{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *Node {
	return Text(fmt.Sprintf(format, args...))
}

// Comment creates a comment node.
func Comment(content string) *Node {
	return &Node{Kind: KindComment, Text: content}
}

// Fragment groups children without a wrapper element. A Key attribute keys
// the fragment itself.
func Fragment(children ...any) *Node {
	node := &Node{Kind: KindFragment}
	var items []any
	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case Attr:
			if v.Key == "key" {
				node.Key = fmt.Sprint(v.Value)
			}
		case *Node:
			if v != nil {
				items = append(items, v)
			}
		case []*Node:
			for _, c := range v {
				if c != nil {
					items = append(items, c)
				}
			}
		case string:
			items = append(items, v)
		}
	}
	node.Children = toNodes(items)
	node.Shape = ShapeArrayChildren
	return node
}

// Component creates a component node of type t.
// Attr, []Attr and Props arguments become props; nodes and strings become
// the default slot; a Slots argument adds named slots.
func Component(t *ComponentType, args ...any) *Node {
	node := &Node{Kind: KindComponent, Type: t, Shape: ShapeStatefulComponent}
	var content []any
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			node.setProp(v.Key, v.Value)
		case []Attr:
			for _, a := range v {
				node.setProp(a.Key, a.Value)
			}
		case Props:
			for k, val := range v {
				node.setProp(k, val)
			}
		case Slots:
			for name, fn := range v {
				node.addSlot(name, fn)
			}
		case *Node:
			if v != nil {
				content = append(content, v)
			}
		case []*Node:
			for _, c := range v {
				if c != nil {
					content = append(content, c)
				}
			}
		case string:
			content = append(content, v)
		}
	}
	if len(content) > 0 {
		nodes := toNodes(content)
		node.addSlot("default", func() []*Node { return nodes })
	}
	return node
}

func (n *Node) addSlot(name string, fn func() []*Node) {
	if n.Slots == nil {
		n.Slots = make(Slots)
	}
	n.Slots[name] = fn
	n.Shape |= ShapeSlotsChildren
}

// Tag helpers.

func Div(args ...any) *Node    { return createElement("div", args) }
func Span(args ...any) *Node   { return createElement("span", args) }
func P(args ...any) *Node      { return createElement("p", args) }
func Ul(args ...any) *Node     { return createElement("ul", args) }
func Li(args ...any) *Node     { return createElement("li", args) }
func Button(args ...any) *Node { return createElement("button", args) }
func Input(args ...any) *Node  { return createElement("input", args) }
