package vdom

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *Node) *Node {
	if condition {
		return node
	}
	return nil
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *Node) *Node {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to nodes, skipping nil results.
func Range[T any](items []T, fn func(item T, index int) *Node) []*Node {
	result := make([]*Node, 0, len(items))
	for i, item := range items {
		node := fn(item, i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Keyed maps keys to nodes keyed by each entry, e.g. Keyed([]string{"a","b"}, Li).
func Keyed(keys []string, fn func(args ...any) *Node) []*Node {
	return Range(keys, func(k string, _ int) *Node {
		return fn(Key(k), k)
	})
}

// Clone returns a copy of n and its subtree without platform handles or
// instance links, suitable for rendering again.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.El = nil
	c.Anchor = nil
	c.Instance = 0
	if n.Props != nil {
		c.Props = make(Props, len(n.Props))
		for k, v := range n.Props {
			c.Props[k] = v
		}
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = Clone(child)
		}
	}
	return &c
}
