package renderer

import (
	"sort"

	"github.com/vango-dev/reactor/pkg/vdom"
)

// Patch turns the host subtree of n1 into n2 inside container, inserting
// new nodes before anchor. A nil n1 mounts n2; a nil n2 unmounts n1.
func (r *Renderer) Patch(n1, n2 *vdom.Node, container, anchor any) {
	if n1 == n2 {
		return
	}
	if n2 == nil {
		r.unmount(n1, true)
		return
	}
	if n1 != nil && !vdom.SameType(n1, n2) {
		if next := r.hostNext(n1); next != nil {
			anchor = next
		}
		r.unmount(n1, true)
		n1 = nil
	}

	switch n2.Kind {
	case vdom.KindText:
		r.processText(n1, n2, container, anchor)
	case vdom.KindComment:
		r.processComment(n1, n2, container, anchor)
	case vdom.KindFragment:
		r.processFragment(n1, n2, container, anchor)
	case vdom.KindElement:
		r.processElement(n1, n2, container, anchor)
	case vdom.KindComponent:
		r.processComponent(n1, n2, container, anchor)
	default:
		r.logger.Error("unknown node kind", "kind", n2.Kind)
	}
}

// Unmount removes node and its subtree from the host.
func (r *Renderer) Unmount(node *vdom.Node) {
	r.unmount(node, true)
}

// Move re-inserts node's host nodes before anchor.
func (r *Renderer) Move(node *vdom.Node, container, anchor any) {
	r.observer.NodeMoved()
	r.move(node, container, anchor)
}

func (r *Renderer) move(node *vdom.Node, container, anchor any) {
	switch node.Kind {
	case vdom.KindFragment:
		if node.El != nil {
			r.adapter.Insert(node.El, container, anchor)
		}
		for _, child := range node.Children {
			r.move(child, container, anchor)
		}
		if node.Anchor != nil {
			r.adapter.Insert(node.Anchor, container, anchor)
		}
	case vdom.KindComponent:
		if inst := r.instances[node.Instance]; inst != nil && inst.subTree != nil {
			r.move(inst.subTree, container, anchor)
		}
	default:
		if node.El != nil {
			r.adapter.Insert(node.El, container, anchor)
		}
	}
}

func (r *Renderer) processText(n1, n2 *vdom.Node, container, anchor any) {
	if n1 == nil {
		n2.El = r.adapter.CreateText(n2.Text)
		r.adapter.Insert(n2.El, container, anchor)
		r.observer.NodeMounted(vdom.KindText)
		return
	}
	n2.El = n1.El
	if n2.Text != n1.Text {
		r.adapter.SetText(n2.El, n2.Text)
	}
}

// processComment creates comments once. Their content is never updated.
func (r *Renderer) processComment(n1, n2 *vdom.Node, container, anchor any) {
	if n1 == nil {
		n2.El = r.adapter.CreateComment(n2.Text)
		r.adapter.Insert(n2.El, container, anchor)
		r.observer.NodeMounted(vdom.KindComment)
		return
	}
	n2.El = n1.El
}

// processFragment brackets the children between two empty text markers so
// the fragment keeps a host position even with no children.
func (r *Renderer) processFragment(n1, n2 *vdom.Node, container, anchor any) {
	if n1 == nil {
		n2.El = r.adapter.CreateText("")
		n2.Anchor = r.adapter.CreateText("")
		r.adapter.Insert(n2.El, container, anchor)
		r.adapter.Insert(n2.Anchor, container, anchor)
		r.mountChildren(n2.Children, container, n2.Anchor)
		r.observer.NodeMounted(vdom.KindFragment)
		return
	}
	n2.El, n2.Anchor = n1.El, n1.Anchor
	r.patchChildren(n1, n2, container, n2.Anchor)
}

func (r *Renderer) processElement(n1, n2 *vdom.Node, container, anchor any) {
	if n1 == nil {
		r.mountElement(n2, container, anchor)
		return
	}
	n2.El = n1.El
	r.patchProps(n2.El, n1.Props, n2.Props)
	r.patchChildren(n1, n2, n2.El, nil)
}

func (r *Renderer) mountElement(n *vdom.Node, container, anchor any) {
	el := r.adapter.CreateElement(n.Tag)
	n.El = el
	switch {
	case n.HasTextChildren():
		r.adapter.SetElementText(el, n.Text)
	case n.HasArrayChildren():
		r.mountChildren(n.Children, el, nil)
	}
	for _, key := range sortedKeys(n.Props) {
		r.adapter.PatchProp(el, key, nil, n.Props[key])
	}
	r.adapter.Insert(el, container, anchor)
	r.observer.NodeMounted(vdom.KindElement)
}

func (r *Renderer) mountChildren(children []*vdom.Node, container, anchor any) {
	for _, child := range children {
		r.Patch(nil, child, container, anchor)
	}
}

// patchProps applies changed and added props, then clears removed ones.
func (r *Renderer) patchProps(el any, oldProps, newProps vdom.Props) {
	if vdom.PropEqual(oldProps, newProps) {
		return
	}
	for _, key := range sortedKeys(newProps) {
		next := newProps[key]
		prev, had := oldProps[key]
		if !had || !vdom.PropEqual(prev, next) {
			r.adapter.PatchProp(el, key, prev, next)
		}
	}
	for _, key := range sortedKeys(oldProps) {
		if _, ok := newProps[key]; !ok {
			r.adapter.PatchProp(el, key, oldProps[key], nil)
		}
	}
}

// patchChildren branches on the children shapes of n1 and n2. Only
// list-to-list goes through the keyed diff; every other transition replaces
// the children wholesale.
func (r *Renderer) patchChildren(n1, n2 *vdom.Node, container, anchor any) {
	switch {
	case n2.HasTextChildren():
		if n1.HasArrayChildren() {
			r.unmountChildren(n1.Children)
			r.adapter.SetElementText(container, n2.Text)
			return
		}
		if !n1.HasTextChildren() || n1.Text != n2.Text {
			r.adapter.SetElementText(container, n2.Text)
		}
	case n1.HasTextChildren():
		r.adapter.SetElementText(container, "")
		if n2.HasArrayChildren() {
			r.mountChildren(n2.Children, container, anchor)
		}
	case n1.HasArrayChildren():
		if n2.HasArrayChildren() {
			r.patchKeyedChildren(n1.Children, n2.Children, container, anchor)
			return
		}
		r.unmountChildren(n1.Children)
	case n2.HasArrayChildren():
		r.mountChildren(n2.Children, container, anchor)
	}
}

func (r *Renderer) unmountChildren(children []*vdom.Node) {
	for _, child := range children {
		r.unmount(child, true)
	}
}

// unmount tears down node. Host removal happens only at the topmost host
// node (doRemove); descendants are detached along with it.
func (r *Renderer) unmount(node *vdom.Node, doRemove bool) {
	if node == nil {
		return
	}
	switch node.Kind {
	case vdom.KindComponent:
		r.unmountComponent(node, doRemove)
	case vdom.KindFragment:
		for _, child := range node.Children {
			r.unmount(child, doRemove)
		}
		if doRemove {
			if node.El != nil {
				r.adapter.Remove(node.El)
			}
			if node.Anchor != nil {
				r.adapter.Remove(node.Anchor)
			}
		}
		node.El, node.Anchor = nil, nil
	case vdom.KindElement:
		for _, child := range node.Children {
			r.unmount(child, false)
		}
		if doRemove && node.El != nil {
			r.adapter.Remove(node.El)
		}
		node.El = nil
	default:
		if doRemove && node.El != nil {
			r.adapter.Remove(node.El)
		}
		node.El = nil
	}
	r.observer.NodeUnmounted(node.Kind)
}

// firstHost returns the first host node of node's subtree, or nil.
func (r *Renderer) firstHost(node *vdom.Node) any {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case vdom.KindFragment:
		if node.El != nil {
			return node.El
		}
		for _, child := range node.Children {
			if h := r.firstHost(child); h != nil {
				return h
			}
		}
		return nil
	case vdom.KindComponent:
		if inst := r.instances[node.Instance]; inst != nil {
			return r.firstHost(inst.subTree)
		}
		return nil
	}
	return node.El
}

// lastHost returns the last host node of node's subtree, or nil.
func (r *Renderer) lastHost(node *vdom.Node) any {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case vdom.KindFragment:
		if node.Anchor != nil {
			return node.Anchor
		}
		for i := len(node.Children) - 1; i >= 0; i-- {
			if h := r.lastHost(node.Children[i]); h != nil {
				return h
			}
		}
		return nil
	case vdom.KindComponent:
		if inst := r.instances[node.Instance]; inst != nil {
			return r.lastHost(inst.subTree)
		}
		return nil
	}
	return node.El
}

// hostNext returns the host node right after node's subtree, or nil.
func (r *Renderer) hostNext(node *vdom.Node) any {
	last := r.lastHost(node)
	if last == nil {
		return nil
	}
	return r.adapter.NextSibling(last)
}

func sortedKeys(props vdom.Props) []string {
	if len(props) == 0 {
		return nil
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
