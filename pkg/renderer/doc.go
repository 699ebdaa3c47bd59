// Package renderer reconciles vdom trees against a host tree.
//
// The renderer never touches a host directly: every structural change goes
// through an Adapter. Given an old and a new tree, Patch mounts, patches,
// moves or unmounts nodes so that the host ends up matching the new tree
// with as few adapter calls as the keyed diff allows.
//
// # Keyed Children
//
// Lists of children are reconciled by trimming the common prefix and
// suffix, then matching the middle by key. Nodes whose old positions already
// form a longest increasing subsequence stay put; everything else is moved
// or mounted right to left against an already placed neighbor.
//
// # Components
//
// A component node gets an Instance from the renderer's arena. The
// instance's render effect reads reactive state; writes queue the effect on
// the runtime scheduler, so any number of writes before a flush cause one
// re-render. Render panics are recovered and the component is rendered as
// an empty comment placeholder.
//
//	r := renderer.New(doc, renderer.WithRuntime(rt))
//	root := r.CreateRoot(doc.Root())
//	root.Render(ctx, vdom.Component(App))
package renderer
