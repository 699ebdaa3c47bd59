// Package vdom defines the node tree that the renderer reconciles.
//
// A Node describes one position of a UI tree at one render pass: an element,
// a text node, a comment, a fragment that groups children without a handle
// of its own, or a component. Trees are produced fresh on every render and
// never shared between versions.
//
// # Building Trees
//
// Elements are created with H or the tag helpers:
//
//	Div(Class("card"), Key("row-1"),
//	    H("h1", "Title"),
//	    P(On("click", handler), "Content"),
//	)
//
// A single string argument becomes the element's text children. Mixed
// content turns strings into Text nodes.
//
// # Identity
//
// SameType is the only criterion for patching a node in place rather than
// replacing it: kind, tag or component type, and key must all match.
//
// # Components
//
// A ComponentType bundles Setup, Data and Render. Setup receives a
// SetupContext to read reactive props and register lifecycle hooks.
package vdom
