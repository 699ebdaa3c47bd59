package renderer

// Adapter is the host capability set. Handles are opaque to the renderer.
//
// Adapters handle their own failures (unknown handles, unsupported props):
// the renderer treats every call as a fire-and-forget command.
type Adapter interface {
	CreateElement(tag string) any
	CreateText(text string) any
	CreateComment(text string) any
	SetElementText(el any, text string)
	SetText(node any, text string)
	// Insert places child in parent before anchor, or last when anchor is
	// nil. Inserting an attached child moves it.
	Insert(child, parent, anchor any)
	Remove(child any)
	NextSibling(node any) any
	PatchProp(el any, key string, prev, next any)
}
