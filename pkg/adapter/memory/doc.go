// Package memory is an in-memory host tree that the renderer can target.
//
// Document implements the renderer's platform adapter over plain Go
// structs: elements, text and comment nodes with parent links. Prop writes
// are dispatched the way a browser host would handle them: class and style
// are kept apart, "onX" props become cached event listeners, a small set of
// DOM properties is stored as live values and everything else becomes a
// string attribute.
//
// Every mutation is appended to an op log (see Op), which tests use to
// assert how much work a patch did and which the remote package streams to
// viewers.
package memory
