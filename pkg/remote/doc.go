// Package remote streams a document's mutations to viewers over WebSocket.
//
// A Hub sits between a memory.Document driven on a loop.Loop and any number
// of viewers. Ops the reconciler produces are collected on the loop goroutine
// and published as one command batch per scheduler flush. A viewer that
// connects receives a hello frame, then a snapshot batch that rebuilds the
// current tree, then every later batch. Viewers send event frames back; the
// hub dispatches them to the document's listeners on the loop.
//
// Router mounts the hub on a chi router together with health, snapshot and
// metrics endpoints.
package remote
