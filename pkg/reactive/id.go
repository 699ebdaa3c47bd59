package reactive

import "sync/atomic"

// globalIDCounter is the source of identities for effects, jobs and targets.
var globalIDCounter uint64

// nextID returns the next identity. IDs are never reused.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
