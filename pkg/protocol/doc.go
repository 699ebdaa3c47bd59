// Package protocol implements the binary wire format used to stream host
// mutations to remote viewers.
//
// A reconciler running against the in-memory adapter produces a log of
// commands (create, insert, remove, patch prop...). This package encodes those
// commands so a viewer can replay them against its own tree, and carries the
// few messages a viewer sends back.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHello (0x00): Server → viewer, session ID and protocol version
//   - FrameCommands (0x01): Server → viewer, a batch of commands
//   - FrameSnapshot (0x02): Server → viewer, serialized tree for late joiners
//   - FrameEvent (0x03): Viewer → server, dispatch an event on a node
//   - FramePing (0x04) / FramePong (0x05): keepalive
//   - FrameError (0x06): Error message
//
// A command batch larger than one frame is split; every frame but the last
// leaves FlagFinal unset.
//
// # Encoding
//
//   - Varint: node IDs, counts and sequence numbers (protobuf-style)
//   - Length-prefixed: strings prefixed with a varint length
//   - Big-endian: fixed-width integers
//
// Example insert command:
//
//	[Kind: 0x06][Node: varint][Parent: varint][Anchor: varint][Move: bool]
package protocol
