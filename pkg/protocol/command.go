package protocol

import (
	"errors"
	"fmt"

	"github.com/vango-dev/reactor/pkg/adapter/memory"
)

// ErrUnknownCommand is returned when a command kind is not recognized.
var ErrUnknownCommand = errors.New("protocol: unknown command")

// batchHeaderMax bounds the seq and count prefix of a commands payload.
const batchHeaderMax = 20

// Batch is a run of commands produced by one flush. Seq increases by one per
// batch so viewers can detect gaps.
type Batch struct {
	Seq      uint64
	Commands []memory.Op
}

// EncodeCommand appends one command.
//
// Layout by kind:
//
//	CreateElement:            [kind][node][tag]
//	CreateText/Comment:       [kind][node][value]
//	SetElementText/SetText:   [kind][node][value]
//	Insert:                   [kind][node][parent][anchor][move]
//	Remove:                   [kind][node]
//	PatchProp:                [kind][node][key][cleared][value if !cleared]
func EncodeCommand(e *Encoder, op memory.Op) {
	e.PutByte(byte(op.Kind))
	e.WriteUvarint(uint64(op.Node))
	switch op.Kind {
	case memory.OpCreateElement:
		e.WriteString(op.Tag)
	case memory.OpCreateText, memory.OpCreateComment, memory.OpSetElementText, memory.OpSetText:
		e.WriteString(op.Value)
	case memory.OpInsert:
		e.WriteUvarint(uint64(op.Parent))
		e.WriteUvarint(uint64(op.Anchor))
		e.WriteBool(op.Move)
	case memory.OpRemove:
	case memory.OpPatchProp:
		e.WriteString(op.Key)
		e.WriteBool(op.Cleared)
		if !op.Cleared {
			e.WriteString(op.Value)
		}
	}
}

// DecodeCommand reads one command.
func DecodeCommand(d *Decoder) (memory.Op, error) {
	var op memory.Op
	kind, err := d.ReadByte()
	if err != nil {
		return op, err
	}
	op.Kind = memory.OpKind(kind)
	if op.Node, err = d.ReadInt(); err != nil {
		return op, err
	}

	switch op.Kind {
	case memory.OpCreateElement:
		op.Tag, err = d.ReadString()
	case memory.OpCreateText, memory.OpCreateComment, memory.OpSetElementText, memory.OpSetText:
		op.Value, err = d.ReadString()
	case memory.OpInsert:
		if op.Parent, err = d.ReadInt(); err != nil {
			return op, err
		}
		if op.Anchor, err = d.ReadInt(); err != nil {
			return op, err
		}
		op.Move, err = d.ReadBool()
	case memory.OpRemove:
	case memory.OpPatchProp:
		if op.Key, err = d.ReadString(); err != nil {
			return op, err
		}
		if op.Cleared, err = d.ReadBool(); err != nil {
			return op, err
		}
		if !op.Cleared {
			op.Value, err = d.ReadString()
		}
	default:
		return op, fmt.Errorf("%w: 0x%02x", ErrUnknownCommand, kind)
	}
	return op, err
}

// EncodeBatch encodes b into one or more frames of type ft (FrameCommands or
// FrameSnapshot). Every frame repeats the sequence number; only the last one
// carries FlagFinal. A single command larger than a frame is an error.
func EncodeBatch(ft FrameType, b Batch) ([]*Frame, error) {
	var frames []*Frame
	one := NewEncoder()
	body := NewEncoder()
	count := 0

	flush := func() {
		e := NewEncoder()
		e.WriteUvarint(b.Seq)
		e.WriteUvarint(uint64(count))
		e.WriteBytes(body.Bytes())
		frames = append(frames, &Frame{Type: ft, Payload: append([]byte(nil), e.Bytes()...)})
		body.Reset()
		count = 0
	}

	for _, op := range b.Commands {
		one.Reset()
		EncodeCommand(one, op)
		if one.Len()+batchHeaderMax > MaxPayloadSize {
			return nil, fmt.Errorf("%w: %s command for node %d is %d bytes",
				ErrFrameTooLarge, op.Kind, op.Node, one.Len())
		}
		if body.Len()+one.Len()+batchHeaderMax > MaxPayloadSize {
			flush()
		}
		body.WriteBytes(one.Bytes())
		count++
	}
	if count > 0 || len(frames) == 0 {
		flush()
	}
	frames[len(frames)-1].Flags |= FlagFinal
	return frames, nil
}

// DecodeBatch decodes the payload of one commands or snapshot frame.
func DecodeBatch(payload []byte) (Batch, error) {
	var b Batch
	d := NewDecoder(payload)
	seq, err := d.ReadUvarint()
	if err != nil {
		return b, err
	}
	b.Seq = seq
	n, err := d.ReadCollectionCount()
	if err != nil {
		return b, err
	}
	b.Commands = make([]memory.Op, 0, n)
	for i := 0; i < n; i++ {
		op, err := DecodeCommand(d)
		if err != nil {
			return b, err
		}
		b.Commands = append(b.Commands, op)
	}
	return b, d.Finish()
}

// Assembler joins split batches back together on the receiving side.
type Assembler struct {
	typ     FrameType
	pending *Batch
}

// ErrSequenceMismatch is returned when a continuation frame carries a
// different sequence number than the batch it continues.
var ErrSequenceMismatch = errors.New("protocol: sequence mismatch in split batch")

// Add feeds one commands or snapshot frame. It returns the complete batch
// and true once the final frame arrives.
func (a *Assembler) Add(f *Frame) (Batch, bool, error) {
	part, err := DecodeBatch(f.Payload)
	if err != nil {
		a.pending = nil
		return Batch{}, false, err
	}
	if a.pending == nil {
		a.typ = f.Type
		a.pending = &part
	} else {
		if part.Seq != a.pending.Seq || f.Type != a.typ {
			a.pending = nil
			return Batch{}, false, ErrSequenceMismatch
		}
		a.pending.Commands = append(a.pending.Commands, part.Commands...)
	}
	if !f.Flags.Has(FlagFinal) {
		return Batch{}, false, nil
	}
	b := *a.pending
	a.pending = nil
	return b, true, nil
}
