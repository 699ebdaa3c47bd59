package memory

import "fmt"

// OpKind identifies a host mutation.
type OpKind uint8

const (
	OpCreateElement OpKind = iota + 1
	OpCreateText
	OpCreateComment
	OpSetElementText
	OpSetText
	OpInsert
	OpRemove
	OpPatchProp
)

// String returns the string representation of the OpKind.
func (k OpKind) String() string {
	switch k {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpCreateComment:
		return "CreateComment"
	case OpSetElementText:
		return "SetElementText"
	case OpSetText:
		return "SetText"
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	case OpPatchProp:
		return "PatchProp"
	default:
		return "Unknown"
	}
}

// Op is one recorded host mutation. Node, Parent and Anchor are node IDs;
// Anchor 0 means "append".
type Op struct {
	Kind   OpKind
	Node   int
	Parent int
	Anchor int

	// Move is set on inserts of a node that was already attached.
	Move bool

	Tag   string // CreateElement
	Key   string // PatchProp
	Value string // text content or rendered prop value

	// Cleared is set on PatchProp ops that remove the prop.
	Cleared bool
}

// String renders the op for logs and CLI output.
func (o Op) String() string {
	switch o.Kind {
	case OpCreateElement:
		return fmt.Sprintf("create #%d <%s>", o.Node, o.Tag)
	case OpCreateText:
		return fmt.Sprintf("create #%d text %q", o.Node, o.Value)
	case OpCreateComment:
		return fmt.Sprintf("create #%d comment %q", o.Node, o.Value)
	case OpSetElementText:
		return fmt.Sprintf("text #%d = %q", o.Node, o.Value)
	case OpSetText:
		return fmt.Sprintf("set #%d = %q", o.Node, o.Value)
	case OpInsert:
		verb := "insert"
		if o.Move {
			verb = "move"
		}
		if o.Anchor == 0 {
			return fmt.Sprintf("%s #%d into #%d", verb, o.Node, o.Parent)
		}
		return fmt.Sprintf("%s #%d into #%d before #%d", verb, o.Node, o.Parent, o.Anchor)
	case OpRemove:
		return fmt.Sprintf("remove #%d", o.Node)
	case OpPatchProp:
		if o.Cleared {
			return fmt.Sprintf("prop #%d %s cleared", o.Node, o.Key)
		}
		return fmt.Sprintf("prop #%d %s = %s", o.Node, o.Key, o.Value)
	default:
		return "unknown op"
	}
}

// Counts tallies an op log. Inserts of attached nodes are counted as moves
// under the "Move" key; fresh inserts under "Insert".
func Counts(ops []Op) map[string]int {
	counts := make(map[string]int)
	for _, op := range ops {
		name := op.Kind.String()
		if op.Kind == OpInsert && op.Move {
			name = "Move"
		}
		counts[name]++
	}
	return counts
}
