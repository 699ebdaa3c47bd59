// Package fixture reads node trees from YAML.
//
// A fixture node has exactly one of tag, text, comment or fragment.
// Elements may carry a key, props and children; a bare string in a
// children list is a text node.
//
//	tag: ul
//	props: {class: list}
//	children:
//	  - {tag: li, key: a, children: [A]}
//	  - {tag: li, key: b, children: [B]}
//
// Props named like event props (onClick) get a no-op handler, so listener
// creation and removal show up in diffs.
package fixture

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// Node is one node of a fixture tree.
type Node struct {
	Tag      string         `yaml:"tag,omitempty"`
	Text     *string        `yaml:"text,omitempty"`
	Comment  *string        `yaml:"comment,omitempty"`
	Fragment bool           `yaml:"fragment,omitempty"`
	Key      string         `yaml:"key,omitempty"`
	Props    map[string]any `yaml:"props,omitempty"`
	Children []Node         `yaml:"children,omitempty"`

	line int
}

// UnmarshalYAML accepts a plain scalar as shorthand for a text node.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	n.line = value.Line
	if value.Kind == yaml.ScalarNode {
		s := value.Value
		n.Text = &s
		return nil
	}
	type plain Node
	p := (*plain)(n)
	if err := value.Decode(p); err != nil {
		return err
	}
	n.line = value.Line
	return nil
}

// Build converts the fixture into a vdom tree.
func (n *Node) Build() (*vdom.Node, error) {
	kinds := 0
	if n.Tag != "" {
		kinds++
	}
	if n.Text != nil {
		kinds++
	}
	if n.Comment != nil {
		kinds++
	}
	if n.Fragment {
		kinds++
	}
	if kinds != 1 {
		return nil, invalid(n.line, "node needs exactly one of tag, text, comment or fragment")
	}

	switch {
	case n.Text != nil:
		if err := n.leaf("text"); err != nil {
			return nil, err
		}
		return vdom.Text(*n.Text), nil
	case n.Comment != nil:
		if err := n.leaf("comment"); err != nil {
			return nil, err
		}
		return vdom.Comment(*n.Comment), nil
	}

	children, err := n.buildChildren()
	if err != nil {
		return nil, err
	}

	if n.Fragment {
		if len(n.Props) > 0 {
			return nil, invalid(n.line, "fragments take no props")
		}
		args := make([]any, 0, len(children)+1)
		if n.Key != "" {
			args = append(args, vdom.Key(n.Key))
		}
		for _, c := range children {
			args = append(args, c)
		}
		return vdom.Fragment(args...), nil
	}

	args := make([]any, 0, len(n.Props)+len(children)+1)
	if n.Key != "" {
		args = append(args, vdom.Key(n.Key))
	}
	if len(n.Props) > 0 {
		props := make(vdom.Props, len(n.Props))
		for k, v := range n.Props {
			if k == "key" {
				return nil, invalid(n.line, "use the key field instead of a key prop")
			}
			if vdom.IsEventProp(k) {
				props[k] = vdom.EventHandler(func(any) {})
				continue
			}
			props[k] = normalize(k, v)
		}
		args = append(args, props)
	}
	// A single text child becomes element text, as vdom.H does for strings.
	if len(children) == 1 && children[0].Kind == vdom.KindText {
		args = append(args, children[0].Text)
	} else {
		args = append(args, children)
	}
	return vdom.H(n.Tag, args...), nil
}

// normalize converts YAML collections into the shapes hosts accept for
// class and style.
func normalize(key string, v any) any {
	switch key {
	case "class":
		if list, ok := v.([]any); ok {
			out := make([]string, len(list))
			for i, c := range list {
				out[i] = fmt.Sprint(c)
			}
			return out
		}
	case "style":
		if m, ok := v.(map[string]any); ok {
			out := make(map[string]string, len(m))
			for name, val := range m {
				out[name] = fmt.Sprint(val)
			}
			return out
		}
	}
	return v
}

func (n *Node) leaf(kind string) error {
	if n.Key != "" || len(n.Props) > 0 || len(n.Children) > 0 {
		return invalid(n.line, kind+" nodes take no key, props or children")
	}
	return nil
}

func (n *Node) buildChildren() ([]*vdom.Node, error) {
	if len(n.Children) == 0 {
		return nil, nil
	}
	out := make([]*vdom.Node, 0, len(n.Children))
	for i := range n.Children {
		c, err := n.Children[i].Build()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func invalid(line int, msg string) error {
	if line > 0 {
		msg = fmt.Sprintf("line %d: %s", line, msg)
	}
	return errors.New("F001").WithDetail(msg)
}

// Parse reads every YAML document in r as one tree, in order.
func Parse(r io.Reader) ([]*vdom.Node, error) {
	dec := yaml.NewDecoder(r)
	var trees []*vdom.Node
	for {
		var n Node
		err := dec.Decode(&n)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.New("F001").Wrap(err)
		}
		tree, err := n.Build()
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
	if len(trees) == 0 {
		return nil, errors.New("F001").WithDetail("fixture holds no documents")
	}
	return trees, nil
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(data []byte) ([]*vdom.Node, error) {
	return Parse(bytes.NewReader(data))
}

// Load reads every tree in the file at path.
func Load(path string) ([]*vdom.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New("F001").
			WithDetail("Cannot open fixture " + path).
			Wrap(err)
	}
	defer f.Close()
	return Parse(f)
}

// Marshal writes a vdom tree back out as a fixture document.
// Components and event handlers have no fixture form; components are
// skipped and handlers are written as true.
func Marshal(tree *vdom.Node) ([]byte, error) {
	n, ok := fromVDOM(tree)
	if !ok {
		return nil, errors.New("F001").WithDetail("tree root has no fixture form")
	}
	return yaml.Marshal(n)
}

func fromVDOM(v *vdom.Node) (Node, bool) {
	switch v.Kind {
	case vdom.KindText:
		s := v.Text
		return Node{Text: &s}, true
	case vdom.KindComment:
		s := v.Text
		return Node{Comment: &s}, true
	case vdom.KindFragment:
		return Node{Fragment: true, Key: v.Key, Children: childrenFromVDOM(v.Children)}, true
	case vdom.KindElement:
		n := Node{Tag: v.Tag, Key: v.Key}
		if len(v.Props) > 0 {
			n.Props = make(map[string]any, len(v.Props))
			for k, val := range v.Props {
				if vdom.IsEventProp(k) {
					val = true
				}
				n.Props[k] = val
			}
		}
		if v.HasTextChildren() {
			s := v.Text
			n.Children = []Node{{Text: &s}}
		} else {
			n.Children = childrenFromVDOM(v.Children)
		}
		return n, true
	}
	return Node{}, false
}

func childrenFromVDOM(children []*vdom.Node) []Node {
	var out []Node
	for _, c := range children {
		if n, ok := fromVDOM(c); ok {
			out = append(out, n)
		}
	}
	return out
}
