package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/vango-dev/reactor/pkg/adapter/memory"
)

// styles colours CLI output. Colours drop out when w is not a terminal.
type styles struct {
	header lipgloss.Style
	create lipgloss.Style
	insert lipgloss.Style
	move   lipgloss.Style
	remove lipgloss.Style
	prop   lipgloss.Style
	text   lipgloss.Style
	dim    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		create: r.NewStyle().Foreground(lipgloss.Color("2")),
		insert: r.NewStyle().Foreground(lipgloss.Color("10")),
		move:   r.NewStyle().Foreground(lipgloss.Color("11")),
		remove: r.NewStyle().Foreground(lipgloss.Color("9")),
		prop:   r.NewStyle().Foreground(lipgloss.Color("14")),
		text:   r.NewStyle().Foreground(lipgloss.Color("13")),
		dim:    r.NewStyle().Faint(true),
	}
}

func (s styles) op(op memory.Op) string {
	st := s.dim
	switch op.Kind {
	case memory.OpCreateElement, memory.OpCreateText, memory.OpCreateComment:
		st = s.create
	case memory.OpInsert:
		st = s.insert
		if op.Move {
			st = s.move
		}
	case memory.OpRemove:
		st = s.remove
	case memory.OpPatchProp:
		st = s.prop
	case memory.OpSetText, memory.OpSetElementText:
		st = s.text
	}
	return st.Render(op.String())
}
