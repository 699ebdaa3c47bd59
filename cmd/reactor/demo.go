package main

import (
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// demoBoard is a counter above a keyed list that rotates by one on each
// click, so every rotation is a single move.
var demoBoard = &vdom.ComponentType{
	Name: "Board",
	Setup: func(ctx *vdom.SetupContext) any {
		rt := ctx.Runtime()
		count := reactive.NewRef(rt, 0)
		items := reactive.NewRef(rt, []string{"alpha", "beta", "gamma", "delta", "epsilon"})

		increment := func(any) { count.Set(count.Peek() + 1) }
		rotate := func(any) {
			cur := items.Peek()
			next := make([]string, 0, len(cur))
			next = append(next, cur[1:]...)
			next = append(next, cur[0])
			items.Set(next)
		}

		return vdom.RenderFunc(func() *vdom.Node {
			return vdom.Div(
				vdom.Class("board"),
				vdom.Button(vdom.ID("count"), vdom.On("click", increment), vdom.Textf("count %d", count.Get())),
				vdom.Button(vdom.ID("rotate"), vdom.On("click", rotate), "rotate"),
				vdom.Ul(vdom.Range(items.Get(), func(item string, _ int) *vdom.Node {
					return vdom.Li(vdom.Key(item), item)
				})),
			)
		})
	},
}
