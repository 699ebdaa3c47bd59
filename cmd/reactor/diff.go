package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/fixture"
	"github.com/vango-dev/reactor/pkg/adapter/memory"
	"github.com/vango-dev/reactor/pkg/reactive"
	"github.com/vango-dev/reactor/pkg/renderer"
	"github.com/vango-dev/reactor/pkg/vdom"
)

// step is the outcome of rendering one tree over the previous one.
type step struct {
	Ops  []memory.Op
	HTML string
}

// diffTrees renders trees in order into one document and records the ops
// each render produced. The first step is the initial mount.
func diffTrees(ctx context.Context, logger *slog.Logger, trees []*vdom.Node) ([]step, error) {
	doc := memory.New(memory.WithLogger(logger))
	rt := reactive.NewRuntime(
		reactive.WithLogger(logger),
		reactive.WithDeferrer(reactive.NewManualDeferrer()),
	)
	r := renderer.New(doc, renderer.WithRuntime(rt), renderer.WithLogger(logger))
	root := r.CreateRoot(doc.Root())

	steps := make([]step, 0, len(trees))
	for _, tree := range trees {
		doc.ResetOps()
		if err := root.Render(ctx, tree); err != nil {
			return nil, err
		}
		steps = append(steps, step{Ops: doc.Ops(), HTML: doc.HTML()})
	}
	return steps, nil
}

func (c *cli) diffCmd() *cobra.Command {
	var (
		showHTML  bool
		showCount bool
		skipMount bool
	)

	cmd := &cobra.Command{
		Use:   "diff <fixture> [fixture...]",
		Short: "Print the host operations between successive trees",
		Long: `Render the YAML trees in the given fixtures one after another and
print the host operations each render produced.

A fixture file may hold several trees separated by "---". Trees from all
files are rendered in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var trees []*vdom.Node
			for _, path := range args {
				t, err := fixture.Load(path)
				if err != nil {
					return err
				}
				trees = append(trees, t...)
			}
			if len(trees) < 2 {
				return fmt.Errorf("diff needs at least two trees, got %d", len(trees))
			}

			steps, err := diffTrees(cmd.Context(), c.logger, trees)
			if err != nil {
				return err
			}
			printSteps(cmd.OutOrStdout(), steps, skipMount, showHTML, showCount)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showHTML, "html", false, "Print the resulting HTML after each step")
	cmd.Flags().BoolVar(&showCount, "count", false, "Print an op tally after each step")
	cmd.Flags().BoolVar(&skipMount, "skip-mount", false, "Omit the ops of the initial mount")

	return cmd
}

func printSteps(w io.Writer, steps []step, skipMount, showHTML, showCount bool) {
	s := newStyles(w)
	for i, st := range steps {
		if i == 0 && skipMount {
			continue
		}
		title := fmt.Sprintf("patch %d → %d", i-1, i)
		if i == 0 {
			title = "mount 0"
		}
		fmt.Fprintln(w, s.header.Render(fmt.Sprintf("%s (%d ops)", title, len(st.Ops))))
		for _, op := range st.Ops {
			fmt.Fprintln(w, "  "+s.op(op))
		}
		if showCount {
			counts := memory.Counts(st.Ops)
			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(w, s.dim.Render(fmt.Sprintf("  %-14s %d", name, counts[name])))
			}
		}
		if showHTML {
			fmt.Fprintln(w, s.dim.Render("  "+st.HTML))
		}
	}
}
