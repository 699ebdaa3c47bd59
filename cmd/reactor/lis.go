package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/pkg/renderer"
)

func (c *cli) lisCmd() *cobra.Command {
	var indices bool

	cmd := &cobra.Command{
		Use:   "lis <n> [n...]",
		Short: "Print a longest increasing subsequence",
		Long: `Print a longest strictly increasing subsequence of the given integers.

Zeros mark entries that take no part, as in the reconciler's source map.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arr := make([]int, len(args))
			for i, a := range args {
				n, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("argument %d: %q is not an integer", i+1, a)
				}
				arr[i] = n
			}

			seq := renderer.LongestIncreasingSubsequence(arr)
			out := make([]string, len(seq))
			for i, idx := range seq {
				if indices {
					out[i] = strconv.Itoa(idx)
				} else {
					out[i] = strconv.Itoa(arr[idx])
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(out, " "))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&indices, "indices", "i", false, "Print indices instead of values")

	return cmd
}
