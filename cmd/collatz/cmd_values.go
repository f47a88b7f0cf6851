package main

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"collatzgraph/internal/codec"
	"collatzgraph/internal/core/collatz"
	"collatzgraph/internal/domain"
)

func (c *cli) predecessorsCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "predecessors <target>",
		Short: "List the first odd predecessors of a value",
		Long: `Lists the first odd values p with 3p+1 = target * 2^k, smallest first.
Multiples of 3 have none.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := domain.ParseValue(args[0])
			if err != nil {
				return err
			}
			preds, err := collatz.Predecessors(target, count)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(preds) == 0 {
				fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%s has no odd predecessors", target)))
				return nil
			}
			for _, p := range preds {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of predecessors")
	return cmd
}

func (c *cli) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <n>...",
		Short: "Show the (mod 3, length, color, parity) tuple of values",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := domain.ParseValues(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range values {
				t, err := collatz.Classify(n)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s  %s  %s\n",
					colorStyle(t.Color).Render(n.String()),
					t,
					mutedStyle.Render(fmt.Sprintf("mod3=%d length=%d color=%s parity=%s",
						t.Mod3, t.Length, t.Color, t.Parity)))
			}
			return nil
		},
	}
}

func (c *cli) sequenceCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "sequence <n>",
		Short: "Follow the forward Collatz sequence of a value down to 1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := domain.ParseValue(args[0])
			if err != nil {
				return err
			}
			traj, err := collatz.Sequence(n)
			if err != nil {
				return err
			}
			terms := traj.Odd
			if all {
				terms = traj.Steps
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, strings.Join(domain.FormatValues(terms), " "))
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("level %d, %s steps", traj.Level(), humanize.Comma(int64(len(traj.Steps)-1)))))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "print even terms too")
	return cmd
}

func (c *cli) levelsCmd() *cobra.Command {
	var numLevels, bound int
	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Print the level dictionary rooted at 1",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			levels, err := collatz.Levels(numLevels, bound, 0)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, level := range levels {
				fmt.Fprintf(out, "%s %s\n",
					titleStyle.Render(fmt.Sprintf("level %d", i)),
					mutedStyle.Render(fmt.Sprintf("(%d)", len(level))))
				if len(level) > 0 {
					fmt.Fprintln(out, strings.Join(domain.FormatValues(level), " "))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&numLevels, "levels", "l", 5, "number of levels above 1")
	cmd.Flags().IntVarP(&bound, "bound", "b", 20, "bit bound")
	return cmd
}

func (c *cli) expandCmd() *cobra.Command {
	var bound int
	var countOnly bool
	cmd := &cobra.Command{
		Use:   "expand <seed>...",
		Short: "Print every value of the bounded expansion of the seeds",
		Long: `Walks the reverse tree above the seeds breadth first, keeping odd
predecessors below 2^bound, and prints each value reached.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := domain.ParseValues(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			total := 0
			err = collatz.Walk(cmd.Context(), seeds, bound, func(level int, frontier []*big.Int) error {
				total += len(frontier)
				if countOnly {
					return nil
				}
				for _, v := range frontier {
					if _, err := fmt.Fprintln(out, v); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			if countOnly {
				fmt.Fprintln(out, total)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&bound, "bound", "b", 20, "bit bound")
	cmd.Flags().BoolVar(&countOnly, "count", false, "print only the number of values")
	return cmd
}

func (c *cli) graphCmd() *cobra.Command {
	var bound, maxNodes int
	var format, output string
	cmd := &cobra.Command{
		Use:   "graph <seed>",
		Short: "Export the bounded expansion tree as DOT or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := domain.ParseValue(args[0])
			if err != nil {
				return err
			}
			if maxNodes <= 0 {
				maxNodes = c.cfg.Enumeration.MaxGraphNodes
			}

			var exp codec.GraphExporter
			switch format {
			case "dot":
				exp = codec.NewDOTCodec()
			case "json":
				exp = codec.NewJSONCodec()
			default:
				return fmt.Errorf("%w: format must be dot or json, got %q", domain.ErrInvalidArgument, format)
			}

			g, err := collatz.ExpandTree(cmd.Context(), seed, bound, maxNodes)
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return exp.ExportGraph(g, w)
			})
		},
	}
	cmd.Flags().IntVarP(&bound, "bound", "b", 10, "bit bound")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "node cap (default: enumeration.max_graph_nodes)")
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "dot or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// writeOutput runs write against path, or against stdout when path is empty
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
