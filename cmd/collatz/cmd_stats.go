package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"collatzgraph/internal/app"
	"collatzgraph/internal/codec"
	"collatzgraph/internal/domain"
	"collatzgraph/internal/repository"
	"collatzgraph/internal/repository/sqlite"
	"collatzgraph/internal/service"
)

// openRepo opens the configured database, or a private in-memory one
func (c *cli) openRepo(ephemeral bool) (*sqlite.Repository, error) {
	path := c.cfg.Database.Path
	if ephemeral {
		path = ":memory:"
	}
	return sqlite.New(path)
}

func (c *cli) statsCmd() *cobra.Command {
	var (
		seeds     []string
		minBound  int
		maxBound  int
		output    string
		runsDir   string
		ephemeral bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Sweep a range of bit bounds and write the statistics report",
		Long: `Computes one run per bit bound from --min to --max, storing each run
and writing the statistics report: node counts, residue classes,
descendant parity, the (class, color, parity) breakdown and the
per-length table.

Runs above dispatch.max_bound_on_machine are split into partitions
and dispatched to the configured workers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := c.cfg.Enumeration
			if !cmd.Flags().Changed("seed") {
				seeds = []string{e.Seed}
			}
			if !cmd.Flags().Changed("min") {
				minBound = e.MinBound
			}
			if !cmd.Flags().Changed("max") {
				maxBound = e.MaxBound
			}
			values, err := domain.ParseValues(seeds)
			if err != nil {
				return err
			}

			repo, err := c.openRepo(ephemeral)
			if err != nil {
				return err
			}
			defer repo.Close()

			runner, err := app.NewRunner(c.cfg, c.logger)
			if err != nil {
				return err
			}
			limits := app.Limits(c.cfg)
			if limits.BoundLimit < maxBound {
				limits.BoundLimit = maxBound
			}
			svc := service.NewStatsService(repo, runner, service.NewEventBus(), limits, c.logger)
			defer svc.Close()

			if runsDir != "" {
				if err := os.MkdirAll(runsDir, 0755); err != nil {
					return err
				}
			}

			stderr := cmd.ErrOrStderr()
			var saveErr error
			sweep, err := svc.Sweep(cmd.Context(), service.SweepRequest{
				Seeds:    values,
				MinBound: minBound,
				MaxBound: maxBound,
			}, func(run *domain.Run) {
				fmt.Fprintf(stderr, "%s %s nodes %s %s\n",
					titleStyle.Render(fmt.Sprintf("bound %3d:", run.BitBound)),
					humanize.Comma(int64(run.Total)),
					mutedStyle.Render(fmt.Sprintf("(+%s, %d partitions)", humanize.Comma(int64(run.NewNodes())), run.Partitions)),
					mutedStyle.Render(run.Duration.String()))
				if runsDir != "" && saveErr == nil {
					saveErr = saveRun(runsDir, run)
				}
			})
			if err != nil {
				return err
			}
			if saveErr != nil {
				return saveErr
			}

			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return codec.WriteSweepReport(w, sweep)
			})
		},
	}
	cmd.Flags().StringSliceVar(&seeds, "seed", nil, "seed values (default: enumeration.seed)")
	cmd.Flags().IntVar(&minBound, "min", 0, "smallest bit bound (default: enumeration.min_bound)")
	cmd.Flags().IntVar(&maxBound, "max", 0, "largest bit bound (default: enumeration.max_bound)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "report file (default: stdout)")
	cmd.Flags().StringVar(&runsDir, "runs-dir", "", "also write each run as JSON into this directory")
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "keep runs in memory instead of the database")
	return cmd
}

// saveRun writes run as <dir>/run-<seeds>-<bound>.json
func saveRun(dir string, run *domain.Run) error {
	name := fmt.Sprintf("run-%s-%d.json", strings.ReplaceAll(run.SeedKey(), ",", "_"), run.BitBound)
	return writeOutput(nil, filepath.Join(dir, name), func(w io.Writer) error {
		return codec.NewJSONCodec().Export(run, w)
	})
}

// formatFromPath picks a codec format from a file extension
func formatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

func (c *cli) mergeCmd() *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "merge <run-file>...",
		Short: "Merge partial run files of the same bit bound into one run",
		Long: `Merges run files produced on separate machines, for example one per
seed list, into a single run whose table is the sum of theirs. Every
file is checked against its digest first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runs := make([]*domain.Run, 0, len(args))
			for _, path := range args {
				imp, err := codec.ImporterFor(formatFromPath(path))
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				run, err := imp.Parse(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				runs = append(runs, run)
			}

			merged, err := domain.MergeRuns(runs...)
			if err != nil {
				return err
			}
			if format == "" {
				format = formatFromPath(output)
			}
			if format == "" {
				format = "json"
			}
			exp, err := codec.ExporterFor(format)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s nodes from %d runs\n",
				titleStyle.Render("merged:"), humanize.Comma(int64(merged.Total)), len(runs))
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return exp.Export(merged, w)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "json, yaml or text (default: from output extension, else json)")
	return cmd
}

func (c *cli) runsCmd() *cobra.Command {
	var seed string
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.openRepo(false)
			if err != nil {
				return err
			}
			defer repo.Close()

			runs, err := repo.ListRuns(cmd.Context(), repository.RunFilter{Seeds: seed, Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("no runs stored in "+c.cfg.Database.Path))
				return nil
			}

			var b strings.Builder
			fmt.Fprintf(&b, "%-36s  %-12s  %5s  %14s  %14s  %s\n", "ID", "SEEDS", "BOUND", "NODES", "NEW", "CREATED")
			for _, r := range runs {
				fmt.Fprintf(&b, "%-36s  %-12s  %5d  %14s  %14s  %s\n",
					r.ID, r.SeedKey(), r.BitBound,
					humanize.Comma(int64(r.Total)), humanize.Comma(int64(r.NewNodes())),
					humanize.Time(r.CreatedAt))
			}
			fmt.Fprintln(out, boxStyle.Render(strings.TrimRight(b.String(), "\n")))
			return nil
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "", "only runs of this seed list (comma separated)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of runs")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Write a stored run as JSON, YAML or a text report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := codec.ExporterFor(format)
			if err != nil {
				return err
			}
			repo, err := c.openRepo(false)
			if err != nil {
				return err
			}
			defer repo.Close()

			run, err := repo.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return exp.Export(run, w)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "json, yaml or text")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
