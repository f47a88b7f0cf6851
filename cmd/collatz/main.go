// Command collatz enumerates and tabulates the reverse Collatz tree from the
// command line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"collatzgraph/internal/config"
	"collatzgraph/internal/logging"
)

// cli holds the state shared by every subcommand
type cli struct {
	configPath string
	verbose    bool
	loadedFrom string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "collatz",
		Short: "Explore the reverse Collatz tree",
		Long: `collatz enumerates odd predecessors, classifies values, expands
bounded levels of the reverse tree and tabulates their statistics.

Examples:
  collatz predecessors 5 -n 4
  collatz classify 7 13 17
  collatz levels -l 3 -b 12
  collatz stats --seed 1 --min 10 --max 24 -o report.txt`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: search standard locations)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.predecessorsCmd(),
		c.classifyCmd(),
		c.sequenceCmd(),
		c.levelsCmd(),
		c.expandCmd(),
		c.graphCmd(),
		c.statsCmd(),
		c.mergeCmd(),
		c.runsCmd(),
		c.exportCmd(),
		c.configCmd(),
	)
	return root
}

// init loads the config and builds the logger
func (c *cli) init() error {
	var err error
	if c.configPath != "" {
		c.cfg, c.loadedFrom, err = config.LoadFromPath(c.configPath)
	} else {
		c.cfg, c.loadedFrom, err = config.Load()
	}
	if err != nil {
		return err
	}

	logCfg := c.cfg.Log
	logCfg.Development = true
	if c.verbose {
		logCfg.Level = "debug"
	} else if logCfg.Level == "info" {
		// keep stdout for results
		logCfg.Level = "warn"
	}
	c.logger, err = logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
