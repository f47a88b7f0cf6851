package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"collatzgraph/internal/config"
)

func (c *cli) configCmd() *cobra.Command {
	var write bool
	var path string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective config, or write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !write {
				if c.loadedFrom != "" {
					fmt.Fprintln(out, mutedStyle.Render("Loaded from "+c.loadedFrom))
				} else {
					fmt.Fprintln(out, mutedStyle.Render("No config file found, using defaults. Searched:"))
					for _, p := range config.SearchPaths() {
						fmt.Fprintln(out, mutedStyle.Render("  "+p))
					}
				}
				fmt.Fprintln(out, c.cfg.Summary())
				return nil
			}

			if path == "" {
				path = config.DefaultConfigPath()
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintln(out, "wrote "+path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "init", false, "write a default config file")
	cmd.Flags().StringVar(&path, "path", "", "where --init writes (default: XDG config dir)")
	return cmd
}
