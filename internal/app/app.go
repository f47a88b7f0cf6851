// Package app turns a loaded config into the runtime pieces shared by the
// server and the CLI.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"collatzgraph/internal/config"
	"collatzgraph/internal/dispatch"
	"collatzgraph/internal/service"
)

// Limits returns the request limits configured in cfg
func Limits(cfg *config.Config) service.Limits {
	return service.Limits{
		MaxPredecessors: cfg.Limits.MaxPredecessors,
		MaxLevels:       cfg.Limits.MaxLevels,
		MaxGraphNodes:   cfg.Enumeration.MaxGraphNodes,
		BoundLimit:      cfg.Limits.BoundLimit,
	}
}

// Settings returns the partitioning settings configured in cfg
func Settings(cfg *config.Config) dispatch.Settings {
	return dispatch.Settings{
		Workers:           cfg.Dispatch.Workers,
		MaxBoundOnMachine: cfg.Dispatch.MaxBoundOnMachine,
		BreakPoint:        cfg.Enumeration.BreakPoint,
	}
}

// NewSubmitter builds the local worker pool or the HTTP submitter selected
// by dispatch.mode
func NewSubmitter(cfg *config.Config, logger *zap.Logger) (dispatch.Submitter, error) {
	switch cfg.Dispatch.Mode {
	case "local":
		return dispatch.NewLocalSubmitter(cfg.Dispatch.Workers, logger), nil
	case "remote":
		return dispatch.NewHTTPSubmitter(cfg.Dispatch.Endpoints,
			dispatch.WithRequestTimeout(cfg.Dispatch.RequestTimeout.Duration()),
			dispatch.WithLogger(logger))
	default:
		return nil, fmt.Errorf("unknown dispatch mode %q", cfg.Dispatch.Mode)
	}
}

// NewRunner builds the partitioned runner for cfg
func NewRunner(cfg *config.Config, logger *zap.Logger) (*dispatch.Runner, error) {
	submitter, err := NewSubmitter(cfg, logger)
	if err != nil {
		return nil, err
	}
	return dispatch.NewRunner(submitter, Settings(cfg), logger), nil
}
