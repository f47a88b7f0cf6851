package repository

import (
	"context"

	"collatzgraph/internal/domain"
)

// RunFilter narrows ListRuns
type RunFilter struct {
	// Seeds matches domain.SeedKey of the run's seeds; empty matches all
	Seeds string
	// Limit caps the number of runs returned; 0 means no cap
	Limit int
}

// Repository defines the interface for run persistence
type Repository interface {
	// SaveRun stores a run and its table, replacing a run with the same ID
	SaveRun(ctx context.Context, run *domain.Run) error
	// GetRun loads a run with its table. Missing runs return an error
	// wrapping domain.ErrNotFound.
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	// FindRun loads the newest run for a seed list and bit bound
	FindRun(ctx context.Context, seeds string, bitBound int) (*domain.Run, error)
	// ListRuns returns run headers, newest first, without their tables
	ListRuns(ctx context.Context, filter RunFilter) ([]*domain.Run, error)
	// DeleteRun removes a run and its table
	DeleteRun(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
