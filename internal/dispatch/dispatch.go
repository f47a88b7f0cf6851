// Package dispatch runs partitions of a bounded expansion as independent
// jobs, locally or on remote workers, and reduces their tables.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"collatzgraph/internal/core/collatz"
	"collatzgraph/internal/domain"
)

// Job asks a worker to tabulate the bounded expansion of a seed list.
// Seeds are decimal strings so jobs travel over JSON unchanged.
type Job struct {
	ID       string   `json:"id"`
	Seeds    []string `json:"seeds" validate:"required,min=1,dive,numeric"`
	BitBound int      `json:"bit_bound" validate:"gte=0"`
}

// JobResult is what a worker sends back
type JobResult struct {
	JobID    string                `json:"job_id"`
	Table    domain.FrequencyTable `json:"table"`
	Duration time.Duration         `json:"duration"`
}

// Submitter hands jobs to something that can execute them
type Submitter interface {
	// Submit starts the job and returns immediately
	Submit(ctx context.Context, job Job) *Future
	// Name identifies the submitter in logs and metrics
	Name() string
}

// Future is the pending result of a submitted job
type Future struct {
	done   chan struct{}
	result JobResult
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// failedFuture returns a future that is already resolved with err
func failedFuture(err error) *Future {
	f := newFuture()
	f.resolve(JobResult{}, err)
	return f
}

func (f *Future) resolve(result JobResult, err error) {
	f.result = result
	f.err = err
	close(f.done)
}

// Done is closed once the job finished
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the job finished or ctx is done
func (f *Future) Wait(ctx context.Context) (JobResult, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return JobResult{}, ctx.Err()
	}
}

// Execute runs a job in the calling goroutine. It is what local submitters
// and the worker endpoint both call.
func Execute(ctx context.Context, job Job) (JobResult, error) {
	seeds, err := domain.ParseValues(job.Seeds)
	if err != nil {
		return JobResult{}, fmt.Errorf("job %s: %w", job.ID, err)
	}

	start := time.Now()
	table, err := collatz.TabulateExpansion(ctx, seeds, job.BitBound)
	if err != nil {
		return JobResult{}, fmt.Errorf("job %s: %w", job.ID, err)
	}
	return JobResult{JobID: job.ID, Table: table, Duration: time.Since(start)}, nil
}
