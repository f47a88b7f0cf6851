package dispatch

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"collatzgraph/internal/core/collatz"
	"collatzgraph/internal/domain"
)

// Settings tune how a run is split
type Settings struct {
	// Workers is how many partitions run at the same time
	Workers int
	// MaxBoundOnMachine is the largest bit bound a single wave of Workers
	// partitions is sized for; each extra bit adds another wave
	MaxBoundOnMachine int
	// BreakPoint is the bit length at which values stop being expanded
	// serially and are farmed out
	BreakPoint int
}

// NumPartitions returns how many parts a run under bitBound is split into
func (s Settings) NumPartitions(bitBound int) int {
	workers := max(s.Workers, 1)
	if bitBound > s.MaxBoundOnMachine {
		return workers * (bitBound - s.MaxBoundOnMachine + 1)
	}
	return workers
}

// Progress is reported after every finished partition
type Progress struct {
	Done  int
	Total int
}

// ProgressFunc receives partition progress. It is called from worker
// goroutines, one call at a time.
type ProgressFunc func(Progress)

// Outcome is the reduced result of a partitioned run
type Outcome struct {
	Table      domain.FrequencyTable
	Partitions int
	FarmSize   int
	Duration   time.Duration
}

// Runner plans a run, farms its partitions to a Submitter and merges the
// returned tables. A failed partition fails the whole run.
type Runner struct {
	submitter Submitter
	logger    *zap.Logger

	mu       sync.RWMutex
	settings Settings
}

// NewRunner creates a runner
func NewRunner(submitter Submitter, settings Settings, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		submitter: submitter,
		settings:  settings,
		logger:    logger.Named("runner"),
	}
}

// Settings returns the current settings
func (r *Runner) Settings() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// workerPool is a submitter whose concurrency can change at runtime
type workerPool interface {
	SetWorkers(workers int)
}

// UpdateSettings replaces the settings used by runs started afterwards and
// resizes the submitter's pool when it has one
func (r *Runner) UpdateSettings(s Settings) {
	r.mu.Lock()
	r.settings = s
	r.mu.Unlock()
	if pool, ok := r.submitter.(workerPool); ok {
		pool.SetWorkers(s.Workers)
	}
	r.logger.Info("dispatch settings updated",
		zap.Int("workers", s.Workers),
		zap.Int("max_bound_on_machine", s.MaxBoundOnMachine),
		zap.Int("break_point", s.BreakPoint))
}

// Submitter returns the submitter jobs go to
func (r *Runner) Submitter() Submitter {
	return r.submitter
}

// Run tabulates the bounded expansion of seeds. The part below the break
// point is computed here; the farm list is partitioned and submitted with
// at most Workers partitions in flight.
func (r *Runner) Run(ctx context.Context, seeds []*big.Int, bitBound int, progress ProgressFunc) (*Outcome, error) {
	settings := r.Settings()
	start := time.Now()

	plan, err := collatz.PlanFarm(ctx, seeds, bitBound, settings.BreakPoint)
	if err != nil {
		return nil, err
	}

	parts, err := collatz.Partition(plan.Farm, settings.NumPartitions(bitBound))
	if err != nil {
		return nil, err
	}

	var jobs []Job
	for _, part := range parts {
		if len(part) == 0 {
			continue
		}
		jobs = append(jobs, Job{
			ID:       uuid.NewString(),
			Seeds:    domain.FormatValues(part),
			BitBound: bitBound,
		})
	}

	r.logger.Debug("run planned",
		zap.Int("bit_bound", bitBound),
		zap.Uint64("prefix", plan.Prefix.Total()),
		zap.Int("farm", len(plan.Farm)),
		zap.Int("jobs", len(jobs)),
		zap.String("submitter", r.submitter.Name()))

	tables := make([]domain.FrequencyTable, len(jobs)+1)
	tables[0] = plan.Prefix

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(settings.Workers, 1))

	var mu sync.Mutex
	done := 0
	for i, job := range jobs {
		g.Go(func() error {
			result, err := r.submitter.Submit(gctx, job).Wait(gctx)
			if err != nil {
				return fmt.Errorf("partition %d/%d: %w", i+1, len(jobs), err)
			}
			tables[i+1] = result.Table

			if progress != nil {
				mu.Lock()
				done++
				progress(Progress{Done: done, Total: len(jobs)})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Outcome{
		Table:      domain.MergeAll(tables...),
		Partitions: len(jobs),
		FarmSize:   len(plan.Farm),
		Duration:   time.Since(start),
	}, nil
}
