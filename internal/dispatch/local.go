package dispatch

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// LocalSubmitter executes jobs in goroutines of this process, at most
// workers at a time
type LocalSubmitter struct {
	logger *zap.Logger

	mu      sync.Mutex
	sem     *semaphore.Weighted
	workers int
}

// NewLocalSubmitter creates a submitter running up to workers jobs at once
func NewLocalSubmitter(workers int, logger *zap.Logger) *LocalSubmitter {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalSubmitter{
		sem:     semaphore.NewWeighted(int64(workers)),
		workers: workers,
		logger:  logger.Named("local"),
	}
}

// SetWorkers resizes the pool for jobs submitted afterwards. Jobs already
// holding or waiting for a slot stay on the old pool.
func (s *LocalSubmitter) SetWorkers(workers int) {
	if workers < 1 {
		workers = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if workers == s.workers {
		return
	}
	s.sem = semaphore.NewWeighted(int64(workers))
	s.workers = workers
	s.logger.Info("worker pool resized", zap.Int("workers", workers))
}

// Workers returns the current pool size
func (s *LocalSubmitter) Workers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workers
}

func (s *LocalSubmitter) pool() *semaphore.Weighted {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sem
}

// Name implements Submitter
func (s *LocalSubmitter) Name() string {
	return "local"
}

// Submit implements Submitter. The job waits for a free slot; if ctx ends
// first the future fails with the context error.
func (s *LocalSubmitter) Submit(ctx context.Context, job Job) *Future {
	f := newFuture()
	go func() {
		sem := s.pool()
		if err := sem.Acquire(ctx, 1); err != nil {
			f.resolve(JobResult{}, err)
			return
		}
		defer sem.Release(1)

		result, err := Execute(ctx, job)
		if err != nil {
			s.logger.Warn("job failed", zap.String("job", job.ID), zap.Error(err))
		} else {
			s.logger.Debug("job done",
				zap.String("job", job.ID),
				zap.Int("seeds", len(job.Seeds)),
				zap.Uint64("total", result.Table.Total()),
				zap.Duration("duration", result.Duration))
		}
		f.resolve(result, err)
	}()
	return f
}
