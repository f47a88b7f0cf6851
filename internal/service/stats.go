package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"collatzgraph/internal/codec"
	"collatzgraph/internal/dispatch"
	"collatzgraph/internal/domain"
	"collatzgraph/internal/repository"
)

// RunProgress is the payload of run progress events
type RunProgress struct {
	SweepID  string `json:"sweep_id,omitempty"`
	Seeds    string `json:"seeds"`
	BitBound int    `json:"bit_bound"`
	Done     int    `json:"done"`
	Total    int    `json:"total"`
}

// SweepRequest describes a statistics sweep over a range of bit bounds
type SweepRequest struct {
	Seeds    []*big.Int
	MinBound int
	MaxBound int
}

// StatsService computes, persists and reports runs
type StatsService struct {
	repo     repository.Repository
	runner   *dispatch.Runner
	eventBus *EventBus
	limits   limitsHolder
	logger   *zap.Logger

	// background sweeps live as long as the service, not the request
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStatsService creates a new statistics service
func NewStatsService(repo repository.Repository, runner *dispatch.Runner, eventBus *EventBus, limits Limits, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &StatsService{
		repo:     repo,
		runner:   runner,
		eventBus: eventBus,
		logger:   logger.Named("stats"),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.limits.set(limits)
	return s
}

// SetLimits replaces the request limits
func (s *StatsService) SetLimits(l Limits) {
	s.limits.set(l)
}

// Runner returns the runner used for computations
func (s *StatsService) Runner() *dispatch.Runner {
	return s.runner
}

// Close cancels running sweeps and waits for them to stop
func (s *StatsService) Close() {
	s.cancel()
	s.wg.Wait()
}

// ComputeRun tabulates the bounded expansion of seeds, stores it and
// returns it. PreviousTotal is taken from the stored run of the same seeds
// one bit lower. Without one it is the seed count, since the seeds are
// part of every expansion.
func (s *StatsService) ComputeRun(ctx context.Context, seeds []*big.Int, bitBound int) (*domain.Run, error) {
	return s.computeRun(ctx, "", seeds, bitBound)
}

func (s *StatsService) computeRun(ctx context.Context, sweepID string, seeds []*big.Int, bitBound int) (*domain.Run, error) {
	if err := s.limits.get().checkBound(bitBound); err != nil {
		return nil, err
	}

	seedStrs := domain.FormatValues(seeds)
	key := domain.SeedKey(seedStrs)
	s.eventBus.Publish(Event{
		Type:    EventRunStarted,
		Payload: RunProgress{SweepID: sweepID, Seeds: key, BitBound: bitBound},
	})

	outcome, err := s.runner.Run(ctx, seeds, bitBound, func(p dispatch.Progress) {
		s.eventBus.Publish(Event{
			Type: EventRunProgress,
			Payload: RunProgress{
				SweepID: sweepID, Seeds: key, BitBound: bitBound,
				Done: p.Done, Total: p.Total,
			},
		})
	})
	if err != nil {
		runsTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("run failed", zap.String("seeds", key), zap.Int("bit_bound", bitBound), zap.Error(err))
		s.eventBus.Publish(Event{
			Type:    EventRunFailed,
			Payload: map[string]interface{}{"seeds": key, "bit_bound": bitBound, "error": err.Error()},
		})
		return nil, err
	}

	run := domain.NewRun(seedStrs, bitBound, outcome.Table)
	run.Partitions = outcome.Partitions
	run.Duration = outcome.Duration

	run.PreviousTotal = uint64(len(seeds))
	prev, err := s.repo.FindRun(ctx, key, bitBound-1)
	switch {
	case err == nil:
		run.PreviousTotal = prev.Total
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to look up previous run: %w", err)
	}

	if err := s.repo.SaveRun(ctx, run); err != nil {
		runsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	runsTotal.WithLabelValues("completed").Inc()
	runDuration.Observe(outcome.Duration.Seconds())
	nodesTabulated.Add(float64(run.Total))
	partitionsDispatched.WithLabelValues(s.runner.Submitter().Name()).Add(float64(outcome.Partitions))

	s.logger.Info("run completed",
		zap.String("run", run.ID),
		zap.String("seeds", key),
		zap.Int("bit_bound", bitBound),
		zap.Uint64("total", run.Total),
		zap.Uint64("new", run.NewNodes()),
		zap.Int("partitions", run.Partitions),
		zap.Duration("duration", run.Duration))

	s.eventBus.Publish(Event{Type: EventRunCompleted, Payload: runHeader(run)})
	return run, nil
}

// Sweep computes one run per bit bound from MinBound to MaxBound, in order.
// onRun, when set, is called after each run.
func (s *StatsService) Sweep(ctx context.Context, req SweepRequest, onRun func(*domain.Run)) (*domain.Sweep, error) {
	return s.sweep(ctx, "", req, onRun)
}

func (s *StatsService) sweep(ctx context.Context, sweepID string, req SweepRequest, onRun func(*domain.Run)) (*domain.Sweep, error) {
	if err := s.validateSweep(req); err != nil {
		return nil, err
	}

	sweepsInFlight.Inc()
	defer sweepsInFlight.Dec()

	sweep := &domain.Sweep{
		Seeds:    domain.FormatValues(req.Seeds),
		MinBound: req.MinBound,
		MaxBound: req.MaxBound,
	}
	for bound := req.MinBound; bound <= req.MaxBound; bound++ {
		run, err := s.computeRun(ctx, sweepID, req.Seeds, bound)
		if err != nil {
			return sweep, fmt.Errorf("bit bound %d: %w", bound, err)
		}
		sweep.Runs = append(sweep.Runs, run)
		if onRun != nil {
			onRun(run)
		}
	}
	return sweep, nil
}

// StartSweep validates req and runs the sweep in the background, reporting
// through events. It returns the sweep ID carried by those events.
func (s *StatsService) StartSweep(req SweepRequest) (string, error) {
	if err := s.validateSweep(req); err != nil {
		return "", err
	}

	id := uuid.NewString()
	payload := map[string]interface{}{
		"sweep_id":  id,
		"seeds":     domain.SeedKey(domain.FormatValues(req.Seeds)),
		"min_bound": req.MinBound,
		"max_bound": req.MaxBound,
	}
	s.eventBus.Publish(Event{Type: EventSweepStarted, Payload: payload})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sweep, err := s.sweep(s.ctx, id, req, nil)
		if err != nil {
			s.logger.Warn("sweep failed", zap.String("sweep", id), zap.Error(err))
			s.eventBus.Publish(Event{
				Type:    EventSweepFailed,
				Payload: map[string]interface{}{"sweep_id": id, "error": err.Error()},
			})
			return
		}
		ids := make([]string, len(sweep.Runs))
		for i, r := range sweep.Runs {
			ids[i] = r.ID
		}
		s.eventBus.Publish(Event{
			Type:    EventSweepCompleted,
			Payload: map[string]interface{}{"sweep_id": id, "runs": ids},
		})
	}()
	return id, nil
}

func (s *StatsService) validateSweep(req SweepRequest) error {
	if len(req.Seeds) == 0 {
		return fmt.Errorf("%w: no seeds", domain.ErrInvalidArgument)
	}
	if req.MinBound > req.MaxBound {
		return fmt.Errorf("%w: min bound %d above max bound %d", domain.ErrInvalidArgument, req.MinBound, req.MaxBound)
	}
	limits := s.limits.get()
	if err := limits.checkBound(req.MinBound); err != nil {
		return err
	}
	return limits.checkBound(req.MaxBound)
}

// GetRun returns a stored run with its table
func (s *StatsService) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	return s.repo.GetRun(ctx, id)
}

// ListRuns returns stored run headers, newest first
func (s *StatsService) ListRuns(ctx context.Context, filter repository.RunFilter) ([]*domain.Run, error) {
	return s.repo.ListRuns(ctx, filter)
}

// DeleteRun removes a stored run
func (s *StatsService) DeleteRun(ctx context.Context, id string) error {
	if err := s.repo.DeleteRun(ctx, id); err != nil {
		return err
	}
	s.eventBus.Publish(Event{Type: EventRunDeleted, Payload: map[string]string{"run_id": id}})
	return nil
}

// ExportRun writes a stored run in the given format
func (s *StatsService) ExportRun(ctx context.Context, id, format string, w io.Writer) (codec.Exporter, error) {
	exp, err := codec.ExporterFor(format)
	if err != nil {
		return nil, err
	}
	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	return exp, exp.Export(run, w)
}

// ImportRun parses a run file, checks it against its digest and stores it
func (s *StatsService) ImportRun(ctx context.Context, data []byte, format string) (*domain.Run, error) {
	imp, err := codec.ImporterFor(format)
	if err != nil {
		return nil, err
	}
	run, err := imp.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}
	s.eventBus.Publish(Event{Type: EventRunImported, Payload: runHeader(run)})
	return run, nil
}

// ExecuteJob runs a single partition job for a remote coordinator
func (s *StatsService) ExecuteJob(ctx context.Context, job dispatch.Job) (dispatch.JobResult, error) {
	if err := s.limits.get().checkBound(job.BitBound); err != nil {
		return dispatch.JobResult{}, err
	}
	start := time.Now()
	result, err := dispatch.Execute(ctx, job)
	if err != nil {
		return dispatch.JobResult{}, err
	}
	s.logger.Debug("job executed",
		zap.String("job", job.ID),
		zap.Int("seeds", len(job.Seeds)),
		zap.Uint64("total", result.Table.Total()),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

// runHeader is a run without its table, for event payloads
func runHeader(run *domain.Run) *domain.Run {
	h := *run
	h.Table = domain.EmptyTable()
	return &h
}
