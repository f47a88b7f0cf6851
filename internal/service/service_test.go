package service

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collatzgraph/internal/core/collatz"
	"collatzgraph/internal/dispatch"
	"collatzgraph/internal/domain"
	"collatzgraph/internal/repository"
	"collatzgraph/internal/repository/sqlite"
)

func one() []*big.Int {
	return []*big.Int{big.NewInt(1)}
}

func newStatsService(t *testing.T) (*StatsService, *EventBus) {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	settings := dispatch.Settings{Workers: 2, MaxBoundOnMachine: 20, BreakPoint: 5}
	runner := dispatch.NewRunner(dispatch.NewLocalSubmitter(settings.Workers, nil), settings, nil)
	bus := NewEventBus()
	svc := NewStatsService(repo, runner, bus, DefaultLimits(), nil)
	t.Cleanup(svc.Close)
	return svc, bus
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	fast := make(chan Event, 1)
	slow := make(chan Event)
	bus.Subscribe(fast)
	bus.Subscribe(slow)

	bus.Publish(Event{Type: EventRunDeleted})

	select {
	case e := <-fast:
		assert.Equal(t, EventRunDeleted, e.Type)
	default:
		t.Fatal("expected event on buffered subscriber")
	}
}

func TestLevelServiceLimits(t *testing.T) {
	svc := NewLevelService(Limits{MaxPredecessors: 5, MaxLevels: 3, MaxGraphNodes: 4, BoundLimit: 12}, nil)

	t.Run("predecessor count", func(t *testing.T) {
		_, err := svc.Predecessors(big.NewInt(1), 6)
		assert.True(t, errors.Is(err, domain.ErrLimitExceeded))
		preds, err := svc.Predecessors(big.NewInt(1), 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "5", "21"}, domain.FormatValues(preds))
	})

	t.Run("levels", func(t *testing.T) {
		_, err := svc.Levels(4, 10)
		assert.True(t, errors.Is(err, domain.ErrLimitExceeded))
		_, err = svc.Levels(2, 13)
		assert.True(t, errors.Is(err, domain.ErrLimitExceeded))
		_, err = svc.Levels(2, -1)
		assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
		levels, err := svc.Levels(2, 4)
		require.NoError(t, err)
		assert.Len(t, levels, 3)
	})

	t.Run("levels use the node cap", func(t *testing.T) {
		// 1 + 4 + 9 values at bound 10
		_, err := svc.Levels(2, 10)
		assert.True(t, errors.Is(err, domain.ErrLimitExceeded))
	})

	t.Run("graph uses the node cap", func(t *testing.T) {
		_, err := svc.Graph(context.Background(), big.NewInt(1), 10, 0)
		assert.True(t, errors.Is(err, domain.ErrLimitExceeded))
		_, err = svc.Graph(context.Background(), big.NewInt(1), 10, 100)
		assert.True(t, errors.Is(err, domain.ErrLimitExceeded))
		g, err := svc.Graph(context.Background(), big.NewInt(1), 4, 0)
		require.NoError(t, err)
		assert.Len(t, g.Nodes, 4)
	})

	t.Run("set limits", func(t *testing.T) {
		svc.SetLimits(DefaultLimits())
		assert.Equal(t, DefaultLimits(), svc.Limits())
		_, err := svc.Predecessors(big.NewInt(1), 6)
		assert.NoError(t, err)
	})
}

func TestLevelServiceQueries(t *testing.T) {
	svc := NewLevelService(DefaultLimits(), nil)

	tuple, err := svc.Classify(big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, domain.Tuple{Mod3: 2, Length: 2, Color: domain.ColorGreen, Parity: domain.ParityOdd}, tuple)

	traj, err := svc.Sequence(big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, 2, traj.Level())

	before := testutil.ToFloat64(queriesTotal.WithLabelValues("classify"))
	_, _ = svc.Classify(big.NewInt(7))
	assert.Equal(t, before+1, testutil.ToFloat64(queriesTotal.WithLabelValues("classify")))
}

func TestComputeRun(t *testing.T) {
	svc, _ := newStatsService(t)
	ctx := context.Background()

	completedBefore := testutil.ToFloat64(runsTotal.WithLabelValues("completed"))

	run, err := svc.ComputeRun(ctx, one(), 12)
	require.NoError(t, err)

	want, err := collatz.TabulateExpansion(ctx, one(), 12)
	require.NoError(t, err)
	assert.True(t, run.Table.Equal(want))
	assert.Equal(t, want.Total(), run.Total)
	assert.Equal(t, uint64(1), run.PreviousTotal, "the seed is seen before any bound")
	assert.NoError(t, run.Verify())

	stored, err := svc.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, stored.Table.Equal(want))

	next, err := svc.ComputeRun(ctx, one(), 13)
	require.NoError(t, err)
	assert.Equal(t, run.Total, next.PreviousTotal)

	assert.Equal(t, completedBefore+2, testutil.ToFloat64(runsTotal.WithLabelValues("completed")))

	pair, err := svc.ComputeRun(ctx, []*big.Int{big.NewInt(5), big.NewInt(7)}, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), pair.PreviousTotal)
	assert.Equal(t, uint64(0), pair.NewNodes())
}

func TestComputeRunLimits(t *testing.T) {
	svc, _ := newStatsService(t)
	svc.SetLimits(Limits{BoundLimit: 8})

	_, err := svc.ComputeRun(context.Background(), one(), 9)
	assert.True(t, errors.Is(err, domain.ErrLimitExceeded))
	_, err = svc.ComputeRun(context.Background(), one(), -1)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestSweep(t *testing.T) {
	svc, bus := newStatsService(t)
	events := make(chan Event, 1024)
	bus.Subscribe(events)

	var seen []int
	sweep, err := svc.Sweep(context.Background(), SweepRequest{Seeds: one(), MinBound: 3, MaxBound: 7}, func(r *domain.Run) {
		seen = append(seen, r.BitBound)
	})
	require.NoError(t, err)
	require.Len(t, sweep.Runs, 5)
	assert.Equal(t, []int{3, 4, 5, 6, 7}, seen)

	for i := 1; i < len(sweep.Runs); i++ {
		assert.Equal(t, sweep.Runs[i-1].Total, sweep.Runs[i].PreviousTotal)
		assert.GreaterOrEqual(t, sweep.Runs[i].Total, sweep.Runs[i-1].Total)
	}

	runs, err := svc.ListRuns(context.Background(), repository.RunFilter{Seeds: "1"})
	require.NoError(t, err)
	assert.Len(t, runs, 5)

	completed := 0
	for len(events) > 0 {
		if e := <-events; e.Type == EventRunCompleted {
			completed++
		}
	}
	assert.Equal(t, 5, completed)
}

func TestSweepValidation(t *testing.T) {
	svc, _ := newStatsService(t)

	tests := []struct {
		name string
		req  SweepRequest
		want error
	}{
		{"no seeds", SweepRequest{MinBound: 1, MaxBound: 2}, domain.ErrInvalidArgument},
		{"inverted range", SweepRequest{Seeds: one(), MinBound: 5, MaxBound: 2}, domain.ErrInvalidArgument},
		{"negative bound", SweepRequest{Seeds: one(), MinBound: -1, MaxBound: 2}, domain.ErrInvalidArgument},
		{"above limit", SweepRequest{Seeds: one(), MinBound: 1, MaxBound: 99}, domain.ErrLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.StartSweep(tt.req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestStartSweep(t *testing.T) {
	svc, bus := newStatsService(t)
	events := make(chan Event, 1024)
	bus.Subscribe(events)

	id, err := svc.StartSweep(SweepRequest{Seeds: one(), MinBound: 2, MaxBound: 5})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	timeout := time.After(10 * time.Second)
	for {
		select {
		case e := <-events:
			if e.Type == EventSweepFailed {
				t.Fatalf("sweep failed: %v", e.Payload)
			}
			if e.Type != EventSweepCompleted {
				continue
			}
			payload := e.Payload.(map[string]interface{})
			assert.Equal(t, id, payload["sweep_id"])
			assert.Len(t, payload["runs"], 4)
			return
		case <-timeout:
			t.Fatal("sweep did not complete")
		}
	}
}

func TestExportImportRun(t *testing.T) {
	svc, _ := newStatsService(t)
	ctx := context.Background()

	run, err := svc.ComputeRun(ctx, one(), 8)
	require.NoError(t, err)

	var buf bytes.Buffer
	exp, err := svc.ExportRun(ctx, run.ID, "yaml", &buf)
	require.NoError(t, err)
	assert.Equal(t, "yaml", exp.Format())

	require.NoError(t, svc.DeleteRun(ctx, run.ID))
	_, err = svc.GetRun(ctx, run.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	imported, err := svc.ImportRun(ctx, buf.Bytes(), "yaml")
	require.NoError(t, err)
	assert.Equal(t, run.ID, imported.ID)

	stored, err := svc.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, stored.Table.Equal(run.Table))

	_, err = svc.ExportRun(ctx, run.ID, "xml", &buf)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
	_, err = svc.ExportRun(ctx, "missing", "json", &buf)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestExecuteJob(t *testing.T) {
	svc, _ := newStatsService(t)

	result, err := svc.ExecuteJob(context.Background(), dispatch.Job{ID: "j", Seeds: []string{"5"}, BitBound: 10})
	require.NoError(t, err)
	assert.NotZero(t, result.Table.Total())

	_, err = svc.ExecuteJob(context.Background(), dispatch.Job{ID: "j", Seeds: []string{"5"}, BitBound: 100})
	assert.True(t, errors.Is(err, domain.ErrLimitExceeded))
}
