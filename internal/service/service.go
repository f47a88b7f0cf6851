package service

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"

	"go.uber.org/zap"

	"collatzgraph/internal/core/collatz"
	"collatzgraph/internal/domain"
)

// Limits caps what a single request may ask for
type Limits struct {
	MaxPredecessors int // count accepted by Predecessors
	MaxLevels       int // level count accepted by Levels
	MaxGraphNodes   int // node cap of Graph and Levels
	BoundLimit      int // largest bit bound accepted anywhere
}

// DefaultLimits returns the limits used when none are configured
func DefaultLimits() Limits {
	return Limits{
		MaxPredecessors: 1000,
		MaxLevels:       64,
		MaxGraphNodes:   5000,
		BoundLimit:      40,
	}
}

func (l Limits) checkBound(bitBound int) error {
	if bitBound < 0 {
		return fmt.Errorf("%w: negative bit bound %d", domain.ErrInvalidArgument, bitBound)
	}
	if bitBound > l.BoundLimit {
		return fmt.Errorf("%w: bit bound %d above limit %d", domain.ErrLimitExceeded, bitBound, l.BoundLimit)
	}
	return nil
}

// limitsHolder lets config reloads swap limits under running services
type limitsHolder struct {
	v atomic.Pointer[Limits]
}

func (h *limitsHolder) get() Limits {
	if l := h.v.Load(); l != nil {
		return *l
	}
	return DefaultLimits()
}

func (h *limitsHolder) set(l Limits) {
	h.v.Store(&l)
}

// LevelService answers queries about single values and small levels
type LevelService struct {
	limits limitsHolder
	logger *zap.Logger
}

// NewLevelService creates a new level service
func NewLevelService(limits Limits, logger *zap.Logger) *LevelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &LevelService{logger: logger.Named("levels")}
	s.limits.set(limits)
	return s
}

// SetLimits replaces the request limits
func (s *LevelService) SetLimits(l Limits) {
	s.limits.set(l)
}

// Limits returns the current request limits
func (s *LevelService) Limits() Limits {
	return s.limits.get()
}

// Predecessors returns the first count predecessors of target
func (s *LevelService) Predecessors(target *big.Int, count int) ([]*big.Int, error) {
	queriesTotal.WithLabelValues("predecessors").Inc()
	if limit := s.limits.get().MaxPredecessors; count > limit {
		return nil, fmt.Errorf("%w: count %d above limit %d", domain.ErrLimitExceeded, count, limit)
	}
	return collatz.Predecessors(target, count)
}

// Classify returns the classification tuple of n
func (s *LevelService) Classify(n *big.Int) (domain.Tuple, error) {
	queriesTotal.WithLabelValues("classify").Inc()
	return collatz.Classify(n)
}

// Sequence returns the forward trajectory of n
func (s *LevelService) Sequence(n *big.Int) (*collatz.Trajectory, error) {
	queriesTotal.WithLabelValues("sequence").Inc()
	return collatz.Sequence(n)
}

// Levels returns the level dictionary rooted at 1. More than MaxGraphNodes
// values in total fails with domain.ErrLimitExceeded.
func (s *LevelService) Levels(numLevels, bitBound int) ([][]*big.Int, error) {
	queriesTotal.WithLabelValues("levels").Inc()
	limits := s.limits.get()
	if err := limits.checkBound(bitBound); err != nil {
		return nil, err
	}
	if numLevels > limits.MaxLevels {
		return nil, fmt.Errorf("%w: %d levels above limit %d", domain.ErrLimitExceeded, numLevels, limits.MaxLevels)
	}
	return collatz.Levels(numLevels, bitBound, limits.MaxGraphNodes)
}

// Graph returns the bounded expansion tree of seed. maxNodes <= 0 or above
// the configured cap uses the cap.
func (s *LevelService) Graph(ctx context.Context, seed *big.Int, bitBound, maxNodes int) (*domain.Graph, error) {
	queriesTotal.WithLabelValues("graph").Inc()
	limits := s.limits.get()
	if err := limits.checkBound(bitBound); err != nil {
		return nil, err
	}
	if maxNodes <= 0 || maxNodes > limits.MaxGraphNodes {
		maxNodes = limits.MaxGraphNodes
	}

	g, err := collatz.ExpandTree(ctx, seed, bitBound, maxNodes)
	if err != nil {
		s.logger.Debug("graph expansion stopped",
			zap.String("seed", seed.String()), zap.Int("bit_bound", bitBound), zap.Error(err))
		return nil, err
	}
	return g, nil
}
