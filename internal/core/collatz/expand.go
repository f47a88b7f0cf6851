package collatz

import (
	"context"
	"fmt"
	"math/big"

	"collatzgraph/internal/domain"
)

// LevelFunc receives one breadth-first level. Returning an error stops the
// walk and Walk returns that error.
type LevelFunc func(level int, frontier []*big.Int) error

// Walk expands seeds breadth-first under bitBound and hands every frontier
// to fn, level 0 being the seeds themselves. Only predecessors <= 2^bitBound
// are kept and the value 1 is never reintroduced. Duplicates reached through
// different seeds are kept. The context is checked between levels.
func Walk(ctx context.Context, seeds []*big.Int, bitBound int, fn LevelFunc) error {
	if err := checkSeeds(seeds, bitBound); err != nil {
		return err
	}

	limit := Limit(bitBound)
	frontier := seeds
	for level := 0; len(frontier) > 0; level++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(level, frontier); err != nil {
			return err
		}
		frontier = nextFrontier(frontier, limit, bitBound)
	}
	return nil
}

func nextFrontier(frontier []*big.Int, limit *big.Int, bitBound int) []*big.Int {
	var next []*big.Int
	for _, target := range frontier {
		next = append(next, boundedPredecessors(target, limit, bitBound)...)
	}
	return next
}

// Expand returns every value placed in any frontier, seeds included, in
// breadth-first order
func Expand(seeds []*big.Int, bitBound int) ([]*big.Int, error) {
	var out []*big.Int
	err := Walk(context.Background(), seeds, bitBound, func(_ int, frontier []*big.Int) error {
		out = append(out, frontier...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Levels builds the level dictionary rooted at 1: level 0 is {1} and level
// i+1 holds the bounded predecessors of level i. The result has
// numLevels+1 entries; trailing levels may be empty. With maxNodes > 0,
// holding more than maxNodes values across all levels fails with
// domain.ErrLimitExceeded before the level is finished.
func Levels(numLevels, bitBound, maxNodes int) ([][]*big.Int, error) {
	if numLevels < 0 {
		return nil, fmt.Errorf("%w: negative level count %d", domain.ErrInvalidArgument, numLevels)
	}
	if bitBound < 0 {
		return nil, fmt.Errorf("%w: negative bit bound %d", domain.ErrInvalidArgument, bitBound)
	}

	limit := Limit(bitBound)
	levels := make([][]*big.Int, numLevels+1)
	levels[0] = []*big.Int{big.NewInt(1)}
	total := 1
	for i := 0; i < numLevels; i++ {
		var next []*big.Int
		for _, target := range levels[i] {
			preds := boundedPredecessors(target, limit, bitBound)
			total += len(preds)
			if maxNodes > 0 && total > maxNodes {
				return nil, fmt.Errorf("%w: levels exceed %d nodes at level %d",
					domain.ErrLimitExceeded, maxNodes, i+1)
			}
			next = append(next, preds...)
		}
		levels[i+1] = next
	}
	return levels, nil
}

// ExpandTree walks the bounded tree above seed and records it as a graph:
// one node per value with its level and tuple, one edge from each value to
// each of its kept predecessors. With maxNodes > 0, reaching more than
// maxNodes nodes stops the walk; the partial graph is returned marked
// Truncated together with an error wrapping domain.ErrLimitExceeded.
func ExpandTree(ctx context.Context, seed *big.Int, bitBound, maxNodes int) (*domain.Graph, error) {
	if err := checkSeeds([]*big.Int{seed}, bitBound); err != nil {
		return nil, err
	}

	g := domain.NewGraph(seed.String(), bitBound)
	g.AddNode(seed.String(), 0, classify(seed))

	limit := Limit(bitBound)
	frontier := []*big.Int{seed}
	for level := 1; len(frontier) > 0; level++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var next []*big.Int
		for _, parent := range frontier {
			for _, child := range boundedPredecessors(parent, limit, bitBound) {
				if maxNodes > 0 && len(g.Nodes) >= maxNodes {
					g.Truncated = true
					return g, fmt.Errorf("%w: graph of %s under %d bits has more than %d nodes",
						domain.ErrLimitExceeded, seed, bitBound, maxNodes)
				}
				id := child.String()
				g.AddNode(id, level, classify(child))
				g.AddEdge(parent.String(), id)
				next = append(next, child)
			}
		}
		frontier = next
	}
	return g, nil
}

func checkSeeds(seeds []*big.Int, bitBound int) error {
	if bitBound < 0 {
		return fmt.Errorf("%w: negative bit bound %d", domain.ErrInvalidArgument, bitBound)
	}
	if len(seeds) == 0 {
		return fmt.Errorf("%w: no seeds", domain.ErrInvalidArgument)
	}
	for _, s := range seeds {
		if err := checkValue(s); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}
