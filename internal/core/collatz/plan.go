package collatz

import (
	"context"
	"fmt"
	"math/big"

	"collatzgraph/internal/domain"
)

// FarmPlan splits a bounded expansion into a part computed up front and a
// farm list whose subtrees are expanded independently
type FarmPlan struct {
	// Prefix counts the seeds and every value shorter than the break point
	Prefix domain.FrequencyTable
	// Farm holds the values that reached the break point. Their own
	// expansions (each value included) complete the count.
	Farm []*big.Int
}

// PlanFarm expands seeds serially while values have fewer than breakPoint
// bits. Values at or past the break point are not expanded further and are
// collected into the farm list instead.
//
// Prefix merged with TabulateExpansion of every farm subset equals
// TabulateExpansion of seeds.
func PlanFarm(ctx context.Context, seeds []*big.Int, bitBound, breakPoint int) (*FarmPlan, error) {
	if err := checkSeeds(seeds, bitBound); err != nil {
		return nil, err
	}
	if breakPoint < 0 {
		return nil, fmt.Errorf("%w: negative break point %d", domain.ErrInvalidArgument, breakPoint)
	}

	plan := &FarmPlan{}
	prefix := domain.NewTableBuilder()
	limit := Limit(bitBound)

	frontier := seeds
	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, v := range frontier {
			prefix.Add(classify(v))
		}

		var next []*big.Int
		for _, p := range nextFrontier(frontier, limit, bitBound) {
			if Length(p) < breakPoint {
				next = append(next, p)
			} else {
				plan.Farm = append(plan.Farm, p)
			}
		}
		frontier = next
	}

	plan.Prefix = prefix.Build()
	return plan, nil
}
