package collatz

import (
	"context"
	"math/big"

	"collatzgraph/internal/domain"
)

// Tabulate classifies every value and counts the tuples. Repeated values
// are counted once per occurrence.
func Tabulate(values []*big.Int) (domain.FrequencyTable, error) {
	b := domain.NewTableBuilder()
	for _, v := range values {
		if err := checkValue(v); err != nil {
			return domain.FrequencyTable{}, err
		}
		b.Add(classify(v))
	}
	return b.Build(), nil
}

// TabulateExpansion counts the bounded expansion of seeds level by level,
// merging one small table per level instead of holding every value
func TabulateExpansion(ctx context.Context, seeds []*big.Int, bitBound int) (domain.FrequencyTable, error) {
	total := domain.EmptyTable()
	err := Walk(ctx, seeds, bitBound, func(_ int, frontier []*big.Int) error {
		t, err := Tabulate(frontier)
		if err != nil {
			return err
		}
		total = domain.Merge(total, t)
		return nil
	})
	if err != nil {
		return domain.FrequencyTable{}, err
	}
	return total, nil
}
