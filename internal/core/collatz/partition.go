package collatz

import (
	"fmt"
	"math/big"
	"sort"

	"collatzgraph/internal/domain"
)

// Partition splits values into exactly numParts lists of similar workload.
//
// Values are grouped by residue mod 3. Class 1 is sorted ascending and
// class 2 descending so small and large subtrees pair up, class 0 (which
// has no predecessors) ascending. Each class is dealt round-robin: part k
// gets class[k], class[k+numParts], ... Parts may be empty.
func Partition(values []*big.Int, numParts int) ([][]*big.Int, error) {
	if numParts <= 0 {
		return nil, fmt.Errorf("%w: part count %d", domain.ErrInvalidArgument, numParts)
	}

	var classes [3][]*big.Int
	m := new(big.Int)
	for _, v := range values {
		if err := checkValue(v); err != nil {
			return nil, err
		}
		r := m.Mod(v, three).Int64()
		classes[r] = append(classes[r], v)
	}

	for r, class := range classes {
		desc := r == 2
		sort.SliceStable(class, func(i, j int) bool {
			c := class[i].Cmp(class[j])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	parts := make([][]*big.Int, numParts)
	for _, r := range []int{1, 2, 0} {
		for i, v := range classes[r] {
			k := i % numParts
			parts[k] = append(parts[k], v)
		}
	}
	return parts, nil
}
