package collatz

import (
	"fmt"
	"math/big"

	"collatzgraph/internal/domain"
)

// MaxSequenceSteps caps forward trajectories
const MaxSequenceSteps = 1 << 20

// Trajectory is the forward Collatz sequence of a value
type Trajectory struct {
	Start *big.Int
	Steps []*big.Int // every term, Start first and 1 last
	Odd   []*big.Int // odd terms only
}

// Level is the number of 3n+1 steps taken, i.e. the value's level in the
// reverse tree rooted at 1
func (t *Trajectory) Level() int {
	return len(t.Odd) - 1
}

// Sequence follows n -> n/2 (even) and n -> 3n+1 (odd) down to 1. A walk
// longer than MaxSequenceSteps fails with domain.ErrLimitExceeded.
func Sequence(n *big.Int) (*Trajectory, error) {
	if err := checkValue(n); err != nil {
		return nil, err
	}

	t := &Trajectory{Start: n}
	a := new(big.Int).Set(n)
	for steps := 0; ; steps++ {
		if steps > MaxSequenceSteps {
			return nil, fmt.Errorf("%w: trajectory of %s longer than %d steps",
				domain.ErrLimitExceeded, n, MaxSequenceSteps)
		}
		t.Steps = append(t.Steps, a)
		if a.Bit(0) == 1 {
			t.Odd = append(t.Odd, a)
		}
		if a.Cmp(one) == 0 {
			return t, nil
		}

		next := new(big.Int)
		if a.Bit(0) == 0 {
			next.Rsh(a, 1)
		} else {
			next.Mul(a, three)
			next.Add(next, one)
		}
		a = next
	}
}

// OddLevel returns the level of n: how many odd steps its trajectory takes
// to reach 1
func OddLevel(n *big.Int) (int, error) {
	t, err := Sequence(n)
	if err != nil {
		return 0, err
	}
	return t.Level(), nil
}
