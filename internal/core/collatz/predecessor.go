package collatz

import (
	"fmt"
	"math/big"

	"collatzgraph/internal/domain"
)

var (
	one   = big.NewInt(1)
	three = big.NewInt(3)
)

// PredecessorIter yields the odd predecessors of a target in increasing
// order. The first one is (t*2^k - 1)/3 for the smallest k that makes it an
// integer; each following one is 4p + 1.
type PredecessorIter struct {
	next *big.Int
}

// NewPredecessorIter validates target and returns an iterator over its
// predecessors. A target divisible by 3 yields nothing.
func NewPredecessorIter(target *big.Int) (*PredecessorIter, error) {
	if err := checkValue(target); err != nil {
		return nil, err
	}
	return newPredecessorIter(target), nil
}

func newPredecessorIter(target *big.Int) *PredecessorIter {
	var shift uint
	switch new(big.Int).Mod(target, three).Int64() {
	case 0:
		return &PredecessorIter{}
	case 1:
		shift = 2
	case 2:
		shift = 1
	}
	p := new(big.Int).Lsh(target, shift)
	p.Sub(p, one)
	p.Quo(p, three)
	return &PredecessorIter{next: p}
}

// Next returns the next predecessor, or nil when the target has none
func (it *PredecessorIter) Next() *big.Int {
	if it.next == nil {
		return nil
	}
	p := it.next
	n := new(big.Int).Lsh(p, 2)
	it.next = n.Add(n, one)
	return p
}

// Take returns the next count predecessors
func (it *PredecessorIter) Take(count int) []*big.Int {
	if it.next == nil || count <= 0 {
		return nil
	}
	out := make([]*big.Int, 0, count)
	for len(out) < count {
		out = append(out, it.Next())
	}
	return out
}

// Predecessors returns the first count odd predecessors of target in
// increasing order. Every m returned satisfies 3m+1 = target*2^j for some
// j >= 1.
func Predecessors(target *big.Int, count int) ([]*big.Int, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", domain.ErrInvalidArgument, count)
	}
	it, err := NewPredecessorIter(target)
	if err != nil {
		return nil, err
	}
	out := it.Take(count)
	if out == nil {
		out = []*big.Int{}
	}
	return out, nil
}

// EstimateCount guesses how many predecessors of a value of the given bit
// length stay under bitBound: consecutive predecessors grow by a factor of
// about 4, i.e. two bits. The result is at least 1.
func EstimateCount(bitBound, length int) int {
	d := bitBound - length
	var half int
	if d > 0 {
		half = (d + 1) / 2
	} else {
		half = -(-d / 2)
	}
	return max(2+half, 1)
}

// boundedPredecessors returns the predecessors of target that are <= limit,
// without the value 1. It asks for EstimateCount values first and keeps
// pulling from the iterator while the last one is still within the limit.
func boundedPredecessors(target, limit *big.Int, bitBound int) []*big.Int {
	it := newPredecessorIter(target)
	batch := it.Take(EstimateCount(bitBound, Length(target)))
	for len(batch) > 0 && batch[len(batch)-1].Cmp(limit) <= 0 {
		batch = append(batch, it.Next())
	}

	kept := batch[:0]
	for _, p := range batch {
		if p.Cmp(limit) > 0 {
			break
		}
		if p.Cmp(one) == 0 {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// Length is the position of the highest set bit of n (floor(log2 n))
func Length(n *big.Int) int {
	return n.BitLen() - 1
}

// Limit returns 2^bitBound, the largest value kept under bitBound
func Limit(bitBound int) *big.Int {
	return new(big.Int).Lsh(one, uint(bitBound))
}

func checkValue(n *big.Int) error {
	if n == nil {
		return fmt.Errorf("%w: nil value", domain.ErrInvalidArgument)
	}
	if n.Sign() <= 0 {
		return fmt.Errorf("%w: value %s is not positive", domain.ErrInvalidArgument, n)
	}
	return nil
}
