package collatz

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collatzgraph/internal/domain"
)

func ints(vs ...int64) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = big.NewInt(v)
	}
	return out
}

func strs(vs []*big.Int) []string {
	return domain.FormatValues(vs)
}

func TestPredecessors(t *testing.T) {
	tests := []struct {
		target int64
		count  int
		want   []string
	}{
		{1, 3, []string{"1", "5", "21"}},
		{5, 2, []string{"3", "13"}},
		{5, 4, []string{"3", "13", "53", "213"}},
		{7, 2, []string{"9", "37"}},
		{3, 5, []string{}},
		{21, 5, []string{}},
		{1, 0, []string{}},
	}

	for _, tt := range tests {
		got, err := Predecessors(big.NewInt(tt.target), tt.count)
		require.NoError(t, err)
		assert.Equal(t, tt.want, strs(got), "Predecessors(%d, %d)", tt.target, tt.count)
	}
}

func TestPredecessorsSatisfyInverseMap(t *testing.T) {
	for n := int64(1); n < 200; n += 2 {
		target := big.NewInt(n)
		preds, err := Predecessors(target, 6)
		require.NoError(t, err)

		for _, m := range preds {
			lhs := new(big.Int).Mul(m, three)
			lhs.Add(lhs, one)
			q, r := new(big.Int).QuoRem(lhs, target, new(big.Int))
			require.Zero(t, r.Sign(), "3*%s+1 not a multiple of %d", m, n)
			assert.True(t, q.Cmp(one) > 0 && new(big.Int).And(q, new(big.Int).Sub(q, one)).Sign() == 0,
				"3*%s+1 = %d * %s, not a power of two >= 2", m, n, q)
		}
		for i := 1; i < len(preds); i++ {
			assert.Equal(t, 1, preds[i].Cmp(preds[i-1]), "not strictly increasing for %d", n)
		}
	}
}

func TestPredecessorsLargeTarget(t *testing.T) {
	target, ok := new(big.Int).SetString("340282366920938463463374607431768211457", 10) // 2^128 + 1
	require.True(t, ok)

	preds, err := Predecessors(target, 3)
	require.NoError(t, err)
	require.Len(t, preds, 3)
	for _, m := range preds {
		lhs := new(big.Int).Mul(m, three)
		lhs.Add(lhs, one)
		assert.Zero(t, new(big.Int).Mod(lhs, target).Sign())
	}
}

func TestPredecessorsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		target *big.Int
		count  int
	}{
		{"nil target", nil, 1},
		{"zero target", big.NewInt(0), 1},
		{"negative target", big.NewInt(-5), 1},
		{"negative count", big.NewInt(5), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Predecessors(tt.target, tt.count)
			assert.True(t, errors.Is(err, domain.ErrInvalidArgument), "got %v", err)
		})
	}
}

func TestPredecessorIter(t *testing.T) {
	it, err := NewPredecessorIter(big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, "3", it.Next().String())
	assert.Equal(t, []string{"13", "53"}, strs(it.Take(2)))

	none, err := NewPredecessorIter(big.NewInt(9))
	require.NoError(t, err)
	assert.Nil(t, none.Next())
	assert.Nil(t, none.Take(3))
}

func TestEstimateCount(t *testing.T) {
	tests := []struct {
		bound, length, want int
	}{
		{10, 0, 7},
		{10, 3, 6},
		{5, 5, 2},
		{4, 5, 2},
		{3, 10, 1},
	}

	for _, tt := range tests {
		if got := EstimateCount(tt.bound, tt.length); got != tt.want {
			t.Errorf("EstimateCount(%d, %d) = %d, want %d", tt.bound, tt.length, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		n    int64
		want domain.Tuple
	}{
		{1, domain.Tuple{Mod3: 1, Length: 0, Color: domain.ColorRed, Parity: domain.ParityEven}},
		{3, domain.Tuple{Mod3: 0, Length: 1, Color: domain.ColorBlue, Parity: domain.ParityNone}},
		{5, domain.Tuple{Mod3: 2, Length: 2, Color: domain.ColorGreen, Parity: domain.ParityOdd}},
		{7, domain.Tuple{Mod3: 1, Length: 2, Color: domain.ColorBlue, Parity: domain.ParityOdd}},
		{9, domain.Tuple{Mod3: 0, Length: 3, Color: domain.ColorGreen, Parity: domain.ParityNone}},
		{13, domain.Tuple{Mod3: 1, Length: 3, Color: domain.ColorBlue, Parity: domain.ParityEven}},
		{17, domain.Tuple{Mod3: 2, Length: 4, Color: domain.ColorRed, Parity: domain.ParityOdd}},
		{19, domain.Tuple{Mod3: 1, Length: 4, Color: domain.ColorGreen, Parity: domain.ParityEven}},
	}

	for _, tt := range tests {
		got, err := Classify(big.NewInt(tt.n))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Classify(%d)", tt.n)
	}
}

func TestClassifyParityMatchesPredecessorLengths(t *testing.T) {
	for n := int64(1); n < 2000; n += 2 {
		v := big.NewInt(n)
		tuple, err := Classify(v)
		require.NoError(t, err)

		preds, err := Predecessors(v, 4)
		require.NoError(t, err)
		if n%3 == 0 {
			assert.Equal(t, domain.ParityNone, tuple.Parity)
			continue
		}
		for _, p := range preds {
			want := domain.Parity(Length(p) % 2)
			assert.Equal(t, want, tuple.Parity, "n=%d predecessor %s", n, p)
		}
	}
}

func TestClassifyInvalid(t *testing.T) {
	for _, v := range []*big.Int{nil, big.NewInt(0), big.NewInt(-1)} {
		_, err := Classify(v)
		assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
	}
}

func TestSequence(t *testing.T) {
	traj, err := Sequence(big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "10", "5", "16", "8", "4", "2", "1"}, strs(traj.Steps))
	assert.Equal(t, []string{"3", "5", "1"}, strs(traj.Odd))
	assert.Equal(t, 2, traj.Level())

	level, err := OddLevel(big.NewInt(17))
	require.NoError(t, err)
	assert.Equal(t, 3, level)

	level, err = OddLevel(big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, 0, level)

	_, err = Sequence(big.NewInt(0))
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}
