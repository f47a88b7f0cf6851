package domain

import (
	"math"
	"math/big"
)

// BreakdownRow is one (class, parity, color) cell of the statistics breakdown
type BreakdownRow struct {
	Mod3   int     `json:"mod3"`
	Color  Color   `json:"color"`
	Parity Parity  `json:"parity"`
	Count  uint64  `json:"count"`
	Ratio  float64 `json:"ratio"` // Count over all values of the class
}

// LengthRow counts the values of one bit length
type LengthRow struct {
	Length      int       `json:"length"`
	Count       uint64    `json:"count"`
	MaxPossible *big.Int  `json:"max_possible"`
	Fraction    float64   `json:"fraction"`
	ByMod3      [3]uint64 `json:"by_mod3"`
}

// Summary is the derived view of a table printed by statistics reports
type Summary struct {
	Total      uint64         `json:"total"`
	Bits       float64        `json:"bits"` // log2(Total)
	ByMod3     [3]uint64      `json:"by_mod3"`
	EvenByMod3 [3]uint64      `json:"even_by_mod3"`
	OddByMod3  [3]uint64      `json:"odd_by_mod3"`
	Breakdown  []BreakdownRow `json:"breakdown"`
	Lengths    []LengthRow    `json:"lengths"`
}

// MaxPossibleOfLength returns how many odd numbers have bit length j:
// 1 for j == 0, otherwise 2^(j-1)
func MaxPossibleOfLength(j int) *big.Int {
	if j <= 0 {
		return big.NewInt(1)
	}
	return new(big.Int).Lsh(big.NewInt(1), uint(j-1))
}

// Summarize derives the report view of t. Length rows cover 0..bitBound-1.
func Summarize(t FrequencyTable, bitBound int) Summary {
	s := Summary{Total: t.Total()}
	if s.Total > 0 {
		s.Bits = math.Log2(float64(s.Total))
	}

	for _, e := range t.Entries() {
		if e.Mod3 < 0 || e.Mod3 > 2 {
			continue
		}
		s.ByMod3[e.Mod3] += e.Count
		switch e.Parity {
		case ParityEven:
			s.EvenByMod3[e.Mod3] += e.Count
		case ParityOdd:
			s.OddByMod3[e.Mod3] += e.Count
		}
	}

	for mod3 := 1; mod3 <= 2; mod3++ {
		for _, parity := range []Parity{ParityEven, ParityOdd} {
			for _, color := range Colors {
				m, p, c := mod3, parity, color
				count := t.Sum(func(k Tuple) bool {
					return k.Mod3 == m && k.Parity == p && k.Color == c
				})
				row := BreakdownRow{Mod3: m, Color: c, Parity: p, Count: count}
				if s.ByMod3[m] > 0 {
					row.Ratio = float64(count) / float64(s.ByMod3[m])
				}
				s.Breakdown = append(s.Breakdown, row)
			}
		}
	}

	for j := 0; j < bitBound; j++ {
		row := LengthRow{Length: j, MaxPossible: MaxPossibleOfLength(j)}
		for mod3 := 0; mod3 < 3; mod3++ {
			length, m := j, mod3
			row.ByMod3[mod3] = t.Sum(func(k Tuple) bool { return k.Length == length && k.Mod3 == m })
			row.Count += row.ByMod3[mod3]
		}
		row.Fraction, _ = new(big.Float).Quo(
			new(big.Float).SetUint64(row.Count),
			new(big.Float).SetInt(row.MaxPossible),
		).Float64()
		s.Lengths = append(s.Lengths, row)
	}

	return s
}
