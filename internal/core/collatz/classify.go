package collatz

import (
	"math/big"

	"collatzgraph/internal/domain"
)

// Classify computes the classification tuple of n.
//
// The color boundaries 2^L + 2^(L-3) and 3*2^(L-1) are compared against n
// scaled by 8, so they stay exact rationals for L < 3: 1 is red, 3 and 7
// are blue and 5 is green.
func Classify(n *big.Int) (domain.Tuple, error) {
	if err := checkValue(n); err != nil {
		return domain.Tuple{}, err
	}
	return classify(n), nil
}

func classify(n *big.Int) domain.Tuple {
	length := Length(n)
	mod3 := int(new(big.Int).Mod(n, three).Int64())
	color := colorOf(n, length)
	return domain.Tuple{
		Mod3:   mod3,
		Length: length,
		Color:  color,
		Parity: parityOf(mod3, length, color),
	}
}

func colorOf(n *big.Int, length int) domain.Color {
	scaled := new(big.Int).Lsh(n, 3)

	// 8 * 3*2^(L-1)
	center := new(big.Int).Lsh(three, uint(length+2))
	if scaled.Cmp(center) >= 0 {
		return domain.ColorBlue
	}

	// 8 * (2^L + 2^(L-3))
	shortCut := new(big.Int).Lsh(one, uint(length+3))
	shortCut.Add(shortCut, new(big.Int).Lsh(one, uint(length)))
	if scaled.Cmp(shortCut) < 0 {
		return domain.ColorRed
	}
	return domain.ColorGreen
}

// parityOf gives the bit-length parity shared by every predecessor
func parityOf(mod3, length int, color domain.Color) domain.Parity {
	if mod3 == 0 {
		return domain.ParityNone
	}
	odd := length%2 == 1
	blue := color == domain.ColorBlue
	if mod3 == 2 {
		odd = !odd
	}
	if odd != blue {
		return domain.ParityOdd
	}
	return domain.ParityEven
}
