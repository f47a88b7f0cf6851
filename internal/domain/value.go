package domain

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseValue parses a positive decimal integer of any size
func ParseValue(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidArgument, s)
	}
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s is not positive", ErrInvalidArgument, n)
	}
	return n, nil
}

// ParseValues parses every element of ss with ParseValue
func ParseValues(ss []string) ([]*big.Int, error) {
	values := make([]*big.Int, 0, len(ss))
	for _, s := range ss {
		v, err := ParseValue(s)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// FormatValues renders values as decimal strings
func FormatValues(values []*big.Int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
