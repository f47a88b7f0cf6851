package domain

import "fmt"

// Color is the positional zone of a value inside its bit-length interval
// [2^c, 2^(c+1)).
type Color int8

const (
	ColorRed   Color = -1 // [2^c, 2^c + 2^(c-3))
	ColorGreen Color = 0  // [2^c + 2^(c-3), 3*2^(c-1))
	ColorBlue  Color = 1  // [3*2^(c-1), 2^(c+1))
)

// Colors lists the colors in report order
var Colors = []Color{ColorRed, ColorGreen, ColorBlue}

// String returns the color name used in reports and graph output
func (c Color) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	case ColorBlue:
		return "blue"
	default:
		return fmt.Sprintf("color(%d)", int8(c))
	}
}

// Valid reports whether c is one of the three zones
func (c Color) Valid() bool {
	return c >= ColorRed && c <= ColorBlue
}

// Parity describes the bit-length parity shared by all predecessors of a value
type Parity int8

const (
	ParityNone Parity = -1 // divisible by 3, no predecessors
	ParityEven Parity = 0
	ParityOdd  Parity = 1
)

// String returns the parity name
func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return fmt.Sprintf("parity(%d)", int8(p))
	}
}

// Valid reports whether p is a known parity
func (p Parity) Valid() bool {
	return p >= ParityNone && p <= ParityOdd
}

// Tuple is the classification key of a value. It is the key type of
// FrequencyTable and must stay exactly (mod3, length, color, parity).
type Tuple struct {
	Mod3   int    `json:"mod3" yaml:"mod3"`
	Length int    `json:"length" yaml:"length"`
	Color  Color  `json:"color" yaml:"color"`
	Parity Parity `json:"parity" yaml:"parity"`
}

// String formats the tuple the way reports print keys
func (t Tuple) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", t.Mod3, t.Length, t.Color, t.Parity)
}

// Validate checks the field ranges
func (t Tuple) Validate() error {
	if t.Mod3 < 0 || t.Mod3 > 2 {
		return fmt.Errorf("%w: mod3 %d out of range", ErrInvalidArgument, t.Mod3)
	}
	if t.Length < 0 {
		return fmt.Errorf("%w: negative length %d", ErrInvalidArgument, t.Length)
	}
	if !t.Color.Valid() {
		return fmt.Errorf("%w: color %d out of range", ErrInvalidArgument, t.Color)
	}
	if !t.Parity.Valid() {
		return fmt.Errorf("%w: parity %d out of range", ErrInvalidArgument, t.Parity)
	}
	return nil
}

// Less orders tuples by length, then mod3, color and parity
func (t Tuple) Less(o Tuple) bool {
	if t.Length != o.Length {
		return t.Length < o.Length
	}
	if t.Mod3 != o.Mod3 {
		return t.Mod3 < o.Mod3
	}
	if t.Color != o.Color {
		return t.Color < o.Color
	}
	return t.Parity < o.Parity
}
