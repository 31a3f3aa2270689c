package rope

import (
	"fmt"
	"math"
)

type Vector []float64

// NewVector copies vals into a Vector after checking the dimension and that
// every component is finite.
func NewVector(vals ...float64) (Vector, error) {
	if err := checkDim(len(vals)); err != nil {
		return nil, err
	}
	v := make(Vector, len(vals))
	copy(v, vals)
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVector, vals)
	}
	return v, nil
}

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) Pairs() int { return len(v) / 2 }

func (v Vector) Pair(i int) (x, y float64) {
	return v[2*i], v[2*i+1]
}

func (v Vector) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func (v Vector) Dot(other Vector) float64 {
	sum := 0.0
	for i := range v {
		if i < len(other) {
			sum += v[i] * other[i]
		}
	}
	return sum
}

// IsValid reports whether every component is finite.
func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// ThetaTable holds one rotation frequency per pair, in pair order.
type ThetaTable []float64

// Angles returns the unreduced rotation angle of every pair at position.
func (t ThetaTable) Angles(position float64) []float64 {
	out := make([]float64, len(t))
	for i, theta := range t {
		out[i] = position * theta
	}
	return out
}

// Degrees returns how far each pair turns per unit of position.
func (t ThetaTable) Degrees() []float64 {
	out := make([]float64, len(t))
	for i, theta := range t {
		out[i] = theta * 180 / math.Pi
	}
	return out
}

func (t ThetaTable) Clone() ThetaTable {
	c := make(ThetaTable, len(t))
	copy(c, t)
	return c
}

func checkDim(d int) error {
	if d <= 0 || d%2 != 0 {
		return fmt.Errorf("%w: d=%d must be even and positive", ErrInvalidDimension, d)
	}
	return nil
}

func checkBase(base float64) error {
	if math.IsNaN(base) || math.IsInf(base, 0) || base <= 0 {
		return fmt.Errorf("%w: %g must be positive and finite", ErrInvalidBase, base)
	}
	return nil
}
