package rope

import (
	"fmt"
	"math"
)

// Theta returns base^(-2i/d), the angle pair i turns per unit of position.
func Theta(i int, base float64, d int) (float64, error) {
	if err := checkDim(d); err != nil {
		return 0, err
	}
	if i < 0 || i >= d/2 {
		return 0, fmt.Errorf("%w: pair %d outside [0, %d)", ErrInvalidDimension, i, d/2)
	}
	if err := checkBase(base); err != nil {
		return 0, err
	}
	return math.Pow(base, -float64(2*i)/float64(d)), nil
}

// ComputeThetas derives the frequency of every pair for a dimension d.
func ComputeThetas(base float64, d int) (ThetaTable, error) {
	if err := checkDim(d); err != nil {
		return nil, err
	}
	t := make(ThetaTable, d/2)
	for i := range t {
		theta, err := Theta(i, base, d)
		if err != nil {
			return nil, err
		}
		t[i] = theta
	}
	return t, nil
}

func RotatePair(x, y, angle float64) (float64, float64) {
	sin, cos := math.Sincos(angle)
	return x*cos - y*sin, x*sin + y*cos
}

// RotateVector rotates every pair of v by position*theta_i.
func RotateVector(v Vector, position int, base float64) (Vector, error) {
	if position < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}
	thetas, err := ComputeThetas(base, len(v))
	if err != nil {
		return nil, err
	}
	return rotate(v, thetas, func(int) float64 { return float64(position) }), nil
}

// RotateAt rotates v with a precomputed table.
func RotateAt(v Vector, position int, thetas ThetaTable) (Vector, error) {
	if position < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}
	if err := checkTable(v, thetas); err != nil {
		return nil, err
	}
	return rotate(v, thetas, func(int) float64 { return float64(position) }), nil
}

// RotateBy rotates pair i by multipliers[i]*thetas[i]. Pairs may be at
// different stages, which is what a half-finished animation shows.
func RotateBy(v Vector, multipliers []int, thetas ThetaTable) (Vector, error) {
	if err := checkTable(v, thetas); err != nil {
		return nil, err
	}
	if len(multipliers) != len(thetas) {
		return nil, fmt.Errorf("%w: %d multipliers for %d pairs", ErrInvalidDimension, len(multipliers), len(thetas))
	}
	for i, m := range multipliers {
		if m < 0 {
			return nil, fmt.Errorf("%w: multiplier %d of pair %d", ErrInvalidPosition, m, i)
		}
	}
	return rotate(v, thetas, func(i int) float64 { return float64(multipliers[i]) }), nil
}

func rotate(v Vector, thetas ThetaTable, scale func(i int) float64) Vector {
	out := make(Vector, len(v))
	for i, theta := range thetas {
		x, y := v.Pair(i)
		out[2*i], out[2*i+1] = RotatePair(x, y, scale(i)*theta)
	}
	return out
}

func checkTable(v Vector, thetas ThetaTable) error {
	if err := checkDim(len(v)); err != nil {
		return err
	}
	if len(thetas) != len(v)/2 {
		return fmt.Errorf("%w: table has %d pairs, vector has %d", ErrInvalidDimension, len(thetas), len(v)/2)
	}
	return nil
}
