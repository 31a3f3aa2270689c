package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/ropelab/internal/rope"
)

// Check is the worst error seen for one invariant.
type Check struct {
	Name      string
	Worst     float64
	Tolerance float64
	Where     string // inputs that produced Worst
}

func (c Check) Pass() bool { return c.Worst <= c.Tolerance }

// Grid is the set of inputs Verify sweeps.
type Grid struct {
	Bases     []float64
	Positions []int
	Query     rope.Vector
	Key       rope.Vector
	Tolerance float64
}

// NormDrift is the largest change in norm of v over positions.
func NormDrift(v rope.Vector, positions []int, base float64) (float64, error) {
	n0 := v.Norm()
	worst := 0.0
	for _, p := range positions {
		r, err := rope.RotateVector(v, p, base)
		if err != nil {
			return 0, err
		}
		worst = math.Max(worst, math.Abs(r.Norm()-n0))
	}
	return worst, nil
}

// CompositionError compares rotating by m+n with rotating by m then n.
func CompositionError(v rope.Vector, m, n int, base float64) (float64, error) {
	direct, err := rope.RotateVector(v, m+n, base)
	if err != nil {
		return 0, err
	}
	first, err := rope.RotateVector(v, m, base)
	if err != nil {
		return 0, err
	}
	twice, err := rope.RotateVector(first, n, base)
	if err != nil {
		return 0, err
	}
	return maxAbsDiff(direct, twice), nil
}

// RelativeSpread scores q at m+offset against k at m for every m in
// positions and returns max minus min. Zero means the score only sees the
// offset.
func RelativeSpread(q, k rope.Vector, offset int, positions []int, base float64) (float64, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range positions {
		if p+offset < 0 {
			continue
		}
		s, err := rope.Score(q, k, p+offset, p, base)
		if err != nil {
			return 0, err
		}
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	if lo > hi {
		return 0, nil
	}
	return hi - lo, nil
}

// CollapseError compares the expanded block product with its closed form.
func CollapseError(m, n int, thetas rope.ThetaTable) float64 {
	return rope.BlockProduct(m, n, thetas).MaxDiff(rope.RelativeBlocks(m, n, thetas))
}

// Verify sweeps g and reports one Check per invariant.
func Verify(g Grid) ([]Check, error) {
	if len(g.Query) != len(g.Key) {
		return nil, fmt.Errorf("%w: query %d, key %d", rope.ErrInvalidDimension, len(g.Query), len(g.Key))
	}
	checks := []Check{
		{Name: "norm preserved", Tolerance: g.Tolerance},
		{Name: "rotations compose", Tolerance: g.Tolerance},
		{Name: "score sees only offset", Tolerance: g.Tolerance},
		{Name: "block product collapses", Tolerance: g.Tolerance},
		{Name: "relative score matches", Tolerance: g.Tolerance},
	}
	record := func(i int, v float64, where string) {
		if v > checks[i].Worst || checks[i].Where == "" {
			checks[i].Worst = v
			checks[i].Where = where
		}
	}

	for _, base := range g.Bases {
		thetas, err := rope.ComputeThetas(base, len(g.Query))
		if err != nil {
			return nil, err
		}

		for _, v := range []rope.Vector{g.Query, g.Key} {
			d, err := NormDrift(v, g.Positions, base)
			if err != nil {
				return nil, err
			}
			record(0, d, fmt.Sprintf("base=%g", base))
		}

		for _, m := range g.Positions {
			for _, n := range g.Positions {
				where := fmt.Sprintf("base=%g m=%d n=%d", base, m, n)

				c, err := CompositionError(g.Query, m, n, base)
				if err != nil {
					return nil, err
				}
				record(1, c, where)

				record(3, CollapseError(m, n, thetas), where)

				s, err := rope.Score(g.Query, g.Key, m, n, base)
				if err != nil {
					return nil, err
				}
				r, err := rope.RelativeScore(g.Query, g.Key, m, n, base)
				if err != nil {
					return nil, err
				}
				record(4, math.Abs(s-r), where)
			}
		}

		for _, off := range g.Positions {
			s, err := RelativeSpread(g.Query, g.Key, off, g.Positions, base)
			if err != nil {
				return nil, err
			}
			record(2, s, fmt.Sprintf("base=%g offset=%d", base, off))
		}
	}
	return checks, nil
}

func maxAbsDiff(a, b rope.Vector) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	worst := 0.0
	for i := range a {
		worst = math.Max(worst, math.Abs(a[i]-b[i]))
	}
	return worst
}
