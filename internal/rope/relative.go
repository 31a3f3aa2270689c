package rope

import (
	"fmt"
	"math"
)

// Block is a 2x2 matrix acting on one pair, indexed [row][col].
type Block [2][2]float64

// Blocks is a block-diagonal matrix with one Block per pair.
type Blocks []Block

func rotationBlock(angle float64) Block {
	sin, cos := math.Sincos(angle)
	return Block{
		{cos, -sin},
		{sin, cos},
	}
}

func (b Block) Transpose() Block {
	return Block{
		{b[0][0], b[1][0]},
		{b[0][1], b[1][1]},
	}
}

func (b Block) Mul(o Block) Block {
	var out Block
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			out[r][c] = b[r][0]*o[0][c] + b[r][1]*o[1][c]
		}
	}
	return out
}

// Apply multiplies the block-diagonal matrix with v.
func (bs Blocks) Apply(v Vector) (Vector, error) {
	if len(v) != 2*len(bs) {
		return nil, fmt.Errorf("%w: %d blocks for vector of %d", ErrInvalidDimension, len(bs), len(v))
	}
	out := make(Vector, len(v))
	for i, b := range bs {
		x, y := v.Pair(i)
		out[2*i] = b[0][0]*x + b[0][1]*y
		out[2*i+1] = b[1][0]*x + b[1][1]*y
	}
	return out, nil
}

// MaxDiff returns the largest absolute entry-wise difference. Mismatched
// lengths report +Inf.
func (bs Blocks) MaxDiff(other Blocks) float64 {
	if len(bs) != len(other) {
		return math.Inf(1)
	}
	worst := 0.0
	for i := range bs {
		for r := 0; r < 2; r++ {
			for c := 0; c < 2; c++ {
				worst = math.Max(worst, math.Abs(bs[i][r][c]-other[i][r][c]))
			}
		}
	}
	return worst
}

// RotationMatrix returns R_m, the block-diagonal rotation for a position.
func RotationMatrix(position int, thetas ThetaTable) Blocks {
	bs := make(Blocks, len(thetas))
	for i, theta := range thetas {
		bs[i] = rotationBlock(float64(position) * theta)
	}
	return bs
}

// CompoundTerms are the four products that appear when R_m^T R_n is
// expanded for one pair before the angle-difference identities are applied.
type CompoundTerms struct {
	CosCos float64 // cos(m·θ)cos(n·θ)
	SinSin float64 // sin(m·θ)sin(n·θ)
	CosSin float64 // cos(m·θ)sin(n·θ)
	SinCos float64 // sin(m·θ)cos(n·θ)
}

func Expand(m, n int, theta float64) CompoundTerms {
	sm, cm := math.Sincos(float64(m) * theta)
	sn, cn := math.Sincos(float64(n) * theta)
	return CompoundTerms{
		CosCos: cm * cn,
		SinSin: sm * sn,
		CosSin: cm * sn,
		SinCos: sm * cn,
	}
}

// Block assembles R_m^T R_n from the expanded products.
func (t CompoundTerms) Block() Block {
	return Block{
		{t.CosCos + t.SinSin, t.SinCos - t.CosSin},
		{t.CosSin - t.SinCos, t.SinSin + t.CosCos},
	}
}

// BlockProduct computes R_m^T R_n pair by pair from the naive expansion.
func BlockProduct(m, n int, thetas ThetaTable) Blocks {
	bs := make(Blocks, len(thetas))
	for i, theta := range thetas {
		bs[i] = Expand(m, n, theta).Block()
	}
	return bs
}

// RelativeBlocks is the closed form of R_m^T R_n. Each block holds only
// cos((m-n)·θ_i) and sin((m-n)·θ_i).
func RelativeBlocks(m, n int, thetas ThetaTable) Blocks {
	bs := make(Blocks, len(thetas))
	d := float64(m - n)
	for i, theta := range thetas {
		sin, cos := math.Sincos(d * theta)
		bs[i] = Block{
			{cos, sin},
			{-sin, cos},
		}
	}
	return bs
}

// Score is the attention logit of q rotated to m against k rotated to n.
func Score(q, k Vector, m, n int, base float64) (float64, error) {
	qm, err := RotateVector(q, m, base)
	if err != nil {
		return 0, err
	}
	kn, err := RotateVector(k, n, base)
	if err != nil {
		return 0, err
	}
	return qm.Dot(kn), nil
}

// RelativeScore computes the same logit through the collapsed relative
// rotation, q · (R_m^T R_n k).
func RelativeScore(q, k Vector, m, n int, base float64) (float64, error) {
	if m < 0 || n < 0 {
		return 0, fmt.Errorf("%w: m=%d n=%d", ErrInvalidPosition, m, n)
	}
	thetas, err := ComputeThetas(base, len(q))
	if err != nil {
		return 0, err
	}
	rk, err := RelativeBlocks(m, n, thetas).Apply(k)
	if err != nil {
		return 0, err
	}
	return q.Dot(rk), nil
}
