package viz

import "math"

// TrigTable is a sin/cos lookup with linear interpolation. Dial needles only
// need screen precision, so the live view redraws every frame from it.
type TrigTable struct {
	sin []float64
	cos []float64
	n   int
}

// DialTrig has 4096 entries, about 0.0015 rad apart.
var DialTrig = NewTrigTable(4096)

func NewTrigTable(n int) *TrigTable {
	t := &TrigTable{
		sin: make([]float64, n),
		cos: make([]float64, n),
		n:   n,
	}
	for i := 0; i < n; i++ {
		t.sin[i], t.cos[i] = math.Sincos(float64(i) * 2 * math.Pi / float64(n))
	}
	return t
}

// SinCos reduces x into [0, 2π) before the lookup, so unreduced rotation
// angles can be passed straight in.
func (t *TrigTable) SinCos(x float64) (sin, cos float64) {
	x = math.Mod(x, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}

	idx := x * float64(t.n) / (2 * math.Pi)
	i := int(idx)
	frac := idx - float64(i)

	i0 := i % t.n
	i1 := (i + 1) % t.n

	sin = t.sin[i0]*(1-frac) + t.sin[i1]*frac
	cos = t.cos[i0]*(1-frac) + t.cos[i1]*frac
	return
}
