package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/san-kum/ropelab/internal/rope"
)

// PairSpectrum is the frequency recovered for one pair.
type PairSpectrum struct {
	Pair      int
	Theta     float64
	Recovered float64
	Peak      float64 // fractional FFT bin of the peak
	Error     float64 // |Recovered - Theta|
}

// Resolution is the bin width in radians per position for n samples.
func Resolution(n int) float64 {
	return 2 * math.Pi / float64(n)
}

// Signal samples cos(m·theta) for m in [0, n).
func Signal(theta float64, n int) []float64 {
	out := make([]float64, n)
	for m := range out {
		out[m] = math.Cos(float64(m) * theta)
	}
	return out
}

// PowerSpectrum returns the magnitude of the first n/2 bins of a
// Hann-windowed copy of data.
func PowerSpectrum(data []float64) []float64 {
	x := append([]float64(nil), data...)
	window.Apply(x, window.Hann)
	spec := fft.FFTReal(x)

	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// RecoverTheta finds the dominant frequency of cos(m·theta) over n
// positions. Frequencies at or above π alias and cannot be recovered.
func RecoverTheta(theta float64, n int) (PairSpectrum, error) {
	if n < 16 || n&(n-1) != 0 {
		return PairSpectrum{}, fmt.Errorf("sample count %d must be a power of two >= 16", n)
	}
	ps := PowerSpectrum(Signal(theta, n))

	// bins 0 and 1 carry the window's DC leakage
	k := 2
	for i := 3; i < len(ps)-1; i++ {
		if ps[i] > ps[k] {
			k = i
		}
	}
	peak := float64(k)
	if k > 0 && k < len(ps)-1 {
		a, b, c := ps[k-1], ps[k], ps[k+1]
		if den := a - 2*b + c; den != 0 {
			peak += 0.5 * (a - c) / den
		}
	}

	rec := peak * Resolution(n)
	return PairSpectrum{
		Theta:     theta,
		Recovered: rec,
		Peak:      peak,
		Error:     math.Abs(rec - theta),
	}, nil
}

// RecoverThetas runs RecoverTheta for every pair of thetas.
func RecoverThetas(thetas rope.ThetaTable, n int) ([]PairSpectrum, error) {
	out := make([]PairSpectrum, len(thetas))
	for i, theta := range thetas {
		ps, err := RecoverTheta(theta, n)
		if err != nil {
			return nil, err
		}
		ps.Pair = i
		out[i] = ps
	}
	return out, nil
}
