// Package analysis checks RoPE numerically.
//
//   - [RecoverThetas]: recovers every pair frequency from the spectrum of
//     cos(m·theta) sampled over positions m
//   - [Verify]: runs the rotation invariants over a grid of bases and
//     positions and reports the worst error of each
//
// # Frequency Recovery
//
// Pair i turns theta_i per position, so its x coordinate is a pure tone in
// position space. The FFT peak lands on theta_i:
//
//	spec, _ := analysis.RecoverThetas(thetas, 1<<16)
//	for _, p := range spec {
//	    fmt.Println(p.Pair, p.Theta, p.Recovered)
//	}
package analysis
