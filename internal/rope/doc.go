// Package rope provides the numeric core of rotary positional embeddings.
//
// A vector of even dimension d is split into d/2 independent pairs. Pair i
// rotates by theta_i = base^(-2i/d) radians for every unit of position:
//
//   - [Theta]: frequency of a single pair
//   - [ComputeThetas]: the full [ThetaTable] for a base and dimension
//   - [RotatePair]: a plain 2D rotation
//   - [RotateVector]: every pair of a [Vector] rotated for a position
//   - [RotateBy]: every pair rotated by its own multiple of theta
//
// # Relative Position
//
// The block-diagonal rotation matrices satisfy R_m^T R_n = R_(n-m), so the
// attention score of a rotated query and key depends only on m-n:
//
//	naive := rope.BlockProduct(m, n, thetas)
//	closed := rope.RelativeBlocks(m, n, thetas)
//	drift := naive.MaxDiff(closed) // ~1e-16
//
// All functions are pure. Vectors are never modified in place.
package rope
