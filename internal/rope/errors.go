package rope

import "errors"

// Domain errors for rotation operations.
var (
	// ErrInvalidDimension indicates an odd or non-positive dimension, or a pair
	// index outside [0, d/2).
	ErrInvalidDimension = errors.New("rope: invalid dimension")

	// ErrInvalidBase indicates a base that is non-positive, not finite, or
	// outside the allowed range.
	ErrInvalidBase = errors.New("rope: invalid base")

	// ErrInvalidPosition indicates a negative sequence position.
	ErrInvalidPosition = errors.New("rope: invalid position")

	// ErrInvalidVector indicates a NaN or infinite component.
	ErrInvalidVector = errors.New("rope: invalid vector")
)
