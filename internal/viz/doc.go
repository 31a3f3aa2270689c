// Package viz renders ropelab in the terminal.
//
// [Model] is a Bubble Tea program over a lab: one column per token showing
// the pairs being rotated, braille frequency dials drawn on a [Canvas], the
// theta table and the outcome figure.
//
// # Key Bindings
//
//	Space - Play/pause the frequency dials
//	A     - Apply rotation to every token
//	R     - Reset every demo
//	+/-   - Nudge the base by one slider step
//	[ ]   - Seek the dials by 64 positions
//	0     - Seek the dials to 0
//	T     - Cycle color themes
//	?     - Show help
package viz
