// Package geo provides the 3-D position and duration helpers shared by
// every other package in the planner. Positions live in a single
// unit-less Cartesian frame.
package geo

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Position is an immutable point in the shared 3-D frame. Once assigned
// it is never mutated in place; transforms produce new values.
type Position struct {
	vec mgl64.Vec3
}

// NewPosition builds a Position from its three components.
func NewPosition(x, y, z float64) Position {
	return Position{vec: mgl64.Vec3{x, y, z}}
}

// X, Y, Z expose the individual components.
func (p Position) X() float64 { return p.vec[0] }
func (p Position) Y() float64 { return p.vec[1] }
func (p Position) Z() float64 { return p.vec[2] }

// Vec3 returns the underlying mgl64 vector, for callers that want to
// compose with other mathgl operations.
func (p Position) Vec3() mgl64.Vec3 { return p.vec }

// Equal reports whether two positions are bit-identical.
func (p Position) Equal(o Position) bool { return p.vec == o.vec }

// Distance returns the Euclidean distance between two positions.
func Distance(a, b Position) float64 {
	return b.vec.Sub(a.vec).Len()
}

// Interpolate returns a + r*(b-a) componentwise, for r in [0,1]. Callers
// may pass r outside [0,1]; the result is simply the affine extension.
func Interpolate(a, b Position, r float64) Position {
	return Position{vec: a.vec.Add(b.vec.Sub(a.vec).Mul(r))}
}

// RoundToSeconds strips sub-second fractions from a duration using
// half-up rounding, so durations compared against slot widths never
// disagree because of a stray millisecond.
func RoundToSeconds(d time.Duration) time.Duration {
	const unit = time.Second
	if d >= 0 {
		return ((d + unit/2) / unit) * unit
	}
	return -(((-d + unit/2) / unit) * unit)
}
