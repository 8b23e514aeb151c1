package vmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the coincidence tolerance used for sample positions and axis ties.
const Epsilon = 1e-5

// Axis identifies a cartesian axis.
type Axis int

const (
	AxisX Axis = 0
	AxisY Axis = 1
	AxisZ Axis = 2
)

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

// V3 is a convenience constructor for an r3.Vec.
func V3(x, y, z float64) r3.Vec {
	return r3.Vec{X: x, Y: y, Z: z}
}

// Length returns the euclidean norm of v.
func Length(v r3.Vec) float64 {
	return r3.Norm(v)
}

// Distance returns |b - a|.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(b, a))
}

// Normalize returns v scaled to unit length, or the zero vector if v has no length.
func Normalize(v r3.Vec) r3.Vec {
	L := r3.Norm(v)
	if L == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/L, v)
}

// Lerp interpolates between a (t=0) and b (t=1).
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Vec{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// LerpScalar interpolates between a (t=0) and b (t=1).
func LerpScalar(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b r3.Vec) r3.Vec {
	return Lerp(a, b, 0.5)
}

// Abs returns v with each component replaced by its absolute value.
func Abs(v r3.Vec) r3.Vec {
	return r3.Vec{X: math.Abs(v.X), Y: math.Abs(v.Y), Z: math.Abs(v.Z)}
}

// Component returns the component of v along the given axis.
func Component(v r3.Vec, axis Axis) float64 {
	switch axis {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// SetComponent returns v with the given axis component replaced.
func SetComponent(v r3.Vec, axis Axis, val float64) r3.Vec {
	switch axis {
	case AxisX:
		v.X = val
	case AxisY:
		v.Y = val
	default:
		v.Z = val
	}
	return v
}

// AbsOrder returns the axes of v ordered by descending absolute component.
// Equal components keep x < y < z order.
func AbsOrder(v r3.Vec) [3]Axis {
	a := Abs(v)
	order := [3]Axis{AxisX, AxisY, AxisZ}
	for i := 1; i < 3; i++ {
		for j := i; j > 0 && Component(a, order[j]) > Component(a, order[j-1]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}

// DominantAxis returns the axis holding the strictly largest absolute component of v.
// ok is false when the two largest components are within tol of each other.
func DominantAxis(v r3.Vec, tol float64) (axis Axis, ok bool) {
	order := AbsOrder(v)
	a := Abs(v)
	first := Component(a, order[0])
	second := Component(a, order[1])
	if first-second <= tol {
		return order[0], false
	}
	return order[0], true
}

// Approx reports whether a and b agree componentwise within tol.
func Approx(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// IsFinite reports whether every component of v is finite.
func IsFinite(v r3.Vec) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Perpendicular returns a unit vector orthogonal to the unit vector t.
// The choice is stable: it crosses t with the axis t is least aligned with.
func Perpendicular(t r3.Vec) r3.Vec {
	order := AbsOrder(t)
	ref := SetComponent(r3.Vec{}, order[2], 1)
	return Normalize(r3.Cross(t, ref))
}

// EmptyBox returns a box that any point will expand.
func EmptyBox() r3.Box {
	inf := math.Inf(1)
	return r3.Box{
		Min: r3.Vec{X: inf, Y: inf, Z: inf},
		Max: r3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

// ExpandBox grows box to contain p.
func ExpandBox(box r3.Box, p r3.Vec) r3.Box {
	box.Min = r3.Vec{X: math.Min(box.Min.X, p.X), Y: math.Min(box.Min.Y, p.Y), Z: math.Min(box.Min.Z, p.Z)}
	box.Max = r3.Vec{X: math.Max(box.Max.X, p.X), Y: math.Max(box.Max.Y, p.Y), Z: math.Max(box.Max.Z, p.Z)}
	return box
}

// BoxCenter returns (Min + Max) / 2.
func BoxCenter(box r3.Box) r3.Vec {
	return Midpoint(box.Min, box.Max)
}

// BoxDiagonal returns |Max - Min|.
func BoxDiagonal(box r3.Box) float64 {
	return Distance(box.Min, box.Max)
}

// BoxContains reports whether p lies within box, inclusive.
func BoxContains(box r3.Box, p r3.Vec) bool {
	return p.X >= box.Min.X && p.X <= box.Max.X &&
		p.Y >= box.Min.Y && p.Y <= box.Max.Y &&
		p.Z >= box.Min.Z && p.Z <= box.Max.Z
}
