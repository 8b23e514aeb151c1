package analysis

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

// LateralArea is the lateral surface of a frustum with end radii r0, r1 and axial length L:
// π(r0 + r1)·√((r0 − r1)² + L²).
func LateralArea(r0, r1, L float64) float64 {
	dr := r0 - r1
	return math.Pi * (r0 + r1) * math.Sqrt(dr*dr+L*L)
}

// CapArea is the area of both end discs, π(r0² + r1²).
func CapArea(r0, r1 float64) float64 {
	return math.Pi * (r0*r0 + r1*r1)
}

// FrustumVolume is (π·L/3)·(r0² + r0·r1 + r1²).
func FrustumVolume(r0, r1, L float64) float64 {
	return math.Pi * L / 3 * (r0*r0 + r0*r1 + r1*r1)
}

// SegmentLength returns |p_b - p_a|.
func SegmentLength(seg govasc.Segment) float64 {
	return vmath.Distance(seg.A.Pos, seg.B.Pos)
}

// SegmentSurfaceArea returns the lateral area plus both caps, each endpoint taking its own radius.
func SegmentSurfaceArea(seg govasc.Segment) float64 {
	L := SegmentLength(seg)
	return LateralArea(seg.A.Radius, seg.B.Radius, L) + CapArea(seg.A.Radius, seg.B.Radius)
}

// SegmentVolume returns the frustum volume of seg.
func SegmentVolume(seg govasc.Segment) float64 {
	return FrustumVolume(seg.A.Radius, seg.B.Radius, SegmentLength(seg))
}

// Classify returns the axis a segment's length is charged to. ok is false when the segment
// has no length or its two largest direction components are within eps of each other.
func Classify(seg govasc.Segment, eps float64) (axis vmath.Axis, ok bool) {
	p := r3.Sub(seg.B.Pos, seg.A.Pos)
	if vmath.Length(p) == 0 {
		return vmath.AxisX, false
	}
	return vmath.DominantAxis(vmath.Normalize(p), eps)
}

// MeasureSegment evaluates every per-segment contract for seg.
func MeasureSegment(seg govasc.Segment) SegmentMetrics {
	r0, r1 := seg.A.Radius, seg.B.Radius
	L := SegmentLength(seg)
	lateral := LateralArea(r0, r1, L)
	axis, aligned := Classify(seg, vmath.Epsilon)
	return SegmentMetrics{
		Section:     seg.Section,
		Index:       seg.Index,
		Length:      L,
		LateralArea: lateral,
		SurfaceArea: lateral + CapArea(r0, r1),
		Volume:      FrustumVolume(r0, r1, L),
		Midpoint:    vmath.Midpoint(seg.A.Pos, seg.B.Pos),
		Axis:        axis,
		Aligned:     aligned,
	}
}

// Segments measures every segment, sections in canonical order and segments in stored order.
func Segments(M *govasc.Morphology) []SegmentMetrics {
	out := make([]SegmentMetrics, 0, M.NumSegments())
	M.EachSegment(func(seg govasc.Segment) {
		out = append(out, MeasureSegment(seg))
	})
	return out
}

// AlignmentOf charges each segment's length to its dominant axis, or to Other on a tie.
func AlignmentOf(M *govasc.Morphology) Alignment {
	return alignmentOf(Segments(M))
}

func alignmentOf(segs []SegmentMetrics) Alignment {
	var A Alignment
	for _, sm := range segs {
		if !sm.Aligned {
			A.Other += sm.Length
			if sm.Length > 0 {
				A.Ties++
			}
			continue
		}
		switch sm.Axis {
		case vmath.AxisX:
			A.X += sm.Length
		case vmath.AxisY:
			A.Y += sm.Length
		case vmath.AxisZ:
			A.Z += sm.Length
		}
	}
	return A
}
