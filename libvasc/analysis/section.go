package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/skeleton"
)

// statOf returns the min / mean / max / ratio of vals; every field is undefined when vals is empty.
func statOf(vals []float64) Stat {
	if len(vals) == 0 {
		return Stat{}
	}
	min, max := floats.Min(vals), floats.Max(vals)
	return Stat{
		Min:   Some(min),
		Mean:  Some(stat.Mean(vals, nil)),
		Max:   Some(max),
		Ratio: Ratio(min, max),
	}
}

// SectionOf computes the statistics of section si.
func SectionOf(M *govasc.Morphology, si int) SectionStats {
	var segs []SegmentMetrics
	M.SectionSegments(si, func(seg govasc.Segment) {
		segs = append(segs, MeasureSegment(seg))
	})
	return sectionOf(M, si, segs)
}

func sectionOf(M *govasc.Morphology, si int, segs []SegmentMetrics) SectionStats {
	S := &M.Sections[si]
	st := SectionStats{
		Section:     si,
		NumSamples:  len(S.Samples),
		NumSegments: len(segs),
	}

	radii := make([]float64, len(S.Samples))
	for k, i := range S.Samples {
		radii[k] = M.Samples[i].Radius
	}
	st.Radius = statOf(radii)

	lengths := make([]float64, len(segs))
	areas := make([]float64, len(segs))
	volumes := make([]float64, len(segs))
	for k, sm := range segs {
		lengths[k] = sm.Length
		areas[k] = sm.SurfaceArea
		volumes[k] = sm.Volume
		st.Length += sm.Length
		st.SurfaceArea += sm.SurfaceArea
		st.Volume += sm.Volume
	}
	st.SegmentLength = statOf(lengths)
	st.SegmentArea = statOf(areas)
	st.SegmentVolume = statOf(volumes)

	if len(segs) > 0 {
		st.SamplingDensity = Ratio(float64(len(segs)), st.Length)
		if ratio, ok := skeleton.ThicknessToLength(radii[0], radii[len(radii)-1], st.Length); ok {
			st.ThicknessToLength = Some(ratio)
		}
	}
	return st
}

// Sections computes the statistics of every section in canonical order.
func Sections(M *govasc.Morphology) []SectionStats {
	return sectionsOf(M, Segments(M))
}

// sectionsOf slices the canonical segment list back into sections.
func sectionsOf(M *govasc.Morphology, segs []SegmentMetrics) []SectionStats {
	out := make([]SectionStats, len(M.Sections))
	start := 0
	for si := range M.Sections {
		n := M.Sections[si].NumSegments()
		out[si] = sectionOf(M, si, segs[start:start+n])
		start += n
	}
	return out
}

// TotalLength sums every segment length.
func TotalLength(M *govasc.Morphology) float64 {
	L := 0.0
	M.EachSegment(func(seg govasc.Segment) {
		L += SegmentLength(seg)
	})
	return L
}

// TotalSurfaceArea sums every segment surface area (caps included).
func TotalSurfaceArea(M *govasc.Morphology) float64 {
	A := 0.0
	M.EachSegment(func(seg govasc.Segment) {
		A += SegmentSurfaceArea(seg)
	})
	return A
}

// TotalVolume sums every segment volume.
func TotalVolume(M *govasc.Morphology) float64 {
	V := 0.0
	M.EachSegment(func(seg govasc.Segment) {
		V += SegmentVolume(seg)
	})
	return V
}
