package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/2x3systems/govasc/govasc"
)

// Analyze computes totals, alignment, per-section statistics and every distribution for M.
func Analyze(M *govasc.Morphology) *Report {
	segs := Segments(M)
	sections := sectionsOf(M, segs)

	R := &Report{
		Name:      M.Name,
		Alignment: alignmentOf(segs),
		Sections:  sections,
		Segments:  segs,
		Totals: Totals{
			NumSamples:    len(M.Samples),
			NumSections:   len(M.Sections),
			NumSegments:   len(segs),
			NumZeroRadius: M.Diagnostics.NumZeroRadius,
			NumDegenerate: M.Diagnostics.NumDegenerateSections,
			NumShort:      M.Diagnostics.NumShortSections,
		},
	}
	for _, st := range sections {
		R.Totals.Length += st.Length
		R.Totals.SurfaceArea += st.SurfaceArea
		R.Totals.Volume += st.Volume
	}

	segValues := func(pick func(sm *SegmentMetrics) float64) []float64 {
		vals := make([]float64, len(segs))
		for i := range segs {
			vals[i] = pick(&segs[i])
		}
		return vals
	}
	secValues := func(pick func(st *SectionStats) (float64, bool)) []float64 {
		vals := make([]float64, 0, len(sections))
		for i := range sections {
			if v, ok := pick(&sections[i]); ok {
				vals = append(vals, v)
			}
		}
		return vals
	}
	radii := make([]float64, len(M.Samples))
	for i := range M.Samples {
		radii[i] = M.Samples[i].Radius
	}

	R.Distributions = []Distribution{
		newDistribution(DistSegmentLength, "segment", segValues(func(sm *SegmentMetrics) float64 { return sm.Length })),
		newDistribution(DistSegmentArea, "segment", segValues(func(sm *SegmentMetrics) float64 { return sm.SurfaceArea })),
		newDistribution(DistSegmentVolume, "segment", segValues(func(sm *SegmentMetrics) float64 { return sm.Volume })),
		newDistribution(DistSampleRadius, "sample", radii),
		newDistribution(DistSectionLength, "section", secValues(func(st *SectionStats) (float64, bool) { return st.Length, st.NumSegments > 0 })),
		newDistribution(DistSectionArea, "section", secValues(func(st *SectionStats) (float64, bool) { return st.SurfaceArea, st.NumSegments > 0 })),
		newDistribution(DistSectionVolume, "section", secValues(func(st *SectionStats) (float64, bool) { return st.Volume, st.NumSegments > 0 })),
		newDistribution(DistSectionRadius, "section", secValues(func(st *SectionStats) (float64, bool) { return st.Radius.Mean.Value, st.Radius.Mean.Valid })),
		newDistribution(DistSectionSamples, "section", secValues(func(st *SectionStats) (float64, bool) { return float64(st.NumSamples), true })),
		newDistribution(DistSamplingDensity, "section", secValues(func(st *SectionStats) (float64, bool) { return st.SamplingDensity.Value, st.SamplingDensity.Valid })),
	}

	R.Spatial = SpatialDistributions(M, segs)
	return R
}

// SpatialDistributions returns the per-segment value tables keyed at segment midpoints.
// The radius table uses the mean of the segment's end radii.
func SpatialDistributions(M *govasc.Morphology, segs []SegmentMetrics) []SpatialDistribution {
	if segs == nil {
		segs = Segments(M)
	}
	build := func(name string, pick func(i int) float64) SpatialDistribution {
		sd := SpatialDistribution{
			Name:    name,
			Records: make([]SpatialRecord, len(segs)),
		}
		for i := range segs {
			mid := segs[i].Midpoint
			sd.Records[i] = SpatialRecord{Value: pick(i), X: mid.X, Y: mid.Y, Z: mid.Z}
		}
		return sd
	}

	meanRadius := make([]float64, 0, len(segs))
	M.EachSegment(func(seg govasc.Segment) {
		meanRadius = append(meanRadius, (seg.A.Radius+seg.B.Radius)/2)
	})

	return []SpatialDistribution{
		build(SpatialLength, func(i int) float64 { return segs[i].Length }),
		build(SpatialArea, func(i int) float64 { return segs[i].SurfaceArea }),
		build(SpatialVolume, func(i int) float64 { return segs[i].Volume }),
		build(SpatialRadius, func(i int) float64 { return meanRadius[i] }),
	}
}

func newDistribution(name, entity string, vals []float64) Distribution {
	return Distribution{
		Name:    name,
		Entity:  entity,
		Values:  vals,
		Summary: Summarize(vals),
	}
}

// Summarize computes mean, standard deviation, extrema and quartiles of vals.
func Summarize(vals []float64) Summary {
	if len(vals) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	S := Summary{
		N:      len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		S.StdDev = stat.StdDev(sorted, nil)
	}
	return S
}
