// Package analysis computes morphometrics over a frozen govasc.Morphology.
//
// Every segment is a right tapered cylinder (frustum) between two consecutive samples of a
// section. Functions here never mutate their input, and undefined metrics (empty sections,
// zero divisors) are reported as an invalid Measure rather than NaN.
package analysis

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/2x3systems/govasc/libvasc/vmath"
)

// Measure is a metric that may be undefined.
type Measure struct {
	Value float64
	Valid bool
}

// Some returns a defined Measure.
func Some(v float64) Measure {
	return Measure{Value: v, Valid: true}
}

// None is the undefined Measure.
var None = Measure{}

// Ratio returns num/den, undefined when den is zero.
func Ratio(num, den float64) Measure {
	if den == 0 {
		return None
	}
	return Some(num / den)
}

// SegmentMetrics holds the per-segment contracts.
type SegmentMetrics struct {
	Section     int
	Index       int
	Length      float64
	LateralArea float64
	SurfaceArea float64 // lateral area plus both end caps
	Volume      float64
	Midpoint    r3.Vec
	Axis        vmath.Axis // dominant axis when Aligned
	Aligned     bool       // false when the dominant component is tied or the segment has no length
}

// Stat is the min / mean / max / (min/max) of a set of values.
type Stat struct {
	Min, Mean, Max Measure
	Ratio          Measure
}

// SectionStats holds the per-section statistics.
type SectionStats struct {
	Section     int
	NumSamples  int
	NumSegments int

	Length      float64
	SurfaceArea float64
	Volume      float64

	Radius        Stat // over the section's samples
	SegmentLength Stat
	SegmentArea   Stat
	SegmentVolume Stat

	SamplingDensity   Measure // segments per unit length
	ThicknessToLength Measure // (r_first + r_last) / length
}

// Alignment splits total segment length by dominant axis.
type Alignment struct {
	X, Y, Z float64
	Other   float64
	Ties    int // segments charged to Other because their leading components tied
}

// Total returns X + Y + Z + Other.
func (A Alignment) Total() float64 {
	return A.X + A.Y + A.Z + A.Other
}

// SpatialRecord is one row of a spatial distribution: a value at a segment midpoint.
type SpatialRecord struct {
	Value   float64
	X, Y, Z float64
}

// Summary describes a distribution. All fields are zero when N is zero.
type Summary struct {
	N              int
	Mean, StdDev   float64
	Min, Max       float64
	Q1, Median, Q3 float64
}

// Distribution is a named list of values, one per entity, in canonical order.
type Distribution struct {
	Name    string
	Entity  string // "segment", "section" or "sample"
	Values  []float64
	Summary Summary
}

// SpatialDistribution is a named list of SpatialRecords, one per segment in canonical order.
type SpatialDistribution struct {
	Name    string
	Records []SpatialRecord
}

// Totals are morphology-wide sums and counts.
type Totals struct {
	NumSamples    int
	NumSections   int
	NumSegments   int
	Length        float64
	SurfaceArea   float64
	Volume        float64
	NumZeroRadius int
	NumDegenerate int
	NumShort      int
}

// Report bundles everything Analyze computes for one morphology.
type Report struct {
	Name          string
	Totals        Totals
	Alignment     Alignment
	Sections      []SectionStats
	Segments      []SegmentMetrics
	Distributions []Distribution
	Spatial       []SpatialDistribution
}

// Distribution returns the named distribution, if present.
func (R *Report) Distribution(name string) (*Distribution, bool) {
	for i := range R.Distributions {
		if R.Distributions[i].Name == name {
			return &R.Distributions[i], true
		}
	}
	return nil, false
}

// Distribution names produced by Analyze.
const (
	DistSegmentLength   = "segment_length"
	DistSegmentArea     = "segment_surface_area"
	DistSegmentVolume   = "segment_volume"
	DistSampleRadius    = "sample_radius"
	DistSectionLength   = "section_length"
	DistSectionArea     = "section_surface_area"
	DistSectionVolume   = "section_volume"
	DistSectionRadius   = "section_mean_radius"
	DistSectionSamples  = "section_num_samples"
	DistSamplingDensity = "section_sampling_density"
)

// Spatial distribution names produced by Analyze.
const (
	SpatialLength = "length"
	SpatialArea   = "surface_area"
	SpatialVolume = "volume"
	SpatialRadius = "radius"
)
