// Package skeleton turns a reader's RawGraph into a canonical govasc.Morphology and
// provides the optional pipeline transforms (resampling, centering, scaling, axis flips,
// dynamics frame selection).
package skeleton

import (
	"github.com/2x3systems/govasc/libvasc/vmath"
)

// BuildOpts controls the skeleton builder.
type BuildOpts struct {

	// Resample enables the spacing pass over every section.
	Resample bool

	// MinSpacing merges consecutive samples closer than this; must not exceed MaxSpacing/2.
	MinSpacing float64

	// MaxSpacing inserts interpolated samples between samples farther apart than this.
	MaxSpacing float64

	// Center translates the morphology so its bounding-box center is the origin.
	Center bool

	// AllowDegenerate keeps sections of fewer than two samples (flagged in Diagnostics)
	// instead of failing the build.
	AllowDegenerate bool

	// Epsilon is the coincidence tolerance for terminal samples; 0 means vmath.Epsilon.
	Epsilon float64
}

// DefaultBuildOpts builds without resampling or centering.
var DefaultBuildOpts = BuildOpts{
	MinSpacing: 0.5,
	MaxSpacing: 2,
	Epsilon:    vmath.Epsilon,
}

func (opts *BuildOpts) epsilon() float64 {
	if opts.Epsilon > 0 {
		return opts.Epsilon
	}
	return vmath.Epsilon
}

// ShortSectionRatio is the thickness-to-length ratio above which a section is reported as short.
const ShortSectionRatio = 1.0

// ThicknessToLength returns (r_first + r_last) / length and whether it is defined.
func ThicknessToLength(rFirst, rLast, length float64) (float64, bool) {
	if length <= 0 {
		return 0, false
	}
	return (rFirst + rLast) / length, true
}
