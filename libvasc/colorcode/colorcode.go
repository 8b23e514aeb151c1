// Package colorcode maps a scalar per section or per segment onto a discrete color-map index.
package colorcode

import (
	"image/color"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/analysis"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

// Scheme selects the scalar a color is derived from.
type Scheme int

const (
	Default Scheme = iota
	Alternating
	ByRadius
	ByLength
	ByArea
	ByVolume
	ByNumberSamples
	ShortSections
)

var schemeNames = [...]string{
	Default:         "default",
	Alternating:     "alternating",
	ByRadius:        "radius",
	ByLength:        "length",
	ByArea:          "area",
	ByVolume:        "volume",
	ByNumberSamples: "number-samples",
	ShortSections:   "short-sections",
}

func (s Scheme) String() string {
	if s < 0 || int(s) >= len(schemeNames) {
		return "unknown"
	}
	return schemeNames[s]
}

// ParseScheme returns the scheme with the given name (case-insensitive).
func ParseScheme(name string) (Scheme, error) {
	for i, n := range schemeNames {
		if strings.EqualFold(n, name) {
			return Scheme(i), nil
		}
	}
	return Default, errors.Wrapf(govasc.ErrBadOpts, "unknown color scheme %q", name)
}

// Entity is what a color is assigned to.
type Entity int

const (
	PerSection Entity = iota
	PerSegment
)

// Values extracts the scheme's scalar for every entity, in canonical order.
// Entities whose scalar is undefined carry an invalid Measure.
func Values(M *govasc.Morphology, scheme Scheme, entity Entity) []analysis.Measure {
	sections := analysis.Sections(M)

	perSection := make([]analysis.Measure, len(sections))
	for i := range sections {
		perSection[i] = sectionValue(M, &sections[i], scheme)
	}
	if entity == PerSection {
		return perSection
	}

	vals := make([]analysis.Measure, 0, M.NumSegments())
	k := 0
	M.EachSegment(func(seg govasc.Segment) {
		var v analysis.Measure
		switch scheme {
		case Alternating:
			v = analysis.Some(float64(k % 2))
		case ByRadius:
			v = analysis.Some((seg.A.Radius + seg.B.Radius) / 2)
		case ByLength:
			v = analysis.Some(analysis.SegmentLength(seg))
		case ByArea:
			v = analysis.Some(analysis.SegmentSurfaceArea(seg))
		case ByVolume:
			v = analysis.Some(analysis.SegmentVolume(seg))
		default:
			v = perSection[seg.Section]
		}
		vals = append(vals, v)
		k++
	})
	return vals
}

func sectionValue(M *govasc.Morphology, st *analysis.SectionStats, scheme Scheme) analysis.Measure {
	switch scheme {
	case Alternating:
		return analysis.Some(float64(st.Section % 2))
	case ByRadius:
		return st.Radius.Mean
	case ByLength:
		return analysis.Some(st.Length)
	case ByArea:
		return analysis.Some(st.SurfaceArea)
	case ByVolume:
		return analysis.Some(st.Volume)
	case ByNumberSamples:
		return analysis.Some(float64(st.NumSamples))
	case ShortSections:
		if isShort(M, st) {
			return analysis.Some(1)
		}
		return analysis.Some(0)
	default:
		return analysis.Some(0)
	}
}

func isShort(M *govasc.Morphology, st *analysis.SectionStats) bool {
	if st.ThicknessToLength.Valid {
		return st.ThicknessToLength.Value > 1
	}
	for _, si := range M.Diagnostics.ShortSections {
		if si == st.Section {
			return true
		}
	}
	return false
}

// Discretize maps each defined value linearly from [vmin, vmax] onto [0, resolution) as
// floor((v - vmin) / (vmax - vmin) * resolution), clamped to resolution-1.
// Everything maps to 0 when vmin == vmax, and undefined values map to 0.
func Discretize(vals []analysis.Measure, resolution int) []int {
	if resolution < 1 {
		resolution = 1
	}
	vmin, vmax := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if v.Valid {
			vmin = math.Min(vmin, v.Value)
			vmax = math.Max(vmax, v.Value)
		}
	}

	out := make([]int, len(vals))
	span := vmax - vmin
	if !(span > 0) {
		return out
	}
	for i, v := range vals {
		if !v.Valid {
			continue
		}
		c := int(math.Floor((v.Value - vmin) / span * float64(resolution)))
		if c >= resolution {
			c = resolution - 1
		}
		if c < 0 {
			c = 0
		}
		out[i] = c
	}
	return out
}

// Colors returns the color index of every entity for the given scheme.
func Colors(M *govasc.Morphology, scheme Scheme, entity Entity, resolution int) []int {
	return Discretize(Values(M, scheme, entity), resolution)
}

// PolyLines derives a drawable view of every section. With PerSegment coloring a point
// takes the color of the segment it starts, and a section's last point repeats the last segment's color.
func PolyLines(M *govasc.Morphology, scheme Scheme, entity Entity, resolution int) []govasc.PolyLine {
	colors := Colors(M, scheme, entity, resolution)

	lines := make([]govasc.PolyLine, len(M.Sections))
	segBase := 0
	for si := range M.Sections {
		S := &M.Sections[si]
		L := govasc.PolyLine{
			Section: si,
			Points:  make([]govasc.PolyPoint, len(S.Samples)),
		}
		for k, i := range S.Samples {
			c := 0
			if entity == PerSection {
				c = colors[si]
			} else if n := S.NumSegments(); n > 0 {
				c = colors[segBase+min(k, n-1)]
			}
			L.Points[k] = govasc.PolyPoint{
				Pos:    M.Samples[i].Pos,
				Radius: M.Samples[i].Radius,
				Color:  c,
			}
		}
		segBase += S.NumSegments()
		lines[si] = L
	}
	return lines
}

// Palette returns the RGBA color for every entity under cm.
func Palette(colors []int, cm vmath.ColorMap, resolution int) []color.RGBA {
	pal := cm.Palette(resolution)
	out := make([]color.RGBA, len(colors))
	for i, c := range colors {
		out[i] = pal[max(0, min(c, len(pal)-1))]
	}
	return out
}
