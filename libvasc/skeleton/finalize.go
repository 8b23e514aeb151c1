package skeleton

import (
	"math"

	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

// Finalize renumbers sections, derives parent links and connectivity, recomputes the
// cached bounds, asserts the morphology invariants and rebuilds Diagnostics.
func Finalize(M *govasc.Morphology, opts BuildOpts) error {
	eps := opts.epsilon()

	for i := range M.Samples {
		M.Samples[i].Index = i
	}
	for i := range M.Sections {
		M.Sections[i].Index = i
	}

	if err := checkSections(M, opts.AllowDegenerate); err != nil {
		return err
	}
	if err := checkRadii(M); err != nil {
		return err
	}

	linkParents(M)
	M.Revalidate()
	M.Connectivity = DeriveConnectivity(M, eps)

	if err := checkBounds(M); err != nil {
		return err
	}
	for _, c := range M.Connectivity {
		if !SectionsCoincide(M, c.A, c.B, eps) {
			return &govasc.BuilderError{
				Which:     "I6",
				Offending: []int{c.A, c.B},
				Err:       errors.Wrapf(govasc.ErrInvariantViolation, "sections %d and %d share no terminal", c.A, c.B),
			}
		}
	}

	M.Diagnostics = Diagnose(M)
	return nil
}

func checkSections(M *govasc.Morphology, allowDegenerate bool) error {
	N := len(M.Samples)
	for si := range M.Sections {
		S := &M.Sections[si]
		if len(S.Samples) == 0 || (len(S.Samples) == 1 && !allowDegenerate) {
			return &govasc.BuilderError{
				Which:     "I2",
				Offending: []int{si},
				Err:       errors.Wrapf(govasc.ErrInvariantViolation, "section %d has %d samples", si, len(S.Samples)),
			}
		}
		for _, i := range S.Samples {
			if i < 0 || i >= N {
				return &govasc.BuilderError{
					Which:     "I3",
					Offending: []int{si},
					Err:       errors.Wrapf(govasc.ErrInvariantViolation, "section %d references sample %d of %d", si, i, N),
				}
			}
		}
	}
	return nil
}

func checkRadii(M *govasc.Morphology) error {
	var bad []int
	for i := range M.Samples {
		s := &M.Samples[i]
		if !vmath.IsFinite(s.Pos) || math.IsNaN(s.Radius) || math.IsInf(s.Radius, 0) || s.Radius < 0 {
			bad = append(bad, i)
		}
	}
	if len(bad) > 0 {
		return &govasc.BuilderError{
			Which:     "I4",
			Offending: bad,
			Err:       errors.Wrap(govasc.ErrNonFinite, "sample position or radius is non-finite or negative"),
		}
	}
	return nil
}

func checkBounds(M *govasc.Morphology) error {
	if len(M.Samples) == 0 {
		return nil
	}
	B := M.Bounds
	if B.Min.X > B.Max.X || B.Min.Y > B.Max.Y || B.Min.Z > B.Max.Z {
		return &govasc.BuilderError{
			Which: "I5",
			Err:   errors.Wrapf(govasc.ErrInvariantViolation, "bounds %v are inverted", B),
		}
	}
	return nil
}

// linkParents sets each sample's parent to its predecessor in the first section that
// holds it past the first position; samples that only ever start a section are roots.
func linkParents(M *govasc.Morphology) {
	linked := make([]bool, len(M.Samples))
	for i := range M.Samples {
		M.Samples[i].ParentIndex = -1
	}
	for si := range M.Sections {
		chain := M.Sections[si].Samples
		for k := 1; k < len(chain); k++ {
			i := chain[k]
			if linked[i] || chain[k-1] == i {
				continue
			}
			M.Samples[i].ParentIndex = chain[k-1]
			linked[i] = true
		}
	}
}

// Diagnose reports zero-radius samples, degenerate sections and short sections.
func Diagnose(M *govasc.Morphology) govasc.Diagnostics {
	var diag govasc.Diagnostics
	for i := range M.Samples {
		if M.Samples[i].Radius == 0 {
			diag.ZeroRadiusSamples = append(diag.ZeroRadiusSamples, i)
		}
	}
	for si := range M.Sections {
		S := &M.Sections[si]
		if S.IsDegenerate() {
			diag.DegenerateSections = append(diag.DegenerateSections, si)
			continue
		}
		if IsShortSection(M, si) {
			diag.ShortSections = append(diag.ShortSections, si)
		}
	}
	diag.NumZeroRadius = len(diag.ZeroRadiusSamples)
	diag.NumDegenerateSections = len(diag.DegenerateSections)
	diag.NumShortSections = len(diag.ShortSections)
	return diag
}

// SectionLength returns the summed segment length of section si.
func SectionLength(M *govasc.Morphology, si int) float64 {
	L := 0.0
	M.SectionSegments(si, func(seg govasc.Segment) {
		L += vmath.Distance(seg.A.Pos, seg.B.Pos)
	})
	return L
}

// IsShortSection returns true if the thickness-to-length ratio of section si exceeds
// ShortSectionRatio. A zero-length section with non-zero terminal radii counts as short.
func IsShortSection(M *govasc.Morphology, si int) bool {
	S := &M.Sections[si]
	if S.IsDegenerate() {
		return false
	}
	rFirst, rLast := M.Samples[S.First()].Radius, M.Samples[S.Last()].Radius
	ratio, ok := ThicknessToLength(rFirst, rLast, SectionLength(M, si))
	if !ok {
		return rFirst+rLast > 0
	}
	return ratio > ShortSectionRatio
}
