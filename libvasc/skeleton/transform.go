package skeleton

import (
	"math"

	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

// Transforms below return a new Morphology and leave their input untouched.
// Degenerate sections that survived the original build are kept.

// Center returns a copy of M translated so its bounding-box center is the origin.
func Center(M *govasc.Morphology) *govasc.Morphology {
	dup := M.Clone()
	c := M.Center
	for i := range dup.Samples {
		p := &dup.Samples[i].Pos
		p.X -= c.X
		p.Y -= c.Y
		p.Z -= c.Z
	}
	dup.Revalidate()
	return dup
}

// Scale returns a copy of M with positions and radii multiplied by factor, e.g. for unit conversion.
// Dynamics radii are scaled alongside; flow and pressure are left as-is.
func Scale(M *govasc.Morphology, factor float64, opts BuildOpts) (*govasc.Morphology, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return nil, errors.Wrapf(govasc.ErrBadOpts, "scale factor %g", factor)
	}
	dup := M.Clone()
	for i := range dup.Samples {
		s := &dup.Samples[i]
		s.Pos.X *= factor
		s.Pos.Y *= factor
		s.Pos.Z *= factor
		s.Radius *= factor
	}
	if dup.Dynamics != nil {
		for _, frame := range dup.Dynamics.Radius {
			for i := range frame {
				frame[i] *= factor
			}
		}
	}
	return refinalize(dup, opts)
}

// FlipAxis returns a copy of M mirrored across the plane normal to axis.
func FlipAxis(M *govasc.Morphology, axis vmath.Axis, opts BuildOpts) (*govasc.Morphology, error) {
	dup := M.Clone()
	for i := range dup.Samples {
		s := &dup.Samples[i]
		s.Pos = vmath.SetComponent(s.Pos, axis, -vmath.Component(s.Pos, axis))
	}
	return refinalize(dup, opts)
}

// ApplyFrame returns a copy of M whose radii are taken from dynamics frame f.
func ApplyFrame(M *govasc.Morphology, f int, opts BuildOpts) (*govasc.Morphology, error) {
	if M.Dynamics == nil || len(M.Dynamics.Radius) == 0 {
		return nil, errors.Wrap(govasc.ErrFrameOutOfRange, "morphology carries no radius dynamics")
	}
	if f < 0 || f >= len(M.Dynamics.Radius) {
		return nil, errors.Wrapf(govasc.ErrFrameOutOfRange, "frame %d of %d", f, len(M.Dynamics.Radius))
	}
	dup := M.Clone()
	for i, r := range M.Dynamics.Radius[f] {
		dup.Samples[i].Radius = r
	}
	return refinalize(dup, opts)
}

func refinalize(M *govasc.Morphology, opts BuildOpts) (*govasc.Morphology, error) {
	opts.AllowDegenerate = true
	if err := Finalize(M, opts); err != nil {
		return nil, err
	}
	return M, nil
}
