// Package metaball reconstructs a single watertight surface around a morphology by
// summing implicit spheres placed along every segment and polygonizing the field.
package metaball

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/mesh"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

// Resolution selects how the voxel size is chosen.
type Resolution int

const (
	ResolutionAuto        Resolution = iota // minimum positive sample radius / 2
	ResolutionUserDefined                   // Opts.VoxelSize
)

// ParseResolution accepts "auto" or "user-defined".
func ParseResolution(name string) (Resolution, error) {
	switch name {
	case "auto":
		return ResolutionAuto, nil
	case "user-defined", "user_defined":
		return ResolutionUserDefined, nil
	}
	return ResolutionAuto, errors.Wrapf(govasc.ErrBadOpts, "unknown meta-ball resolution %q", name)
}

// Opts configures the meta-ball mesher.
type Opts struct {
	SpacingFactor float64 // sphere spacing along a segment, as a fraction of its smaller radius
	Stiffness     float64 // influence radius as a multiple of the local sample radius, > 1
	Threshold     float64 // iso-level; 0 selects TubeIsoLevel(Stiffness, SpacingFactor)
	Resolution    Resolution
	VoxelSize     float64 // used when Resolution is ResolutionUserDefined
	MaxVoxels     int     // grid size limit
	Smooth        bool    // compute averaged vertex normals
}

// DefaultOpts uses the automatic voxel size.
var DefaultOpts = Opts{
	SpacingFactor: 0.5,
	Stiffness:     1.5,
	Resolution:    ResolutionAuto,
	MaxVoxels:     1 << 25,
	Smooth:        true,
}

// Mesher implements govasc.Mesher with meta-balls.
type Mesher struct {
	opts Opts
}

var _ govasc.Mesher = (*Mesher)(nil)

// New validates opts and returns a meta-ball mesher.
func New(opts Opts) (*Mesher, error) {
	switch {
	case !(opts.SpacingFactor > 0):
		return nil, errors.Wrapf(govasc.ErrBadOpts, "spacing factor %g", opts.SpacingFactor)
	case !(opts.Stiffness > 1):
		return nil, errors.Wrapf(govasc.ErrBadOpts, "stiffness %g must exceed 1", opts.Stiffness)
	case !(opts.Threshold >= 0):
		return nil, errors.Wrapf(govasc.ErrBadOpts, "threshold %g", opts.Threshold)
	case opts.Resolution == ResolutionUserDefined && !(opts.VoxelSize > 0):
		return nil, errors.Wrapf(govasc.ErrBadOpts, "voxel size %g", opts.VoxelSize)
	}
	if opts.Threshold == 0 {
		opts.Threshold = TubeIsoLevel(opts.Stiffness, opts.SpacingFactor)
	}
	if opts.MaxVoxels <= 0 {
		opts.MaxVoxels = DefaultOpts.MaxVoxels
	}
	return &Mesher{opts: opts}, nil
}

func (mb *Mesher) Algorithm() string { return mesh.AlgoMetaBalls }

// Sphere is one implicit primitive: Radius is the interpolated sample radius and Influence
// the distance at which its contribution vanishes.
type Sphere struct {
	Center    r3.Vec
	Radius    float64
	Influence float64
}

// Kernel is the meta-ball falloff (1 - u²)², zero for u >= 1.
func Kernel(u float64) float64 {
	if u >= 1 {
		return 0
	}
	s := 1 - u*u
	return s * s
}

// TubeIsoLevel is the field value at distance r from the axis of an infinite tube of radius r
// sampled with spheres of influence stiffness*r spaced spacing*r apart. Using it as the
// threshold places the surface of a uniform segment at its sample radius.
func TubeIsoLevel(stiffness, spacing float64) float64 {
	c2 := stiffness * stiffness
	a := math.Sqrt(c2 - 1)
	return 16 * math.Pow(a, 5) / (15 * c2 * c2 * spacing)
}

// Threshold returns the iso-level in use.
func (mb *Mesher) Threshold() float64 { return mb.opts.Threshold }

// Spheres places ceil(L / (min(r0, r1) * SpacingFactor)) + 1 spheres along every segment,
// radii interpolated linearly. Spheres shared between consecutive segments are emitted once.
// Sphere radii are floored at the smallest positive sample radius of M, and a zero radius at
// one end spaces the segment by that floor, so a tapering tip stays attached to its parent.
// Segments with both radii zero contribute nothing.
func (mb *Mesher) Spheres(M *govasc.Morphology) []Sphere {
	scale := mb.opts.Stiffness
	floor := M.MinRadius()
	seen := make(map[[4]int64]struct{})
	var spheres []Sphere

	add := func(c r3.Vec, r float64) {
		r = math.Max(r, floor)
		if r <= 0 {
			return
		}
		key := [4]int64{
			int64(math.Round(c.X / vmath.Epsilon)),
			int64(math.Round(c.Y / vmath.Epsilon)),
			int64(math.Round(c.Z / vmath.Epsilon)),
			int64(math.Round(r / vmath.Epsilon)),
		}
		if _, dupe := seen[key]; dupe {
			return
		}
		seen[key] = struct{}{}
		spheres = append(spheres, Sphere{Center: c, Radius: r, Influence: r * scale})
	}

	M.EachSegment(func(seg govasc.Segment) {
		r0, r1 := seg.A.Radius, seg.B.Radius
		if r0 <= 0 && r1 <= 0 {
			return
		}
		rmin := math.Max(math.Min(r0, r1), floor)
		L := vmath.Distance(seg.A.Pos, seg.B.Pos)
		n := 1
		if steps := math.Ceil(L / (rmin * mb.opts.SpacingFactor)); steps > 1 {
			n = int(steps)
		}
		for i := 0; i <= n; i++ {
			t := float64(i) / float64(n)
			add(vmath.Lerp(seg.A.Pos, seg.B.Pos, t), vmath.LerpScalar(r0, r1, t))
		}
	})
	return spheres
}

// Mesh builds the single meta-ball surface of M.
func (mb *Mesher) Mesh(M *govasc.Morphology) ([]*govasc.Mesh, error) {
	spheres := mb.Spheres(M)
	if len(spheres) == 0 {
		return nil, &govasc.MesherError{Kind: govasc.MesherEmpty, Err: govasc.ErrEmptyMorphology}
	}

	for i, s := range spheres {
		if !vmath.IsFinite(s.Center) || math.IsNaN(s.Influence) || math.IsInf(s.Influence, 0) {
			return nil, &govasc.MesherError{
				Kind: govasc.MesherNonFinite,
				Err:  errors.Wrapf(govasc.ErrNonFinite, "meta-ball %d", i),
			}
		}
	}

	h := mb.opts.VoxelSize
	if mb.opts.Resolution == ResolutionAuto {
		h = M.MinRadius() / 2
	}
	if !(h > 0) {
		return nil, &govasc.MesherError{Kind: govasc.MesherDegenerate, Err: errors.New("no positive sample radius to derive a voxel size from")}
	}

	G, err := newGrid(spheres, h, mb.opts.MaxVoxels)
	if err != nil {
		return nil, err
	}
	G.splat(spheres)
	if bad := G.firstNonFinite(); bad >= 0 {
		return nil, &govasc.MesherError{
			Kind: govasc.MesherNonFinite,
			Err:  errors.Wrapf(govasc.ErrNonFinite, "field at grid point %d", bad),
		}
	}

	m := G.polygonize(mb.opts.Threshold)
	m.Name = "morphology_metaballs"
	if M.Name != "" {
		m.Name = M.Name + "_metaballs"
	}
	if len(m.Faces) == 0 {
		return nil, &govasc.MesherError{Kind: govasc.MesherDegenerate, Err: errors.New("field never reaches the iso-level")}
	}
	if mb.opts.Smooth {
		mesh.ComputeNormals(m)
	}
	return []*govasc.Mesh{m}, nil
}
