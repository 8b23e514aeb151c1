package metaball

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

// grid holds field samples at the points origin + h*(i, j, k).
type grid struct {
	origin     r3.Vec
	h          float64
	nx, ny, nz int
	field      []float64
}

func newGrid(spheres []Sphere, h float64, maxVoxels int) (*grid, error) {
	box := vmath.EmptyBox()
	for _, s := range spheres {
		R := r3.Vec{X: s.Influence, Y: s.Influence, Z: s.Influence}
		box = vmath.ExpandBox(box, r3.Sub(s.Center, R))
		box = vmath.ExpandBox(box, r3.Add(s.Center, R))
	}
	// One empty layer on every side keeps the surface closed.
	pad := r3.Vec{X: h, Y: h, Z: h}
	box.Min = r3.Sub(box.Min, pad)
	box.Max = r3.Add(box.Max, pad)

	size := r3.Sub(box.Max, box.Min)
	G := &grid{
		origin: box.Min,
		h:      h,
		nx:     int(math.Ceil(size.X/h)) + 1,
		ny:     int(math.Ceil(size.Y/h)) + 1,
		nz:     int(math.Ceil(size.Z/h)) + 1,
	}
	if total := float64(G.nx) * float64(G.ny) * float64(G.nz); total > float64(maxVoxels) {
		return nil, &govasc.MesherError{
			Kind: govasc.MesherGridTooLarge,
			Err:  errors.Errorf("%dx%dx%d grid exceeds %d points at voxel size %g", G.nx, G.ny, G.nz, maxVoxels, h),
		}
	}
	G.field = make([]float64, G.nx*G.ny*G.nz)
	return G, nil
}

func (G *grid) index(i, j, k int) int {
	return i + G.nx*(j+G.ny*k)
}

func (G *grid) point(i, j, k int) r3.Vec {
	return r3.Vec{
		X: G.origin.X + float64(i)*G.h,
		Y: G.origin.Y + float64(j)*G.h,
		Z: G.origin.Z + float64(k)*G.h,
	}
}

func clampIndex(v float64, n int) int {
	return max(0, min(n-1, int(v)))
}

// splat adds every sphere's kernel to the grid points within its influence.
func (G *grid) splat(spheres []Sphere) {
	for _, s := range spheres {
		R := s.Influence
		lo := r3.Scale(1/G.h, r3.Sub(s.Center, G.origin))
		span := R / G.h
		i0, i1 := clampIndex(math.Floor(lo.X-span), G.nx), clampIndex(math.Ceil(lo.X+span), G.nx)
		j0, j1 := clampIndex(math.Floor(lo.Y-span), G.ny), clampIndex(math.Ceil(lo.Y+span), G.ny)
		k0, k1 := clampIndex(math.Floor(lo.Z-span), G.nz), clampIndex(math.Ceil(lo.Z+span), G.nz)

		for k := k0; k <= k1; k++ {
			for j := j0; j <= j1; j++ {
				for i := i0; i <= i1; i++ {
					d := vmath.Distance(G.point(i, j, k), s.Center)
					if d < R {
						G.field[G.index(i, j, k)] += Kernel(d / R)
					}
				}
			}
		}
	}
}

func (G *grid) firstNonFinite() int {
	for i, v := range G.field {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

// Field evaluates the summed kernel at p directly; used to cross-check the grid.
func Field(spheres []Sphere, p r3.Vec) float64 {
	f := 0.0
	for _, s := range spheres {
		f += Kernel(vmath.Distance(p, s.Center) / s.Influence)
	}
	return f
}
