package metaball

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/2x3systems/govasc/govasc"
)

// Cube corner c sits at offset (c&1, c>>1&1, c>>2&1).
// Every cube is split into six tetrahedra around the 0-7 diagonal; adjacent cubes split their
// shared faces identically, so the extracted surface has no cracks.
var kuhnTets = [6][4]int{
	{0, 1, 3, 7},
	{0, 1, 5, 7},
	{0, 2, 3, 7},
	{0, 2, 6, 7},
	{0, 4, 5, 7},
	{0, 4, 6, 7},
}

type edgeKey [2]int

type polygonizer struct {
	G     *grid
	iso   float64
	out   *govasc.Mesh
	verts map[edgeKey]uint32
}

// polygonize extracts the iso-surface {f = iso} with marching tetrahedra.
// Grid points with f > iso are inside.
func (G *grid) polygonize(iso float64) *govasc.Mesh {
	P := &polygonizer{
		G:     G,
		iso:   iso,
		out:   &govasc.Mesh{},
		verts: make(map[edgeKey]uint32),
	}

	var corner [8]int
	for k := 0; k+1 < G.nz; k++ {
		for j := 0; j+1 < G.ny; j++ {
			for i := 0; i+1 < G.nx; i++ {
				for c := range corner {
					corner[c] = G.index(i+c&1, j+(c>>1)&1, k+(c>>2)&1)
				}
				for _, tet := range kuhnTets {
					P.tetra([4]int{corner[tet[0]], corner[tet[1]], corner[tet[2]], corner[tet[3]]})
				}
			}
		}
	}
	return P.out
}

func (P *polygonizer) inside(idx int) bool {
	return P.G.field[idx] > P.iso
}

func (P *polygonizer) pos(idx int) r3.Vec {
	nx, ny := P.G.nx, P.G.ny
	return P.G.point(idx%nx, (idx/nx)%ny, idx/(nx*ny))
}

// vertex returns the shared surface vertex on the grid edge (a, b).
func (P *polygonizer) vertex(a, b int) uint32 {
	key := edgeKey{a, b}
	if b < a {
		key = edgeKey{b, a}
	}
	if vi, ok := P.verts[key]; ok {
		return vi
	}
	fa, fb := P.G.field[key[0]], P.G.field[key[1]]
	t := 0.5
	if fb != fa {
		t = (P.iso - fa) / (fb - fa)
	}
	pa, pb := P.pos(key[0]), P.pos(key[1])
	vi := P.out.AddVertex(r3.Add(pa, r3.Scale(t, r3.Sub(pb, pa))))
	P.verts[key] = vi
	return vi
}

// tri emits (a, b, c) wound so its normal points along outward.
func (P *polygonizer) tri(a, b, c uint32, outward r3.Vec) {
	V := P.out.Vertices
	n := r3.Cross(r3.Sub(V[b], V[a]), r3.Sub(V[c], V[a]))
	if r3.Dot(n, outward) < 0 {
		b, c = c, b
	}
	P.out.AddFace(a, b, c)
}

func (P *polygonizer) tetra(v [4]int) {
	var in, out []int
	for _, idx := range v {
		if P.inside(idx) {
			in = append(in, idx)
		} else {
			out = append(out, idx)
		}
	}
	if len(in) == 0 || len(out) == 0 {
		return
	}

	// Points from the inside corners toward the outside ones.
	var cin, cout r3.Vec
	for _, idx := range in {
		cin = r3.Add(cin, P.pos(idx))
	}
	for _, idx := range out {
		cout = r3.Add(cout, P.pos(idx))
	}
	outward := r3.Sub(r3.Scale(1/float64(len(out)), cout), r3.Scale(1/float64(len(in)), cin))

	switch len(in) {
	case 1:
		a, b, c := P.vertex(in[0], out[0]), P.vertex(in[0], out[1]), P.vertex(in[0], out[2])
		P.tri(a, b, c, outward)
	case 3:
		a, b, c := P.vertex(out[0], in[0]), P.vertex(out[0], in[1]), P.vertex(out[0], in[2])
		P.tri(a, b, c, outward)
	case 2:
		// The four crossings form a quad ordered around its boundary.
		a := P.vertex(in[0], out[0])
		b := P.vertex(in[0], out[1])
		c := P.vertex(in[1], out[1])
		d := P.vertex(in[1], out[0])
		P.tri(a, b, c, outward)
		P.tri(a, c, d, outward)
	}
}
