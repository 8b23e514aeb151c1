package metaball_test

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/mesh"
	"github.com/2x3systems/govasc/libvasc/mesh/metaball"
	"github.com/2x3systems/govasc/libvasc/skeleton"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

type row struct {
	id, parent int64
	x, y, z, r float64
}

func build(t *testing.T, rows ...row) *govasc.Morphology {
	t.Helper()
	G := &govasc.RawGraph{}
	for _, r := range rows {
		G.Samples = append(G.Samples, govasc.RawSample{
			ID: r.id, Parent: r.parent, Pos: vmath.V3(r.x, r.y, r.z), Radius: r.r,
		})
	}
	M, err := skeleton.Build(G, skeleton.DefaultBuildOpts)
	if err != nil {
		t.Fatal(err)
	}
	return M
}

func meshOne(t *testing.T, M *govasc.Morphology, opts metaball.Opts) *govasc.Mesh {
	t.Helper()
	mb, err := metaball.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	meshes, err := mb.Mesh(M)
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 1 {
		t.Fatalf("got %d meshes", len(meshes))
	}
	return meshes[0]
}

func TestKernel(t *testing.T) {
	if metaball.Kernel(0) != 1 || metaball.Kernel(1) != 0 || metaball.Kernel(2) != 0 {
		t.Fatal("kernel endpoints")
	}
	if got := metaball.Kernel(0.5); math.Abs(got-0.5625) > 1e-12 {
		t.Fatalf("kernel(0.5) = %g", got)
	}
	level := metaball.TubeIsoLevel(1.5, 0.5)
	if level <= 0 || level >= 1 {
		t.Fatalf("iso level %g", level)
	}
}

func TestSpheres(t *testing.T) {
	M := build(t,
		row{1, -1, 0, 0, 0, 1},
		row{2, 1, 4, 0, 0, 1},
		row{3, 2, 4, 2, 0, 2},
	)
	mb, _ := metaball.New(metaball.DefaultOpts)
	spheres := mb.Spheres(M)

	// 4/(1*0.5) = 8 steps, then 2/(1*0.5) = 4 steps sharing the joint sphere.
	if len(spheres) != 9+4 {
		t.Fatalf("got %d spheres", len(spheres))
	}
	last := spheres[len(spheres)-1]
	if !vmath.Approx(last.Center, vmath.V3(4, 2, 0), 1e-12) || last.Radius != 2 || last.Influence != 3 {
		t.Fatalf("last sphere %+v", last)
	}
}

func TestTube(t *testing.T) {
	M := build(t, row{1, -1, 0, 0, 0, 1}, row{2, 1, 8, 0, 0, 1})
	m := meshOne(t, M, metaball.DefaultOpts)

	st := m.Stats()
	if !st.Watertight || st.Components != 1 {
		t.Fatalf("stats %+v", st)
	}
	if mesh.SignedVolume(m) <= 0 {
		t.Fatal("faces wind inward")
	}
	if !m.HasNormals() {
		t.Fatal("smooth mesh has no normals")
	}

	// Away from the rounded ends the surface sits near the sample radius.
	checked := 0
	for _, v := range m.Vertices {
		if v.X < 1.5 || v.X > 6.5 {
			continue
		}
		checked++
		if r := math.Hypot(v.Y, v.Z); r < 0.85 || r > 1.2 {
			t.Fatalf("vertex %v at distance %g from the axis", v, r)
		}
	}
	if checked == 0 {
		t.Fatal("no vertices along the tube body")
	}
}

func TestComponents(t *testing.T) {
	branched := build(t,
		row{1, -1, 0, 0, 0, 0.5},
		row{2, 1, 3, 0, 0, 0.5},
		row{3, 2, 5, 2, 0, 0.5},
		row{4, 2, 5, -2, 0, 0.5},
	)
	if st := meshOne(t, branched, metaball.DefaultOpts).Stats(); !st.Watertight || st.Components != 1 {
		t.Fatalf("branched stats %+v", st)
	}

	apart := build(t,
		row{1, -1, 0, 0, 0, 0.5},
		row{2, 1, 3, 0, 0, 0.5},
		row{3, -1, 0, 10, 0, 0.5},
		row{4, 3, 3, 10, 0, 0.5},
	)
	if st := meshOne(t, apart, metaball.DefaultOpts).Stats(); !st.Watertight || st.Components != 2 {
		t.Fatalf("disjoint stats %+v", st)
	}
}

func TestTaperedTip(t *testing.T) {
	M := build(t,
		row{1, -1, 0, 0, 0, 1},
		row{2, 1, 4, 0, 0, 0.6},
		row{3, 2, 6, 2, 0, 0.4},
		row{4, 2, 6, -2, 0, 0.3},
		row{5, 4, 8, -4, 0, 0},
	)
	mb, _ := metaball.New(metaball.DefaultOpts)
	for _, s := range mb.Spheres(M) {
		if s.Radius < 0.3 {
			t.Fatalf("sphere %+v below the smallest sample radius", s)
		}
	}
	if st := meshOne(t, M, metaball.DefaultOpts).Stats(); !st.Watertight || st.Components != 1 {
		t.Fatalf("tapered stats %+v", st)
	}
}

func TestResolution(t *testing.T) {
	M := build(t, row{1, -1, 0, 0, 0, 1}, row{2, 1, 3, 0, 0, 1})
	coarse := metaball.DefaultOpts
	coarse.Resolution = metaball.ResolutionUserDefined
	coarse.VoxelSize = 0.8
	fine := metaball.DefaultOpts

	nc := meshOne(t, M, coarse).NumFaces()
	nf := meshOne(t, M, fine).NumFaces()
	if nc >= nf {
		t.Fatalf("coarse grid gave %d faces, fine grid %d", nc, nf)
	}

	if _, err := metaball.ParseResolution("auto"); err != nil {
		t.Fatal(err)
	}
	if _, err := metaball.ParseResolution("dense"); !errors.Is(err, govasc.ErrBadOpts) {
		t.Fatalf("got %v", err)
	}
	bad := metaball.DefaultOpts
	bad.Resolution = metaball.ResolutionUserDefined
	if _, err := metaball.New(bad); !errors.Is(err, govasc.ErrBadOpts) {
		t.Fatalf("missing voxel size: got %v", err)
	}
}

func wantMesherError(t *testing.T, err error, kind govasc.MesherKind) {
	t.Helper()
	var me *govasc.MesherError
	if !errors.As(err, &me) || me.Kind != kind {
		t.Fatalf("want %s, got %v", kind, err)
	}
}

func TestFailures(t *testing.T) {
	mb, _ := metaball.New(metaball.DefaultOpts)

	_, err := mb.Mesh(&govasc.Morphology{})
	wantMesherError(t, err, govasc.MesherEmpty)

	nan := &govasc.Morphology{
		Samples: []govasc.Sample{
			{Index: 0, ParentIndex: -1, Radius: math.NaN()},
			{Index: 1, ParentIndex: 0, Pos: vmath.V3(1, 0, 0), Radius: 1},
		},
		Sections: []govasc.Section{{Index: 0, Samples: []int{0, 1}}},
	}
	_, err = mb.Mesh(nan)
	wantMesherError(t, err, govasc.MesherNonFinite)

	opts := metaball.DefaultOpts
	opts.MaxVoxels = 100
	small, _ := metaball.New(opts)
	_, err = small.Mesh(build(t, row{1, -1, 0, 0, 0, 1}, row{2, 1, 8, 0, 0, 1}))
	wantMesherError(t, err, govasc.MesherGridTooLarge)
}
