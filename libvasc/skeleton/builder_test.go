package skeleton_test

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/skeleton"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

// swcGraph builds a parent-link RawGraph from rows of {id, parent, x, y, z, r}.
func swcGraph(rows ...[6]float64) *govasc.RawGraph {
	G := &govasc.RawGraph{Format: "swc"}
	for _, row := range rows {
		G.Samples = append(G.Samples, govasc.RawSample{
			ID:     int64(row[0]),
			Parent: int64(row[1]),
			Pos:    vmath.V3(row[2], row[3], row[4]),
			Radius: row[5],
		})
	}
	return G
}

func mustBuild(t *testing.T, G *govasc.RawGraph, opts skeleton.BuildOpts) *govasc.Morphology {
	t.Helper()
	M, err := skeleton.Build(G, opts)
	if err != nil {
		t.Fatal(err)
	}
	return M
}

func wantBuilderError(t *testing.T, err error, which string) *govasc.BuilderError {
	t.Helper()
	var berr *govasc.BuilderError
	if !errors.As(err, &berr) {
		t.Fatalf("want *BuilderError, got %v", err)
	}
	if berr.Which != which {
		t.Fatalf("violated %s, want %s: %v", berr.Which, which, err)
	}
	return berr
}

func checkDense(t *testing.T, M *govasc.Morphology) {
	t.Helper()
	for i, s := range M.Samples {
		if s.Index != i {
			t.Fatalf("sample %d has index %d", i, s.Index)
		}
		if s.ParentIndex < -1 || s.ParentIndex >= len(M.Samples) {
			t.Fatalf("sample %d has parent %d", i, s.ParentIndex)
		}
	}
	for i := range M.Samples {
		if !vmath.BoxContains(M.Bounds, M.Samples[i].Pos) {
			t.Fatalf("sample %d at %v outside bounds %v", i, M.Samples[i].Pos, M.Bounds)
		}
	}
}

func TestSingleSection(t *testing.T) {
	M := mustBuild(t, swcGraph(
		[6]float64{1, -1, 0, 0, 0, 1},
		[6]float64{2, 1, 10, 0, 0, 1},
		[6]float64{3, 2, 20, 0, 0, 1},
	), skeleton.DefaultBuildOpts)

	checkDense(t, M)
	if len(M.Sections) != 1 || M.NumSegments() != 2 {
		t.Fatalf("got %d sections, %d segments", len(M.Sections), M.NumSegments())
	}
	if got := M.Sections[0].Samples; got[0] != 0 || got[2] != 2 {
		t.Fatalf("section samples %v", got)
	}
	if len(M.Connectivity) != 0 {
		t.Fatalf("unexpected connectivity %v", M.Connectivity)
	}
	if M.Center != vmath.V3(10, 0, 0) {
		t.Fatalf("center %v", M.Center)
	}
}

func TestJoinedTrees(t *testing.T) {
	M := mustBuild(t, swcGraph(
		[6]float64{1, -1, -10, 0, 0, 1},
		[6]float64{2, 1, 0, 0, 0, 1},
		[6]float64{3, -1, 0, 0, 0, 1},
		[6]float64{4, 3, 10, 0, 0, 1},
	), skeleton.DefaultBuildOpts)

	checkDense(t, M)
	if len(M.Sections) != 2 {
		t.Fatalf("got %d sections", len(M.Sections))
	}
	if len(M.Connectivity) != 1 || M.Connectivity[0] != (govasc.Connection{A: 0, B: 1}) {
		t.Fatalf("connectivity %v", M.Connectivity)
	}
}

func TestBranching(t *testing.T) {
	M := mustBuild(t, swcGraph(
		[6]float64{1, -1, 0, 0, 0, 2},
		[6]float64{2, 1, 0, 5, 0, 2},
		[6]float64{3, 2, -3, 9, 0, 1},
		[6]float64{4, 3, -6, 13, 0, 1},
		[6]float64{5, 2, 3, 9, 0, 1},
	), skeleton.DefaultBuildOpts)

	checkDense(t, M)
	want := [][]int{{0, 1}, {1, 2, 3}, {1, 4}}
	if len(M.Sections) != len(want) {
		t.Fatalf("got %d sections", len(M.Sections))
	}
	for i, S := range M.Sections {
		if len(S.Samples) != len(want[i]) {
			t.Fatalf("section %d = %v, want %v", i, S.Samples, want[i])
		}
		for k := range S.Samples {
			if S.Samples[k] != want[i][k] {
				t.Fatalf("section %d = %v, want %v", i, S.Samples, want[i])
			}
		}
	}
	wantConn := []govasc.Connection{{A: 0, B: 1}, {A: 0, B: 2}, {A: 1, B: 2}}
	if len(M.Connectivity) != len(wantConn) {
		t.Fatalf("connectivity %v", M.Connectivity)
	}
	for i := range wantConn {
		if M.Connectivity[i] != wantConn[i] {
			t.Fatalf("connectivity %v, want %v", M.Connectivity, wantConn)
		}
	}
	if M.Samples[2].ParentIndex != 1 || M.Samples[4].ParentIndex != 1 || M.Samples[0].ParentIndex != -1 {
		t.Fatal("parent links not preserved")
	}
}

func TestIndexCompaction(t *testing.T) {
	// Sparse IDs with a child listed before its parent.
	M := mustBuild(t, swcGraph(
		[6]float64{40, 7, 2, 0, 0, 1},
		[6]float64{7, 100, 1, 0, 0, 1},
		[6]float64{100, -1, 0, 0, 0, 1},
	), skeleton.DefaultBuildOpts)

	checkDense(t, M)
	if M.Samples[0].ParentIndex != 1 || M.Samples[1].ParentIndex != 2 || M.Samples[2].ParentIndex != -1 {
		t.Fatalf("parents %d %d %d", M.Samples[0].ParentIndex, M.Samples[1].ParentIndex, M.Samples[2].ParentIndex)
	}
	if got := M.Sections[0].Samples; len(got) != 3 || got[0] != 2 || got[2] != 0 {
		t.Fatalf("section %v", got)
	}
}

func TestDegenerateSections(t *testing.T) {
	G := swcGraph(
		[6]float64{1, -1, 0, 0, 0, 1},
		[6]float64{2, 1, 1, 0, 0, 1},
		[6]float64{3, -1, 5, 5, 5, 1},
	)
	_, err := skeleton.Build(G, skeleton.DefaultBuildOpts)
	wantBuilderError(t, err, "I2")

	opts := skeleton.DefaultBuildOpts
	opts.AllowDegenerate = true
	M := mustBuild(t, G, opts)
	if M.Diagnostics.NumDegenerateSections != 1 || M.Diagnostics.DegenerateSections[0] != 1 {
		t.Fatalf("diagnostics %+v", M.Diagnostics)
	}
	if len(M.EdgeSections()) != 1 {
		t.Fatal("degenerate sections have no edge form")
	}
}

func TestZeroRadius(t *testing.T) {
	M := mustBuild(t, swcGraph(
		[6]float64{1, -1, 0, 0, 0, 1},
		[6]float64{2, 1, 10, 0, 0, 0},
		[6]float64{3, 2, 20, 0, 0, 1},
	), skeleton.DefaultBuildOpts)

	if M.Diagnostics.NumZeroRadius != 1 || M.Diagnostics.ZeroRadiusSamples[0] != 1 {
		t.Fatalf("diagnostics %+v", M.Diagnostics)
	}
	if M.Samples[1].Radius != 0 {
		t.Fatal("zero radius must be kept")
	}
}

func TestShortSection(t *testing.T) {
	M := mustBuild(t, swcGraph(
		[6]float64{1, -1, 0, 0, 0, 2},
		[6]float64{2, 1, 1, 0, 0, 2},
	), skeleton.DefaultBuildOpts)

	if M.Diagnostics.NumShortSections != 1 {
		t.Fatalf("diagnostics %+v", M.Diagnostics)
	}
}

func TestExplicitSections(t *testing.T) {
	G := &govasc.RawGraph{
		Format: "vmv",
		Samples: []govasc.RawSample{
			{ID: 1, Parent: -1, Pos: vmath.V3(0, 0, 0), Radius: 1},
			{ID: 2, Parent: -1, Pos: vmath.V3(0, 1, 0), Radius: 1},
			{ID: 3, Parent: -1, Pos: vmath.V3(0, 2, 0), Radius: 1},
			{ID: 4, Parent: -1, Pos: vmath.V3(1, 2, 0), Radius: 1},
		},
		Sections: [][]int64{{1, 2, 3}, {3, 4}},
	}
	M := mustBuild(t, G, skeleton.DefaultBuildOpts)
	checkDense(t, M)
	if len(M.Connectivity) != 1 {
		t.Fatalf("connectivity %v", M.Connectivity)
	}
	if M.Samples[3].ParentIndex != 2 || M.Samples[2].ParentIndex != 1 || M.Samples[0].ParentIndex != -1 {
		t.Fatal("parents not derived from sections")
	}

	G.Sections = append(G.Sections, []int64{4})
	_, err := skeleton.Build(G, skeleton.DefaultBuildOpts)
	wantBuilderError(t, err, "I2")

	G.Sections[2] = []int64{4, 9}
	_, err = skeleton.Build(G, skeleton.DefaultBuildOpts)
	wantBuilderError(t, err, "I3")
}

func TestConnectivityAcrossCellBoundary(t *testing.T) {
	G := &govasc.RawGraph{
		Format: "vmv",
		Samples: []govasc.RawSample{
			{ID: 1, Parent: -1, Pos: vmath.V3(-1, 0, 0), Radius: 1},
			{ID: 2, Parent: -1, Pos: vmath.V3(-5e-6, 0, 0), Radius: 1},
			{ID: 3, Parent: -1, Pos: vmath.V3(5e-6, 0, 0), Radius: 1},
			{ID: 4, Parent: -1, Pos: vmath.V3(1, 0, 0), Radius: 1},
		},
		Sections: [][]int64{{1, 2}, {3, 4}},
	}
	M := mustBuild(t, G, skeleton.DefaultBuildOpts)
	if !skeleton.SectionsCoincide(M, 0, 1, vmath.Epsilon) {
		t.Fatal("terminals should coincide")
	}
	if len(M.Connectivity) != 1 || M.Connectivity[0] != (govasc.Connection{A: 0, B: 1}) {
		t.Fatalf("connectivity %v", M.Connectivity)
	}
}

func TestProvidedConnectivity(t *testing.T) {
	G := &govasc.RawGraph{
		Format: "h5",
		Samples: []govasc.RawSample{
			{ID: 0, Pos: vmath.V3(0, 0, 0), Radius: 1},
			{ID: 1, Pos: vmath.V3(1, 0, 0), Radius: 1},
			{ID: 2, Pos: vmath.V3(1, 0, 0), Radius: 1},
			{ID: 3, Pos: vmath.V3(2, 0, 0), Radius: 1},
			{ID: 4, Pos: vmath.V3(5, 0, 0), Radius: 1},
			{ID: 5, Pos: vmath.V3(6, 0, 0), Radius: 1},
		},
		Sections:     [][]int64{{0, 1}, {2, 3}, {4, 5}},
		Connectivity: []govasc.Connection{{A: 0, B: 1}},
	}
	M := mustBuild(t, G, skeleton.DefaultBuildOpts)
	if len(M.Connectivity) != 1 {
		t.Fatalf("connectivity %v", M.Connectivity)
	}

	G.Connectivity = append(G.Connectivity, govasc.Connection{A: 1, B: 2})
	_, err := skeleton.Build(G, skeleton.DefaultBuildOpts)
	berr := wantBuilderError(t, err, "I6")
	if len(berr.Offending) != 2 || berr.Offending[0] != 1 {
		t.Fatalf("offending %v", berr.Offending)
	}
}

func TestInvalidSamples(t *testing.T) {
	_, err := skeleton.Build(swcGraph(
		[6]float64{1, -1, 0, 0, 0, 1},
		[6]float64{2, 1, math.NaN(), 0, 0, 1},
	), skeleton.DefaultBuildOpts)
	wantBuilderError(t, err, "I4")

	_, err = skeleton.Build(swcGraph(
		[6]float64{1, -1, 0, 0, 0, 1},
		[6]float64{2, 1, 1, 0, 0, -1},
	), skeleton.DefaultBuildOpts)
	wantBuilderError(t, err, "I4")

	_, err = skeleton.Build(swcGraph(
		[6]float64{1, -1, 0, 0, 0, 1},
		[6]float64{2, 3, 1, 0, 0, 1},
		[6]float64{3, 2, 2, 0, 0, 1},
		[6]float64{4, 1, 3, 0, 0, 1},
	), skeleton.DefaultBuildOpts)
	wantBuilderError(t, err, "I3")
}

func TestCenter(t *testing.T) {
	opts := skeleton.DefaultBuildOpts
	opts.Center = true
	M := mustBuild(t, swcGraph(
		[6]float64{1, -1, 100, 40, -7, 1},
		[6]float64{2, 1, 130, 42, -3, 1},
		[6]float64{3, 2, 135, 80, 9, 2},
	), opts)

	checkDense(t, M)
	if vmath.Length(M.Center) >= 1e-6*vmath.BoxDiagonal(M.Bounds) {
		t.Fatalf("center %v not at origin", M.Center)
	}
}

func TestEmpty(t *testing.T) {
	M := mustBuild(t, &govasc.RawGraph{}, skeleton.DefaultBuildOpts)
	if len(M.Samples) != 0 || len(M.Sections) != 0 {
		t.Fatal("expected an empty morphology")
	}
}
