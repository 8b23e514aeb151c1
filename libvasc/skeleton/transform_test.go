package skeleton_test

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/skeleton"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

func TestScale(t *testing.T) {
	M := mustBuild(t, unevenGraph(), skeleton.DefaultBuildOpts)
	S, err := skeleton.Scale(M, 1e-3, skeleton.DefaultBuildOpts)
	if err != nil {
		t.Fatal(err)
	}
	if S == M || M.Samples[3].Pos.X != 7.3 {
		t.Fatal("input was mutated")
	}
	if math.Abs(S.Samples[3].Pos.X-7.3e-3) > 1e-15 || math.Abs(S.Samples[3].Radius-3e-3) > 1e-15 {
		t.Fatalf("sample %+v", S.Samples[3])
	}
	if math.Abs(vmath.BoxDiagonal(S.Bounds)-1e-3*vmath.BoxDiagonal(M.Bounds)) > 1e-12 {
		t.Fatal("bounds not rescaled")
	}

	if _, err = skeleton.Scale(M, 0, skeleton.DefaultBuildOpts); !errors.Is(err, govasc.ErrBadOpts) {
		t.Fatalf("got %v", err)
	}
}

func TestFlipAxis(t *testing.T) {
	M := mustBuild(t, unevenGraph(), skeleton.DefaultBuildOpts)
	F, err := skeleton.FlipAxis(M, vmath.AxisY, skeleton.DefaultBuildOpts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range M.Samples {
		a, b := M.Samples[i].Pos, F.Samples[i].Pos
		if a.X != b.X || a.Y != -b.Y || a.Z != b.Z {
			t.Fatalf("sample %d: %v -> %v", i, a, b)
		}
	}
	if F.Bounds.Max.Y != -M.Bounds.Min.Y {
		t.Fatal("bounds not mirrored")
	}
	if len(F.Connectivity) != len(M.Connectivity) {
		t.Fatal("connectivity changed")
	}
}

func TestApplyFrame(t *testing.T) {
	G := swcGraph(
		[6]float64{1, -1, 0, 0, 0, 1},
		[6]float64{2, 1, 5, 0, 0, 1},
	)
	G.Dynamics = &govasc.Dynamics{
		Radius: [][]float64{{1, 1}, {2, 0}},
	}
	M := mustBuild(t, G, skeleton.DefaultBuildOpts)

	F, err := skeleton.ApplyFrame(M, 1, skeleton.DefaultBuildOpts)
	if err != nil {
		t.Fatal(err)
	}
	if F.Samples[0].Radius != 2 || F.Samples[1].Radius != 0 {
		t.Fatalf("radii %g %g", F.Samples[0].Radius, F.Samples[1].Radius)
	}
	if F.Diagnostics.NumZeroRadius != 1 || M.Diagnostics.NumZeroRadius != 0 {
		t.Fatal("diagnostics not recomputed per frame")
	}

	if _, err = skeleton.ApplyFrame(M, 2, skeleton.DefaultBuildOpts); !errors.Is(err, govasc.ErrFrameOutOfRange) {
		t.Fatalf("got %v", err)
	}
}
