package colorcode_test

import (
	"testing"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/analysis"
	"github.com/2x3systems/govasc/libvasc/colorcode"
	"github.com/2x3systems/govasc/libvasc/skeleton"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

func TestDiscretize(t *testing.T) {
	some := analysis.Some
	tests := []struct {
		name string
		vals []analysis.Measure
		want []int
	}{
		{"linear", []analysis.Measure{some(0), some(0.5), some(0.99), some(1)}, []int{0, 8, 15, 15}},
		{"constant", []analysis.Measure{some(3), some(3)}, []int{0, 0}},
		{"undefined", []analysis.Measure{some(2), analysis.None, some(4)}, []int{0, 0, 15}},
		{"empty", nil, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := colorcode.Discretize(tt.vals, vmath.DefaultResolution)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func buildY(t *testing.T) *govasc.Morphology {
	t.Helper()
	G := &govasc.RawGraph{}
	for _, row := range [][6]float64{
		{1, -1, 0, 0, 0, 2},
		{2, 1, 0, 10, 0, 2},
		{3, 2, -5, 20, 0, 1},
		{4, 3, -10, 30, 0, 1},
		{5, 2, 0.5, 10.5, 0, 1},
	} {
		G.Samples = append(G.Samples, govasc.RawSample{
			ID: int64(row[0]), Parent: int64(row[1]),
			Pos: vmath.V3(row[2], row[3], row[4]), Radius: row[5],
		})
	}
	M, err := skeleton.Build(G, skeleton.DefaultBuildOpts)
	if err != nil {
		t.Fatal(err)
	}
	return M
}

func TestSchemes(t *testing.T) {
	M := buildY(t)
	const R = 16

	if got := colorcode.Colors(M, colorcode.Default, colorcode.PerSection, R); got[0] != 0 || got[1] != 0 || got[2] != 0 {
		t.Errorf("default %v", got)
	}
	if got := colorcode.Colors(M, colorcode.Alternating, colorcode.PerSection, R); got[0] != 0 || got[1] != R-1 || got[2] != 0 {
		t.Errorf("alternating %v", got)
	}
	// Section 2 is the short stub off the branch point.
	if got := colorcode.Colors(M, colorcode.ShortSections, colorcode.PerSection, R); got[0] != 0 || got[1] != 0 || got[2] != R-1 {
		t.Errorf("short sections %v", got)
	}
	if got := colorcode.Colors(M, colorcode.ByNumberSamples, colorcode.PerSection, R); got[1] != R-1 || got[0] != 0 {
		t.Errorf("number of samples %v", got)
	}
	if got := colorcode.Colors(M, colorcode.ByLength, colorcode.PerSegment, R); len(got) != M.NumSegments() {
		t.Errorf("per-segment colors %v", got)
	}
}

func TestParseScheme(t *testing.T) {
	for s := colorcode.Default; s <= colorcode.ShortSections; s++ {
		got, err := colorcode.ParseScheme(s.String())
		if err != nil || got != s {
			t.Errorf("%v: got %v %v", s, got, err)
		}
	}
	if _, err := colorcode.ParseScheme("rainbow"); err == nil {
		t.Error("expected an error")
	}
}

func TestPolyLines(t *testing.T) {
	M := buildY(t)
	lines := colorcode.PolyLines(M, colorcode.ByRadius, colorcode.PerSegment, 4)
	if len(lines) != len(M.Sections) {
		t.Fatalf("got %d lines", len(lines))
	}
	for si, L := range lines {
		if len(L.Points) != len(M.Sections[si].Samples) {
			t.Fatalf("line %d has %d points", si, len(L.Points))
		}
		for _, p := range L.Points {
			if p.Color < 0 || p.Color >= 4 {
				t.Fatalf("color %d out of range", p.Color)
			}
		}
	}
	// The trunk has the thickest segment.
	if lines[0].Points[0].Color != 3 {
		t.Errorf("trunk color %d", lines[0].Points[0].Color)
	}

	pal := colorcode.Palette([]int{0, 3}, vmath.Grayscale, 4)
	if pal[0].R != 0 || pal[1].R != 255 {
		t.Errorf("palette %v", pal)
	}
}
