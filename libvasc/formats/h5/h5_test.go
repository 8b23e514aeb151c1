package h5_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/2x3systems/govasc/libvasc/analysis"
	"github.com/2x3systems/govasc/libvasc/formats/h5"
	"github.com/2x3systems/govasc/libvasc/formats/swc"
	"github.com/2x3systems/govasc/libvasc/skeleton"
)

const forkSWC = `1 3 0 0 0 1 -1
2 3 5 0 0 1 1
3 3 10 0 0 0.5 2
4 3 5 5 0 0.5 2
`

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "fork.swc")
	if err := os.WriteFile(src, []byte(forkSWC), 0o644); err != nil {
		t.Fatal(err)
	}
	G, err := swc.Format{}.Load(src)
	if err != nil {
		t.Fatal(err)
	}
	M, err := skeleton.Build(G, skeleton.DefaultBuildOpts)
	if err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "fork.h5")
	if err = (h5.Format{}).WriteFile(dst, M); err != nil {
		t.Fatal(err)
	}
	if !(h5.Format{}).Probe(dst) {
		t.Error("written file not recognized")
	}
	if (h5.Format{}).Probe(src) {
		t.Error("swc file recognized as h5")
	}

	G2, err := h5.Format{}.Load(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !G2.HasSections() || len(G2.Sections) != len(M.Sections) {
		t.Fatalf("got %d sections, want %d", len(G2.Sections), len(M.Sections))
	}
	M2, err := skeleton.Build(G2, skeleton.DefaultBuildOpts)
	if err != nil {
		t.Fatal(err)
	}
	if len(M2.Connectivity) != len(M.Connectivity) {
		t.Errorf("got %d connections, want %d", len(M2.Connectivity), len(M.Connectivity))
	}
	want, got := analysis.TotalLength(M), analysis.TotalLength(M2)
	if math.Abs(want-15) > 1e-9 || math.Abs(got-want) > 1e-9 {
		t.Errorf("total length %g after round trip, %g before", got, want)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := (h5.Format{}).Load(filepath.Join(t.TempDir(), "none.h5")); err == nil {
		t.Fatal("expected an error")
	}
}
