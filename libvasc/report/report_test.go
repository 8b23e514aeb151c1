package report_test

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/analysis"
	"github.com/2x3systems/govasc/libvasc/report"
	"github.com/2x3systems/govasc/libvasc/skeleton"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

func elbow(t *testing.T) *analysis.Report {
	t.Helper()
	G := &govasc.RawGraph{Samples: []govasc.RawSample{
		{ID: 1, Parent: -1, Pos: vmath.V3(0, 0, 0), Radius: 1},
		{ID: 2, Parent: 1, Pos: vmath.V3(2, 0, 0), Radius: 1},
		{ID: 3, Parent: 2, Pos: vmath.V3(2, 3, 0), Radius: 0.5},
	}}
	M, err := skeleton.Build(G, skeleton.DefaultBuildOpts)
	if err != nil {
		t.Fatal(err)
	}
	M.Name = "elbow"
	return analysis.Analyze(M)
}

func readCSV(t *testing.T, pathname string) [][]string {
	t.Helper()
	f, err := os.Open(pathname)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestWriteCSV(t *testing.T) {
	R := elbow(t)
	dir := t.TempDir()
	written, err := report.WriteCSV(dir, "elbow", R)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 2+len(R.Spatial) {
		t.Fatalf("wrote %v", written)
	}

	sections := readCSV(t, filepath.Join(dir, "elbow_sections.csv"))
	if len(sections) != 2 || len(sections[0]) != len(report.SectionsHeader) {
		t.Fatalf("sections table %v", sections)
	}
	if sections[1][3] != "5" || sections[1][6] != "0.5" || sections[1][8] != "1" {
		t.Fatalf("section row %v", sections[1])
	}
	col := make(map[string]int)
	for i, name := range sections[0] {
		col[name] = i
	}
	if v, err := strconv.ParseFloat(sections[1][col["segment_length_ratio"]], 64); err != nil || math.Abs(v-2.0/3) > 1e-9 {
		t.Fatalf("segment length ratio %q", sections[1][col["segment_length_ratio"]])
	}
	for _, quantity := range []string{"area", "volume"} {
		lo, err1 := strconv.ParseFloat(sections[1][col["min_segment_"+quantity]], 64)
		hi, err2 := strconv.ParseFloat(sections[1][col["max_segment_"+quantity]], 64)
		ratio, err3 := strconv.ParseFloat(sections[1][col["segment_"+quantity+"_ratio"]], 64)
		if err1 != nil || err2 != nil || err3 != nil || !(lo > 0 && lo <= hi) || math.Abs(ratio-lo/hi) > 1e-9 {
			t.Fatalf("segment %s columns in %v", quantity, sections[1])
		}
	}

	segments := readCSV(t, filepath.Join(dir, "elbow_segments.csv"))
	if len(segments) != 3 {
		t.Fatalf("segments table %v", segments)
	}
	want := []string{"0", "1", "3", "y"}
	got := []string{segments[2][0], segments[2][1], segments[2][2], segments[2][9]}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("second segment row %v", segments[2])
		}
	}

	spatial := readCSV(t, filepath.Join(dir, "elbow_spatial_"+analysis.SpatialLength+".csv"))
	if len(spatial) != 3 || spatial[1][0] != "2" || spatial[1][1] != "1" || spatial[2][2] != "1.5" {
		t.Fatalf("spatial table %v", spatial)
	}
}

func TestWriteSummaryYAML(t *testing.T) {
	R := elbow(t)
	pathname := filepath.Join(t.TempDir(), "elbow.yaml")
	if err := report.WriteSummaryYAML(pathname, R); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(pathname)
	if err != nil {
		t.Fatal(err)
	}
	var S report.Summary
	if err = yaml.Unmarshal(data, &S); err != nil {
		t.Fatal(err)
	}
	if S.Name != "elbow" || S.Totals.Segments != 2 || S.Totals.Length != 5 {
		t.Fatalf("summary %+v", S)
	}
	if S.Alignment.X != 2 || S.Alignment.Y != 3 {
		t.Fatalf("alignment %+v", S.Alignment)
	}
	d, ok := S.Distributions[analysis.DistSegmentLength]
	if !ok || d.N != 2 || d.Min != 2 || d.Max != 3 || d.Entity != "segment" {
		t.Fatalf("segment length summary %+v", d)
	}
}
