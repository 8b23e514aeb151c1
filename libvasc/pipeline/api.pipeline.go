// Package pipeline composes reader, builder, analysis, mesher and exporters into one pass per
// input file and runs those passes over single files or whole directories.
package pipeline

import (
	"time"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/analysis"
	"github.com/2x3systems/govasc/libvasc/mesh"
	"github.com/2x3systems/govasc/libvasc/mesh/metaball"
	"github.com/2x3systems/govasc/libvasc/mesh/sweep"
	"github.com/2x3systems/govasc/libvasc/plot"
	"github.com/2x3systems/govasc/libvasc/skeleton"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

// Stage names, used for spans, metrics and log lines.
const (
	StageRead      = "read"
	StageBuild     = "build"
	StageTransform = "transform"
	StageAnalyze   = "analyze"
	StageMesh      = "mesh"
	StageExport    = "export"
)

// Opts selects what a pipeline does with each input.
type Opts struct {
	OutDir string // artifacts land here
	Format string // input format tag; empty sniffs each file

	Build    skeleton.BuildOpts
	Scale    float64      // unit conversion factor; 0 or 1 leaves coordinates alone
	FlipAxes []vmath.Axis // applied in order after scaling

	// ApplyFrame takes radii from dynamics frame Frame before analysis and meshing.
	ApplyFrame bool
	Frame      int

	Analyze bool // write CSV tables and a YAML summary
	Plots   bool // also render a histogram per distribution
	Plot    plot.Opts

	Reconstruct bool
	Algorithm   string // mesh.AlgoPolyline, mesh.AlgoMetaBalls, ...
	Sweep       sweep.Opts
	MetaBall    metaball.Opts
	MeshFormats []string // mesh writer tags

	ExportFormats []string // morphology writer tags

	// SkipUnchanged skips inputs the catalog already holds with identical content.
	SkipUnchanged bool
}

// DefaultOpts analyzes each input and writes a polyline PLY mesh.
var DefaultOpts = Opts{
	OutDir:      ".",
	Build:       skeleton.DefaultBuildOpts,
	Analyze:     true,
	Plot:        plot.DefaultOpts,
	Reconstruct: true,
	Algorithm:   mesh.AlgoPolyline,
	Sweep:       sweep.DefaultOpts,
	MetaBall:    metaball.DefaultOpts,
	MeshFormats: []string{mesh.FormatPLY},
}

// Result is the outcome of one pipeline.
type Result struct {
	Input      string
	Name       string // artifact base name
	Format     string
	Skipped    bool   // unchanged since the catalog last saw it
	RecordID   string // catalog record, when a catalog is attached
	Morphology *govasc.Morphology
	Report     *analysis.Report
	Meshes     []*govasc.Mesh
	Artifacts  []string // committed output paths
	Duration   time.Duration
}

// Failure pairs an input with the error that stopped its pipeline.
type Failure struct {
	Input string
	Err   error
}

// Batch is the outcome of RunDir.
type Batch struct {
	RunID    string
	Results  []*Result // one per attempted input, including failures
	Failures []Failure
	Unknown  []string // files no reader accepted
}

// Err returns the first failure, or nil.
func (B *Batch) Err() error {
	if len(B.Failures) == 0 {
		return nil
	}
	return B.Failures[0].Err
}

// ExitCode returns the most severe exit code over every failure.
func (B *Batch) ExitCode() int {
	code := 0
	for _, f := range B.Failures {
		code = max(code, ExitCode(f.Err))
	}
	return code
}
