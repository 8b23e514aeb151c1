package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/config"
	"github.com/2x3systems/govasc/libvasc/mesh"
	"github.com/2x3systems/govasc/libvasc/mesh/metaball"
	"github.com/2x3systems/govasc/libvasc/mesh/sweep"
	"github.com/2x3systems/govasc/libvasc/pipeline"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	opts, err := cfg.PipelineOpts()
	if err != nil {
		t.Fatal(err)
	}
	def := pipeline.DefaultOpts
	if opts.OutDir != def.OutDir || opts.ApplyFrame || opts.Frame != def.Frame || opts.Analyze != def.Analyze {
		t.Errorf("got %+v", opts)
	}
	if opts.Algorithm != mesh.AlgoPolyline || len(opts.MeshFormats) != 1 || opts.MeshFormats[0] != mesh.FormatPLY {
		t.Errorf("mesh: %q %v", opts.Algorithm, opts.MeshFormats)
	}
	if opts.Sweep != def.Sweep {
		t.Errorf("sweep: got %+v, want %+v", opts.Sweep, def.Sweep)
	}
	if opts.MetaBall != def.MetaBall {
		t.Errorf("meta-balls: got %+v, want %+v", opts.MetaBall, def.MetaBall)
	}
	if opts.Build != def.Build {
		t.Errorf("build: got %+v, want %+v", opts.Build, def.Build)
	}
	if _, ok := cfg.CatalogOpts(); ok {
		t.Error("catalog configured by default")
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("VASC_OUT_DIR", "/tmp/vasc")
	t.Setenv("VASC_CATALOG", "/tmp/vasc.db")
	t.Setenv("VASC_TRANSFORM_FLIP_AXES", "x,Z")
	t.Setenv("VASC_MESH_ALGORITHM", "meta-balls")
	t.Setenv("VASC_MESH_RESOLUTION", "user-defined")
	t.Setenv("VASC_MESH_VOXEL_SIZE", "0.25")
	t.Setenv("VASC_MESH_FORMATS", "obj,stl")
	t.Setenv("VASC_ANALYSIS_PLOTS", "true")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	opts, err := cfg.PipelineOpts()
	if err != nil {
		t.Fatal(err)
	}
	if opts.OutDir != "/tmp/vasc" || !opts.Plots {
		t.Errorf("got %+v", opts)
	}
	if len(opts.FlipAxes) != 2 || opts.FlipAxes[0] != vmath.AxisX || opts.FlipAxes[1] != vmath.AxisZ {
		t.Errorf("flip axes %v", opts.FlipAxes)
	}
	if opts.Algorithm != mesh.AlgoMetaBalls || opts.MetaBall.Resolution != metaball.ResolutionUserDefined ||
		opts.MetaBall.VoxelSize != 0.25 {
		t.Errorf("meta-balls %q %+v", opts.Algorithm, opts.MetaBall)
	}
	if strings.Join(opts.MeshFormats, ",") != "obj,stl" {
		t.Errorf("mesh formats %v", opts.MeshFormats)
	}
	cat, ok := cfg.CatalogOpts()
	if !ok || cat.DbPathName != "/tmp/vasc.db" {
		t.Errorf("catalog %+v", cat)
	}
}

const job = `
inputs: [a.swc, b.h5]
out_dir: out
mesh:
  style: zigzag
  connection: merged
  formats: [ply-binary]
analysis:
  enabled: false
`

func TestJobFile(t *testing.T) {
	t.Setenv("VASC_OUT_DIR", "from-env")
	t.Setenv("VASC_MESH_SIDES", "8")

	pathname := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(pathname, []byte(job), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(pathname)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Inputs) != 2 || cfg.Inputs[1] != "b.h5" {
		t.Errorf("inputs %v", cfg.Inputs)
	}
	opts, err := cfg.PipelineOpts()
	if err != nil {
		t.Fatal(err)
	}
	if opts.OutDir != "out" {
		t.Errorf("job file did not override env: %q", opts.OutDir)
	}
	if opts.Sweep.Sides != 8 {
		t.Errorf("env value lost under job file: %d sides", opts.Sweep.Sides)
	}
	if opts.Sweep.Style != sweep.Zigzag || opts.Sweep.Connection != mesh.Merged {
		t.Errorf("sweep %+v", opts.Sweep)
	}
	if opts.Analyze || !opts.Reconstruct {
		t.Errorf("analyze %v, reconstruct %v", opts.Analyze, opts.Reconstruct)
	}
}

func TestBadOpts(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "out_dirr: x\n"},
		{"axis", "transform: {flip_axes: [w]}\n"},
		{"style", "mesh: {style: wavy}\n"},
		{"scheme", "mesh: {color_scheme: rainbow}\n"},
		{"color map", "analysis: {color_map: plasma}\n"},
		{"resolution", "mesh: {resolution: fine}\n"},
		{"connection", "mesh: {connection: glued}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load("")
			if err != nil {
				t.Fatal(err)
			}
			if err = cfg.Overlay(strings.NewReader(tt.doc)); err == nil {
				_, err = cfg.PipelineOpts()
			}
			if !errors.Is(err, govasc.ErrBadOpts) {
				t.Errorf("got %v", err)
			}
		})
	}

	cfg, _ := config.Load("")
	cfg.Mesh.Formats = []string{"fbx"}
	if _, err := cfg.PipelineOpts(); !errors.Is(err, govasc.ErrUnknownFormat) {
		t.Errorf("mesh format: got %v", err)
	}
}
