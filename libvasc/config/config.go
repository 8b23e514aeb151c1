// Package config loads pipeline settings from VASC_* environment variables, optionally
// overlaid by a YAML job file.
package config

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/catalog"
	"github.com/2x3systems/govasc/libvasc/colorcode"
	"github.com/2x3systems/govasc/libvasc/mesh"
	"github.com/2x3systems/govasc/libvasc/mesh/metaball"
	"github.com/2x3systems/govasc/libvasc/mesh/sweep"
	"github.com/2x3systems/govasc/libvasc/pipeline"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "VASC"

// Config is the flat, serializable form of a job.
type Config struct {
	Inputs  []string `yaml:"inputs" ignored:"true"`
	OutDir  string   `yaml:"out_dir" envconfig:"OUT_DIR" default:"."`
	Format  string   `yaml:"format" envconfig:"FORMAT"`
	Jobs    int      `yaml:"jobs" envconfig:"JOBS" default:"1"`
	Catalog string   `yaml:"catalog" envconfig:"CATALOG"`

	SkipUnchanged bool `yaml:"skip_unchanged" envconfig:"SKIP_UNCHANGED"`

	Build     Build     `yaml:"build" envconfig:"BUILD"`
	Transform Transform `yaml:"transform" envconfig:"TRANSFORM"`
	Analysis  Analysis  `yaml:"analysis" envconfig:"ANALYSIS"`
	Mesh      Mesh      `yaml:"mesh" envconfig:"MESH"`

	ExportFormats []string `yaml:"export_formats" envconfig:"EXPORT_FORMATS"`
}

type Build struct {
	Resample        bool    `yaml:"resample" envconfig:"RESAMPLE"`
	MinSpacing      float64 `yaml:"min_spacing" envconfig:"MIN_SPACING" default:"0.5"`
	MaxSpacing      float64 `yaml:"max_spacing" envconfig:"MAX_SPACING" default:"2"`
	Center          bool    `yaml:"center" envconfig:"CENTER"`
	AllowDegenerate bool    `yaml:"allow_degenerate" envconfig:"ALLOW_DEGENERATE"`
}

type Transform struct {
	Scale    float64  `yaml:"scale" envconfig:"SCALE"`
	FlipAxes []string `yaml:"flip_axes" envconfig:"FLIP_AXES"`
	Frame    int      `yaml:"frame" envconfig:"FRAME" default:"-1"` // -1 leaves radii alone
}

type Analysis struct {
	Enabled  bool   `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	Plots    bool   `yaml:"plots" envconfig:"PLOTS"`
	Bins     int    `yaml:"bins" envconfig:"BINS" default:"20"`
	ColorMap string `yaml:"color_map" envconfig:"COLOR_MAP" default:"viridis"`
}

type Mesh struct {
	Enabled    bool     `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	Algorithm  string   `yaml:"algorithm" envconfig:"ALGORITHM" default:"polyline"`
	Formats    []string `yaml:"formats" envconfig:"FORMATS" default:"ply"`
	Connection string   `yaml:"connection" envconfig:"CONNECTION" default:"separate"`

	// polyline
	Sides        int     `yaml:"sides" envconfig:"SIDES" default:"16"`
	Tessellation float64 `yaml:"tessellation" envconfig:"TESSELLATION" default:"1"`
	Smooth       bool    `yaml:"smooth" envconfig:"SMOOTH" default:"true"`
	Caps         bool    `yaml:"caps" envconfig:"CAPS" default:"true"`
	Style        string  `yaml:"style" envconfig:"STYLE" default:"original"`
	ColorScheme  string  `yaml:"color_scheme" envconfig:"COLOR_SCHEME" default:"default"`
	ColorMap     string  `yaml:"color_map" envconfig:"COLOR_MAP" default:"viridis"`

	// meta-balls
	Resolution    string  `yaml:"resolution" envconfig:"RESOLUTION" default:"auto"`
	VoxelSize     float64 `yaml:"voxel_size" envconfig:"VOXEL_SIZE"`
	SpacingFactor float64 `yaml:"spacing_factor" envconfig:"SPACING_FACTOR" default:"0.5"`
	Stiffness     float64 `yaml:"stiffness" envconfig:"STIFFNESS" default:"1.5"`
	Threshold     float64 `yaml:"threshold" envconfig:"THRESHOLD"`
}

// Load reads the environment and, when jobFile is non-empty, overlays the keys present in
// that YAML file.
func Load(jobFile string) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.Wrap(govasc.ErrBadOpts, err.Error())
	}
	if jobFile == "" {
		return cfg, nil
	}
	buf, err := os.ReadFile(jobFile)
	if err != nil {
		return nil, err
	}
	if err = cfg.Overlay(bytes.NewReader(buf)); err != nil {
		return nil, errors.Wrapf(err, "job file %s", jobFile)
	}
	return cfg, nil
}

// Overlay decodes a YAML job document over cfg. Unknown keys are rejected.
func (cfg *Config) Overlay(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return errors.Wrap(govasc.ErrBadOpts, err.Error())
	}
	return nil
}

// CatalogOpts returns the catalog options, or false if no catalog is configured.
func (cfg *Config) CatalogOpts() (catalog.Opts, bool) {
	if cfg.Catalog == "" {
		return catalog.Opts{}, false
	}
	opts := catalog.DefaultOpts
	opts.DbPathName = cfg.Catalog
	return opts, true
}

// PipelineOpts resolves every name in cfg and returns the equivalent pipeline options.
func (cfg *Config) PipelineOpts() (pipeline.Opts, error) {
	opts := pipeline.DefaultOpts
	opts.OutDir = cfg.OutDir
	opts.Format = cfg.Format
	opts.SkipUnchanged = cfg.SkipUnchanged
	opts.ExportFormats = cfg.ExportFormats

	opts.Build.Resample = cfg.Build.Resample
	opts.Build.MinSpacing = cfg.Build.MinSpacing
	opts.Build.MaxSpacing = cfg.Build.MaxSpacing
	opts.Build.Center = cfg.Build.Center
	opts.Build.AllowDegenerate = cfg.Build.AllowDegenerate

	opts.Scale = cfg.Transform.Scale
	if cfg.Transform.Frame >= 0 {
		opts.ApplyFrame, opts.Frame = true, cfg.Transform.Frame
	}
	opts.FlipAxes = nil
	for _, name := range cfg.Transform.FlipAxes {
		axis, err := ParseAxis(name)
		if err != nil {
			return opts, err
		}
		opts.FlipAxes = append(opts.FlipAxes, axis)
	}

	opts.Analyze = cfg.Analysis.Enabled
	opts.Plots = cfg.Analysis.Plots
	if cfg.Analysis.Bins > 0 {
		opts.Plot.Bins = cfg.Analysis.Bins
	}
	if _, ok := vmath.ColorMapByName(cfg.Analysis.ColorMap); !ok {
		return opts, errors.Wrapf(govasc.ErrBadOpts, "unknown color map %q", cfg.Analysis.ColorMap)
	}
	opts.Plot.ColorMap = cfg.Analysis.ColorMap

	m := &cfg.Mesh
	opts.Reconstruct = m.Enabled
	opts.Algorithm = strings.ToLower(m.Algorithm)
	opts.MeshFormats = m.Formats
	for _, tag := range m.Formats {
		if _, err := mesh.WriterFor(tag); err != nil {
			return opts, err
		}
	}

	var err error
	if opts.Sweep.Connection, err = ParseConnection(m.Connection); err != nil {
		return opts, err
	}
	opts.Sweep.Sides = m.Sides
	opts.Sweep.Tessellation = m.Tessellation
	opts.Sweep.Smooth = m.Smooth
	opts.Sweep.Caps = m.Caps
	if opts.Sweep.Style, err = sweep.ParseStyle(strings.ToLower(m.Style)); err != nil {
		return opts, err
	}
	if opts.Sweep.ColorScheme, err = colorcode.ParseScheme(m.ColorScheme); err != nil {
		return opts, err
	}
	if m.ColorMap != "" {
		if _, ok := vmath.ColorMapByName(m.ColorMap); !ok {
			return opts, errors.Wrapf(govasc.ErrBadOpts, "unknown color map %q", m.ColorMap)
		}
	}
	opts.Sweep.ColorMap = m.ColorMap

	if opts.MetaBall.Resolution, err = metaball.ParseResolution(strings.ToLower(m.Resolution)); err != nil {
		return opts, err
	}
	opts.MetaBall.VoxelSize = m.VoxelSize
	opts.MetaBall.SpacingFactor = m.SpacingFactor
	opts.MetaBall.Stiffness = m.Stiffness
	opts.MetaBall.Threshold = m.Threshold
	opts.MetaBall.Smooth = m.Smooth

	return opts, nil
}

// ParseAxis accepts "x", "y" or "z" in either case.
func ParseAxis(name string) (vmath.Axis, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "x":
		return vmath.AxisX, nil
	case "y":
		return vmath.AxisY, nil
	case "z":
		return vmath.AxisZ, nil
	}
	return vmath.AxisX, errors.Wrapf(govasc.ErrBadOpts, "unknown axis %q", name)
}

// ParseConnection accepts "separate" or "merged".
func ParseConnection(name string) (mesh.ObjectsConnection, error) {
	switch strings.ToLower(name) {
	case "", "separate":
		return mesh.Separate, nil
	case "merged", "connected":
		return mesh.Merged, nil
	}
	return mesh.Separate, errors.Wrapf(govasc.ErrBadOpts, "unknown objects connection %q", name)
}
