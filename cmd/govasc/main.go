package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/plan-systems/klog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/2x3systems/govasc/libvasc/catalog"
	"github.com/2x3systems/govasc/libvasc/config"
	"github.com/2x3systems/govasc/libvasc/pipeline"
)

const usage = `usage:
  govasc [flags] input...     run the pipeline over files and directories
  govasc -script file.py      run a gpython script with the vasc module
  govasc -repl                start an interactive gpython session
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:])
	stop()
	klog.Flush()
	os.Exit(code)
}

type cmdFlags struct {
	job        string
	script     string
	repl       bool
	metricsOut string

	outDir        string
	format        string
	algorithm     string
	meshFormats   string
	exportFormats string
	catalog       string
	skip          bool
	jobs          int
	plots         bool
	noAnalyze     bool
	noMesh        bool
	tessellation  float64
	resolution    string
	voxelSize     float64
	colorScheme   string
}

func run(ctx context.Context, args []string) int {
	fset := flag.NewFlagSet("govasc", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "0")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	var f cmdFlags
	fset.StringVar(&f.job, "job", "", "YAML job file overlaid on VASC_* environment settings")
	fset.StringVar(&f.script, "script", "", "run a gpython script instead of the pipeline")
	fset.BoolVar(&f.repl, "repl", false, "start an interactive gpython session")
	fset.StringVar(&f.metricsOut, "metrics-out", "", "write pipeline metrics in Prometheus text format to this file")

	fset.StringVar(&f.outDir, "out", "", "output directory")
	fset.StringVar(&f.format, "format", "", "input format tag; sniffed per file when empty")
	fset.StringVar(&f.algorithm, "algorithm", "", "mesh algorithm: polyline, meta-balls, skin, voxelization")
	fset.StringVar(&f.meshFormats, "mesh-formats", "", "comma-separated mesh writer tags")
	fset.StringVar(&f.exportFormats, "export", "", "comma-separated morphology writer tags")
	fset.StringVar(&f.catalog, "catalog", "", "catalog database directory")
	fset.BoolVar(&f.skip, "skip-unchanged", false, "skip inputs the catalog holds with identical content")
	fset.IntVar(&f.jobs, "j", 0, "inputs processed in parallel")
	fset.BoolVar(&f.plots, "plots", false, "render a histogram per distribution")
	fset.BoolVar(&f.noAnalyze, "no-analyze", false, "skip CSV and summary export")
	fset.BoolVar(&f.noMesh, "no-mesh", false, "skip mesh reconstruction")
	fset.Float64Var(&f.tessellation, "tessellation", 1, "polyline tessellation level in (0, 1]")
	fset.StringVar(&f.resolution, "resolution", "", "meta-ball resolution: auto or user-defined")
	fset.Float64Var(&f.voxelSize, "voxel-size", 0, "meta-ball voxel edge for user-defined resolution")
	fset.StringVar(&f.colorScheme, "color-scheme", "", "polyline color scheme, e.g. radius or short-sections")
	fset.Usage = func() {
		fmt.Fprint(fset.Output(), usage)
		fset.PrintDefaults()
	}

	if err := fset.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return pipeline.ExitOK
		}
		return pipeline.ExitInvariant
	}

	if f.repl || f.script != "" {
		if err := goRunScript(f.script); err != nil {
			return pipeline.ExitInvariant
		}
		return pipeline.ExitOK
	}

	cfg, err := config.Load(f.job)
	if err != nil {
		klog.Errorf("config: %v", err)
		return pipeline.ExitCode(err)
	}
	applyFlags(fset, &f, cfg)

	inputs := append(cfg.Inputs, fset.Args()...)
	if len(inputs) == 0 {
		fset.Usage()
		return pipeline.ExitInvariant
	}

	opts, err := cfg.PipelineOpts()
	if err != nil {
		klog.Errorf("config: %v", err)
		return pipeline.ExitCode(err)
	}

	pctx := pipeline.NewContext(pipeline.KlogLogger{})
	if catOpts, ok := cfg.CatalogOpts(); ok {
		cat, err := catalog.Open(catOpts)
		if err != nil {
			klog.Errorf("catalog: %v", err)
			return pipeline.ExitIO
		}
		defer cat.Close()
		pctx.Catalog = cat
	}

	o, err := pipeline.New(pctx, opts)
	if err != nil {
		klog.Errorf("%v", err)
		return pipeline.ExitCode(err)
	}

	B, err := runBatch(ctx, o, inputs, cfg.Jobs)
	code := B.ExitCode()
	if err != nil {
		klog.Errorf("%v", err)
		code = max(code, pipeline.ExitCode(err))
	}
	klog.Infof("run %s: %d inputs, %d failed, %d unrecognized", B.RunID, len(B.Results), len(B.Failures), len(B.Unknown))

	if f.metricsOut != "" {
		if err := prometheus.WriteToTextfile(f.metricsOut, pctx.Registry); err != nil {
			klog.Errorf("metrics: %v", err)
			code = max(code, pipeline.ExitIO)
		}
	}
	return code
}

// applyFlags overrides cfg with the flags given explicitly on the command line.
func applyFlags(fset *flag.FlagSet, f *cmdFlags, cfg *config.Config) {
	fset.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "out":
			cfg.OutDir = f.outDir
		case "format":
			cfg.Format = f.format
		case "algorithm":
			cfg.Mesh.Algorithm = f.algorithm
		case "mesh-formats":
			cfg.Mesh.Formats = splitList(f.meshFormats)
		case "export":
			cfg.ExportFormats = splitList(f.exportFormats)
		case "catalog":
			cfg.Catalog = f.catalog
		case "skip-unchanged":
			cfg.SkipUnchanged = f.skip
		case "j":
			cfg.Jobs = f.jobs
		case "plots":
			cfg.Analysis.Plots = f.plots
		case "no-analyze":
			cfg.Analysis.Enabled = !f.noAnalyze
		case "no-mesh":
			cfg.Mesh.Enabled = !f.noMesh
		case "tessellation":
			cfg.Mesh.Tessellation = f.tessellation
		case "resolution":
			cfg.Mesh.Resolution = f.resolution
		case "voxel-size":
			cfg.Mesh.VoxelSize = f.voxelSize
		case "color-scheme":
			cfg.Mesh.ColorScheme = f.colorScheme
		}
	})
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
