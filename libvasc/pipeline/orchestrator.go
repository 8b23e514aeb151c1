package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/analysis"
	"github.com/2x3systems/govasc/libvasc/catalog"
	"github.com/2x3systems/govasc/libvasc/mesh"
	"github.com/2x3systems/govasc/libvasc/plot"
	"github.com/2x3systems/govasc/libvasc/report"
	"github.com/2x3systems/govasc/libvasc/skeleton"
)

// Orchestrator runs pipelines with fixed options. Run may be called from several goroutines
// at once; each call touches only its own Morphology.
type Orchestrator struct {
	ctx   *Context
	opts  Opts
	RunID string

	mesher      govasc.Mesher
	writers     []govasc.MorphologyWriter
	meshWriters []govasc.MeshWriter

	namesMu sync.Mutex
	names   map[string]string // input path -> artifact base name
	taken   map[string]bool   // artifact base names in use
}

// New resolves every algorithm and format named by opts up front.
func New(ctx *Context, opts Opts) (*Orchestrator, error) {
	if ctx == nil {
		ctx = NewContext(nil)
	}
	o := &Orchestrator{
		ctx:   ctx,
		opts:  opts,
		RunID: uuid.New().String(),
		names: make(map[string]string),
		taken: make(map[string]bool),
	}
	if opts.OutDir == "" {
		o.opts.OutDir = "."
	}
	if opts.Format != "" {
		if _, err := ctx.Formats.Reader(opts.Format); err != nil {
			return nil, err
		}
	}
	for _, tag := range opts.ExportFormats {
		w, err := ctx.Formats.Writer(tag)
		if err != nil {
			return nil, err
		}
		o.writers = append(o.writers, w)
	}
	if opts.Reconstruct {
		var err error
		if o.mesher, err = NewMesher(opts.Algorithm, opts.Sweep, opts.MetaBall); err != nil {
			return nil, err
		}
		for _, tag := range opts.MeshFormats {
			w, err := mesh.WriterFor(tag)
			if err != nil {
				return nil, err
			}
			o.meshWriters = append(o.meshWriters, w)
		}
	}
	return o, nil
}

// Context returns the Context o reports to.
func (o *Orchestrator) Context() *Context {
	return o.ctx
}

// BaseName is the artifact base name for an input path.
func BaseName(pathname string) string {
	base := filepath.Base(pathname)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Reserve assigns artifact base names to pathnames in the order given. Inputs whose base names
// clash keep their extension, so a.swc and a.vmv export as "a" and "a_vmv".
func (o *Orchestrator) Reserve(pathnames ...string) {
	for _, pathname := range pathnames {
		o.nameFor(pathname)
	}
}

// nameFor returns the artifact base name of pathname, claiming one on first use.
func (o *Orchestrator) nameFor(pathname string) string {
	key := catalogKey(pathname)
	o.namesMu.Lock()
	defer o.namesMu.Unlock()

	if name, ok := o.names[key]; ok {
		return name
	}
	name := BaseName(pathname)
	if o.taken[name] {
		if ext := strings.TrimPrefix(filepath.Ext(pathname), "."); ext != "" {
			name += "_" + ext
		}
		for stem, n := name, 2; o.taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", stem, n)
		}
	}
	o.names[key] = name
	o.taken[name] = true
	return name
}

// stage runs fn inside a span once ctx has been checked for cancellation.
func (o *Orchestrator) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := o.ctx.Tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	o.ctx.metrics.stageSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name+" failed")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}

// Run processes one input. Cancellation is honored between stages; a cancelled or failed
// pipeline commits no artifacts.
func (o *Orchestrator) Run(ctx context.Context, pathname string) (res *Result, err error) {
	ctx, span := o.ctx.Tracer.Start(ctx, "pipeline.Run",
		trace.WithAttributes(
			attribute.String("input", pathname),
			attribute.String("run_id", o.RunID),
		),
	)
	defer span.End()

	start := time.Now()
	res = &Result{
		Input: pathname,
		Name:  o.nameFor(pathname),
	}
	log := o.ctx.Log
	defer func() {
		res.Duration = time.Since(start)
		result := ResultOK
		switch {
		case err != nil:
			result = ResultFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, "pipeline failed")
		case res.Skipped:
			result = ResultSkipped
		}
		o.ctx.metrics.inputs.WithLabelValues(result).Inc()
	}()

	var hash []byte
	if cat := o.ctx.Catalog; cat != nil {
		if hash, err = catalog.ContentHash(pathname); err != nil {
			return res, govasc.NewReaderError(govasc.ReaderIO, pathname, 0, err)
		}
		if o.opts.SkipUnchanged {
			if rec, lerr := cat.Lookup(catalogKey(pathname)); lerr == nil && bytes.Equal(rec.ContentHash, hash) {
				res.Skipped = true
				res.RecordID = rec.ID
				if log.V(1) {
					log.Infof("%s: unchanged since %s, skipping", pathname, rec.ID)
				}
				return res, nil
			}
		}
	}

	var G *govasc.RawGraph
	err = o.stage(ctx, StageRead, func(context.Context) (err error) {
		G, err = o.ctx.Formats.Load(pathname, o.opts.Format)
		return err
	})
	if err != nil {
		return res, err
	}
	res.Format = G.Format

	var M *govasc.Morphology
	err = o.stage(ctx, StageBuild, func(context.Context) (err error) {
		M, err = skeleton.Build(G, o.opts.Build)
		return err
	})
	if err != nil {
		return res, err
	}
	M.Name = res.Name
	o.logDiagnostics(pathname, M.Diagnostics)

	err = o.stage(ctx, StageTransform, func(context.Context) (err error) {
		M, err = o.transform(M)
		return err
	})
	if err != nil {
		return res, err
	}
	res.Morphology = M

	if o.opts.Analyze {
		err = o.stage(ctx, StageAnalyze, func(context.Context) error {
			res.Report = analysis.Analyze(M)
			return nil
		})
		if err != nil {
			return res, err
		}
	}

	if o.mesher != nil {
		err = o.stage(ctx, StageMesh, func(context.Context) (err error) {
			res.Meshes, err = o.mesher.Mesh(M)
			return err
		})
		if err != nil {
			return res, err
		}
		faces := 0
		for _, m := range res.Meshes {
			faces += m.NumFaces()
		}
		o.ctx.metrics.meshFaces.Observe(float64(faces))
	}

	err = o.stage(ctx, StageExport, func(ctx context.Context) error {
		return o.export(ctx, res)
	})
	if err != nil {
		return res, err
	}

	if log.V(1) {
		log.Infof("%s: %d samples, %d sections, %d artifacts", pathname, len(M.Samples), len(M.Sections), len(res.Artifacts))
	}
	o.record(res, hash)
	return res, nil
}

func (o *Orchestrator) logDiagnostics(pathname string, diag govasc.Diagnostics) {
	log := o.ctx.Log
	if diag.NumZeroRadius > 0 {
		log.Warningf("%s: %d samples have zero radius", pathname, diag.NumZeroRadius)
	}
	if diag.NumDegenerateSections > 0 {
		log.Warningf("%s: %d degenerate sections", pathname, diag.NumDegenerateSections)
	}
	if diag.NumShortSections > 0 && log.V(1) {
		log.Infof("%s: %d short sections", pathname, diag.NumShortSections)
	}
}

func (o *Orchestrator) transform(M *govasc.Morphology) (*govasc.Morphology, error) {
	var err error
	if s := o.opts.Scale; s != 0 && s != 1 {
		if M, err = skeleton.Scale(M, s, o.opts.Build); err != nil {
			return nil, err
		}
	}
	for _, axis := range o.opts.FlipAxes {
		if M, err = skeleton.FlipAxis(M, axis, o.opts.Build); err != nil {
			return nil, err
		}
	}
	if o.opts.ApplyFrame {
		if M, err = skeleton.ApplyFrame(M, o.opts.Frame, o.opts.Build); err != nil {
			return nil, err
		}
	}
	return M, nil
}

// export writes every artifact into a staging directory and commits them together.
func (o *Orchestrator) export(ctx context.Context, res *Result) error {
	st, err := newStaging(o.opts.OutDir)
	if err != nil {
		return err
	}
	defer st.Discard()

	base := res.Name
	for _, w := range o.writers {
		if err = w.WriteFile(st.Path(base+w.Ext()), res.Morphology); err != nil {
			return err
		}
	}

	if R := res.Report; R != nil {
		tables, err := report.WriteCSV(st.Dir(), base, R)
		for _, p := range tables {
			st.Adopt(p)
		}
		if err != nil {
			return err
		}
		if err = report.WriteSummaryYAML(st.Path(base+"_summary.yaml"), R); err != nil {
			return err
		}
		if o.opts.Plots {
			if err = o.writePlots(st, base, R); err != nil {
				return err
			}
		}
	}

	if len(res.Meshes) > 0 {
		name := base + "_" + o.mesher.Algorithm()
		for _, w := range o.meshWriters {
			pathname := st.Path(name + w.Ext())
			switch {
			case w.Format() == mesh.FormatScene:
				err = mesh.WriteScene(pathname, base, res.Meshes)
			case len(res.Meshes) == 1:
				err = w.WriteFile(pathname, res.Meshes[0])
			default:
				err = w.WriteFile(pathname, mesh.Merge(name, res.Meshes))
			}
			if err != nil {
				return err
			}
		}
	}

	if err = ctx.Err(); err != nil {
		return err
	}
	res.Artifacts, err = st.Commit()
	o.ctx.metrics.artifacts.Add(float64(len(res.Artifacts)))
	return err
}

func (o *Orchestrator) writePlots(st *staging, base string, R *analysis.Report) error {
	for _, d := range R.Distributions {
		popts := o.opts.Plot
		popts.Title = base + " " + d.Name
		img, err := plot.Histogram(d.Values, popts)
		if errors.Is(err, plot.ErrNoData) {
			continue
		}
		if err != nil {
			return err
		}
		if err = plot.WritePNG(st.Path(base+"_"+d.Name+".png"), img); err != nil {
			return err
		}
	}
	return nil
}

func catalogKey(pathname string) string {
	if abs, err := filepath.Abs(pathname); err == nil {
		return abs
	}
	return pathname
}

// record notes a completed pipeline in the catalog. A failure here does not fail the pipeline.
func (o *Orchestrator) record(res *Result, hash []byte) {
	cat := o.ctx.Catalog
	if cat == nil {
		return
	}
	M := res.Morphology
	rec := &catalog.MorphologyRecord{
		Path:        catalogKey(res.Input),
		ContentHash: hash,
		Format:      res.Format,
		RunID:       o.RunID,
		ProcessedAt: time.Now().UnixNano(),
		NumSamples:  int64(len(M.Samples)),
		NumSections: int64(len(M.Sections)),
		Artifacts:   res.Artifacts,
	}
	if R := res.Report; R != nil {
		rec.TotalLength, rec.TotalVolume = R.Totals.Length, R.Totals.Volume
	} else {
		rec.TotalLength, rec.TotalVolume = analysis.TotalLength(M), analysis.TotalVolume(M)
	}
	if err := cat.Put(rec); err != nil {
		o.ctx.Log.Warningf("%s: catalog: %v", res.Input, err)
		return
	}
	res.RecordID = rec.ID
}

// Accepts returns true if some reader (or the configured one) takes pathname.
func (o *Orchestrator) Accepts(pathname string) bool {
	if o.opts.Format != "" {
		r, err := o.ctx.Formats.Reader(o.opts.Format)
		return err == nil && r.Probe(pathname)
	}
	_, err := o.ctx.Formats.Sniff(pathname)
	return err == nil
}

// Inputs lists the files of dir a pipeline would accept, in name order, plus those it would not.
func (o *Orchestrator) Inputs(dir string) (accepted, unknown []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, ent := range entries {
		if ent.IsDir() || strings.HasPrefix(ent.Name(), ".") {
			continue
		}
		pathname := filepath.Join(dir, ent.Name())
		if o.Accepts(pathname) {
			accepted = append(accepted, pathname)
		} else {
			unknown = append(unknown, pathname)
		}
	}
	return accepted, unknown, nil
}

// RunDir runs a pipeline for every accepted file in dir, one after another. A failing input
// is recorded and the batch moves on; only an unreadable dir or cancellation ends it early.
func (o *Orchestrator) RunDir(ctx context.Context, dir string) (*Batch, error) {
	B := &Batch{RunID: o.RunID}
	inputs, unknown, err := o.Inputs(dir)
	if err != nil {
		return B, err
	}
	log := o.ctx.Log
	B.Unknown = unknown
	for _, pathname := range unknown {
		o.ctx.metrics.inputs.WithLabelValues(ResultUnknownFormat).Inc()
		if log.V(1) {
			log.Infof("%s: no reader accepts this file, skipping", pathname)
		}
	}

	o.Reserve(inputs...)
	for _, pathname := range inputs {
		if err = ctx.Err(); err != nil {
			return B, err
		}
		res, err := o.Run(ctx, pathname)
		B.Results = append(B.Results, res)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return B, ctxErr
			}
			log.Errorf("%s: %v", pathname, err)
			B.Failures = append(B.Failures, Failure{Input: pathname, Err: err})
		}
	}
	return B, nil
}
