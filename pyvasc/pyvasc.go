// Package pyvasc registers the "vasc" gpython module, exposing morphology loading, analysis,
// meshing and batch runs to scripts.
package pyvasc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-python/gpython/py"
	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/analysis"
	"github.com/2x3systems/govasc/libvasc/catalog"
	"github.com/2x3systems/govasc/libvasc/formats"
	"github.com/2x3systems/govasc/libvasc/mesh"
	"github.com/2x3systems/govasc/libvasc/pipeline"
	"github.com/2x3systems/govasc/libvasc/skeleton"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pyMorphologyType = py.NewType("Morphology", "a validated vascular morphology")
	pyMeshType       = py.NewType("Mesh", "an indexed triangle mesh")
	pyCatalogType    = py.NewType("Catalog", "catalog of processed morphologies")
	pyWorkspaceType  = py.NewType("Workspace", "collects the session's pipeline context and catalogs")
)

const (
	READ_ONLY = 0x01

	kWorkspaceAttr = "_Workspace"
)

type pyMorphology struct {
	*govasc.Morphology
}

func (M pyMorphology) Type() *py.Type {
	return pyMorphologyType
}

func (M pyMorphology) M__str__() (py.Object, error) {
	str := fmt.Sprintf("<Morphology %s: %d samples, %d sections>", M.Name, len(M.Samples), len(M.Sections))
	return py.String(str), nil
}

func (M pyMorphology) M__repr__() (py.Object, error) {
	return M.M__str__()
}

// raise converts a Go error into the closest Python exception.
func raise(err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return py.ExceptionNewf(py.FileNotFoundError, "%v", err)
	case errors.Is(err, os.ErrPermission):
		return py.ExceptionNewf(py.PermissionError, "%v", err)
	}
	switch pipeline.ExitCode(err) {
	case pipeline.ExitIO:
		return py.ExceptionNewf(py.OSError, "%v", err)
	}
	return py.ExceptionNewf(py.ValueError, "%v", err)
}

// Arg 1 (str): pathname
// Arg 2 (str, optional): format tag; sniffed when omitted
func py_Load(module py.Object, args py.Tuple) (py.Object, error) {
	var pathname, format string
	if err := py.LoadTuple(args, []interface{}{&pathname, &format}); err != nil {
		return nil, err
	}
	ws := getWorkspace(module)
	G, err := ws.Ctx.Formats.Load(pathname, format)
	if err != nil {
		return nil, raise(err)
	}
	M, err := skeleton.Build(G, skeleton.DefaultBuildOpts)
	if err != nil {
		return nil, raise(err)
	}
	if M.Name == "" {
		M.Name = pipeline.BaseName(pathname)
	}
	return pyMorphology{M}, nil
}

func py_Formats(module py.Object, args py.Tuple) (py.Object, error) {
	ws := getWorkspace(module)
	return stringTuple(ws.Ctx.Formats.ReaderTags()), nil
}

func py_Morphology_Name(self py.Object, args py.Tuple) (py.Object, error) {
	return py.String(self.(pyMorphology).Name), nil
}

func py_Morphology_NumSamples(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(len(self.(pyMorphology).Samples)), nil
}

func py_Morphology_NumSections(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(len(self.(pyMorphology).Sections)), nil
}

func py_Morphology_NumSegments(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pyMorphology).NumSegments()), nil
}

func py_Morphology_Totals(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(pyMorphology)
	R := analysis.Analyze(M.Morphology)
	T := R.Totals
	return py.StringDict{
		"samples":      py.Int(T.NumSamples),
		"sections":     py.Int(T.NumSections),
		"segments":     py.Int(T.NumSegments),
		"length":       py.Float(T.Length),
		"surface_area": py.Float(T.SurfaceArea),
		"volume":       py.Float(T.Volume),
		"zero_radius":  py.Int(T.NumZeroRadius),
		"degenerate":   py.Int(T.NumDegenerate),
		"short":        py.Int(T.NumShort),
	}, nil
}

func py_Morphology_Scale(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(pyMorphology)
	var factor float64
	if err := py.LoadTuple(args, []interface{}{&factor}); err != nil {
		return nil, err
	}
	scaled, err := skeleton.Scale(M.Morphology, factor, skeleton.DefaultBuildOpts)
	if err != nil {
		return nil, raise(err)
	}
	return pyMorphology{scaled}, nil
}

func py_Morphology_Center(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(pyMorphology)
	return pyMorphology{skeleton.Center(M.Morphology)}, nil
}

// Arg 1 (str, optional): algorithm name, "polyline" when omitted
func py_Morphology_Mesh(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(pyMorphology)
	algorithm := mesh.AlgoPolyline
	if err := py.LoadTuple(args, []interface{}{&algorithm}); err != nil {
		return nil, err
	}
	opts := pipeline.DefaultOpts
	mesher, err := pipeline.NewMesher(algorithm, opts.Sweep, opts.MetaBall)
	if err != nil {
		return nil, raise(err)
	}
	meshes, err := mesher.Mesh(M.Morphology)
	if err != nil {
		return nil, raise(err)
	}
	out := make(py.Tuple, len(meshes))
	for i, m := range meshes {
		out[i] = pyMesh{m}
	}
	return out, nil
}

// Arg 1 (str): pathname
// Arg 2 (str, optional): format tag; chosen by extension when omitted
func py_Morphology_Write(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(pyMorphology)
	var pathname, format string
	if err := py.LoadTuple(args, []interface{}{&pathname, &format}); err != nil {
		return nil, err
	}
	reg := formats.Default()
	if format == "" {
		ext := filepath.Ext(pathname)
		for _, tag := range reg.WriterTags() {
			if w, _ := reg.Writer(tag); w != nil && strings.EqualFold(w.Ext(), ext) {
				format = tag
				break
			}
		}
	}
	w, err := reg.Writer(format)
	if err != nil {
		return nil, raise(err)
	}
	if err = w.WriteFile(pathname, M.Morphology); err != nil {
		return nil, raise(err)
	}
	return py.None, nil
}

type pyMesh struct {
	*govasc.Mesh
}

func (m pyMesh) Type() *py.Type {
	return pyMeshType
}

func py_Mesh_Name(self py.Object, args py.Tuple) (py.Object, error) {
	return py.String(self.(pyMesh).Name), nil
}

func py_Mesh_NumVerts(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pyMesh).NumVertices()), nil
}

func py_Mesh_NumFaces(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pyMesh).NumFaces()), nil
}

func py_Mesh_Stats(self py.Object, args py.Tuple) (py.Object, error) {
	st := self.(pyMesh).Stats()
	return py.StringDict{
		"vertices":       py.Int(st.Vertices),
		"faces":          py.Int(st.Faces),
		"boundary_edges": py.Int(st.BoundaryEdges),
		"components":     py.Int(st.Components),
		"watertight":     py.NewBool(st.Watertight),
	}, nil
}

func py_Mesh_Write(self py.Object, args py.Tuple) (py.Object, error) {
	m := self.(pyMesh)
	var pathname, format string
	if err := py.LoadTuple(args, []interface{}{&pathname, &format}); err != nil {
		return nil, err
	}
	var w govasc.MeshWriter
	if format == "" {
		ext := filepath.Ext(pathname)
		for _, wi := range mesh.Writers() {
			if strings.EqualFold(wi.Ext(), ext) {
				w = wi
				break
			}
		}
		if w == nil {
			return nil, py.ExceptionNewf(py.ValueError, "no mesh writer for extension %q", ext)
		}
	} else {
		var err error
		if w, err = mesh.WriterFor(format); err != nil {
			return nil, raise(err)
		}
	}
	if err := w.WriteFile(pathname, m.Mesh); err != nil {
		return nil, raise(err)
	}
	return py.None, nil
}

// Workspace holds the resources a script session shares and releases them when the
// interpreter context closes.
type Workspace struct {
	Ctx      *pipeline.Context
	catalogs []*catalog.Catalog
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func (ws *Workspace) Close() {
	for _, cat := range ws.catalogs {
		cat.Close()
	}
	ws.catalogs = nil
}

func getWorkspace(module py.Object) *Workspace {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		ws := &Workspace{
			Ctx: pipeline.NewContext(pipeline.KlogLogger{}),
		}
		wsObj = ws
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj.(*Workspace)
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	return getWorkspace(module), nil
}

// Arg 1 (str): input file or directory
// Arg 2 (str): output directory
// Arg 3 (str, optional): mesh algorithm
// Returns the process exit code the batch would produce.
func py_Workspace_Run(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)
	var input, outDir string
	algorithm := mesh.AlgoPolyline
	if err := py.LoadTuple(args, []interface{}{&input, &outDir, &algorithm}); err != nil {
		return nil, err
	}

	opts := pipeline.DefaultOpts
	opts.OutDir = outDir
	opts.Algorithm = algorithm
	o, err := pipeline.New(ws.Ctx, opts)
	if err != nil {
		return nil, raise(err)
	}

	fi, err := os.Stat(input)
	if err != nil {
		return nil, raise(err)
	}
	if !fi.IsDir() {
		_, err = o.Run(context.Background(), input)
		return py.Int(pipeline.ExitCode(err)), nil
	}
	B, err := o.RunDir(context.Background(), input)
	if err != nil {
		return py.Int(pipeline.ExitCode(err)), nil
	}
	return py.Int(B.ExitCode()), nil
}

// Arg 1 (str): database directory; empty for in-memory
// Arg 2 (int, optional): flags (READ_ONLY)
func py_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)

	var pathname string
	var flags int32
	if err := py.LoadTuple(args, []interface{}{&pathname, &flags}); err != nil {
		return nil, err
	}

	opts := catalog.DefaultOpts
	opts.DbPathName = pathname
	opts.ReadOnly = (flags & READ_ONLY) != 0

	cat, err := catalog.Open(opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	ws.catalogs = append(ws.catalogs, cat)

	// pipelines run from this workspace record into the most recently opened catalog
	if !opts.ReadOnly {
		ws.Ctx.Catalog = cat
	}
	return pyCatalog{cat}, nil
}

type pyCatalog struct {
	*catalog.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

func py_Catalog_Len(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	return py.Int(cat.Len()), nil
}

func py_Catalog_Lookup(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var pathname string
	if err := py.LoadTuple(args, []interface{}{&pathname}); err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(pathname); err == nil {
		pathname = abs
	}
	rec, err := cat.Lookup(pathname)
	if errors.Is(err, catalog.ErrNotFound) {
		return py.None, nil
	}
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.StringDict{
		"id":        py.String(rec.ID),
		"path":      py.String(rec.Path),
		"format":    py.String(rec.Format),
		"run_id":    py.String(rec.RunID),
		"samples":   py.Int(rec.NumSamples),
		"sections":  py.Int(rec.NumSections),
		"length":    py.Float(rec.TotalLength),
		"volume":    py.Float(rec.TotalVolume),
		"artifacts": stringTuple(rec.Artifacts),
	}, nil
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.Catalog != nil {
		cat.Close()
	}
	return py.None, nil
}

func stringTuple(strs []string) py.Tuple {
	tup := make(py.Tuple, len(strs))
	for i, s := range strs {
		tup[i] = py.String(s)
	}
	return tup
}

func init() {

	/////////////////////////////////
	// Morphology
	{
		pyMorphologyType.Dict["Name"] = py.MustNewMethod("Name", py_Morphology_Name, 0, "")
		pyMorphologyType.Dict["NumSamples"] = py.MustNewMethod("NumSamples", py_Morphology_NumSamples, 0, "")
		pyMorphologyType.Dict["NumSections"] = py.MustNewMethod("NumSections", py_Morphology_NumSections, 0, "")
		pyMorphologyType.Dict["NumSegments"] = py.MustNewMethod("NumSegments", py_Morphology_NumSegments, 0, "")
		pyMorphologyType.Dict["Totals"] = py.MustNewMethod("Totals", py_Morphology_Totals, 0, "returns the morphology-wide sums as a dict")
		pyMorphologyType.Dict["Scale"] = py.MustNewMethod("Scale", py_Morphology_Scale, 0, "returns a copy with every coordinate and radius scaled")
		pyMorphologyType.Dict["Center"] = py.MustNewMethod("Center", py_Morphology_Center, 0, "returns a copy centered on the origin")
		pyMorphologyType.Dict["Mesh"] = py.MustNewMethod("Mesh", py_Morphology_Mesh, 0, "reconstructs a tuple of Mesh objects")
		pyMorphologyType.Dict["Write"] = py.MustNewMethod("Write", py_Morphology_Write, 0, "")
	}

	/////////////////////////////////
	// Mesh
	{
		pyMeshType.Dict["Name"] = py.MustNewMethod("Name", py_Mesh_Name, 0, "")
		pyMeshType.Dict["NumVerts"] = py.MustNewMethod("NumVerts", py_Mesh_NumVerts, 0, "")
		pyMeshType.Dict["NumFaces"] = py.MustNewMethod("NumFaces", py_Mesh_NumFaces, 0, "")
		pyMeshType.Dict["Stats"] = py.MustNewMethod("Stats", py_Mesh_Stats, 0, "")
		pyMeshType.Dict["Write"] = py.MustNewMethod("Write", py_Mesh_Write, 0, "")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["Len"] = py.MustNewMethod("Len", py_Catalog_Len, 0, "")
		pyCatalogType.Dict["Lookup"] = py.MustNewMethod("Lookup", py_Catalog_Lookup, 0, "returns the record for a pathname, or None")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["Run"] = py.MustNewMethod("Run", py_Workspace_Run, 0, "runs the pipeline over a file or directory and returns the exit code")
		pyWorkspaceType.Dict["OpenCatalog"] = py.MustNewMethod("OpenCatalog", py_Workspace_OpenCatalog, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("Load", py_Load, 0, "reads and validates a morphology file"),
			py.MustNewMethod("Formats", py_Formats, 0, "lists the readable format tags"),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
			"READ_ONLY":   py.Int(READ_ONLY),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "vasc",
				Doc:  "vascular morphology gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}
