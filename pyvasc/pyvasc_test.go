package pyvasc_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-python/gpython/py"
	_ "github.com/go-python/gpython/stdlib"

	_ "github.com/2x3systems/govasc/pyvasc"
)

const elbowSWC = `# elbow
1 3 0 0 0 1 -1
2 3 4 0 0 1 1
3 3 4 3 0 0.5 2
`

const script = `
import vasc

M = vasc.Load("$IN")
n = M.NumSamples()
sections = M.NumSections()
length = M.Totals()["length"]

faces = 0
for m in M.Mesh():
    faces = faces + m.NumFaces()
M.Mesh()[0].Write("$OUT/elbow.obj")
M.Scale(2.0).Write("$OUT/elbow2.swc")
doubled = vasc.Load("$OUT/elbow2.swc").Totals()["length"]

missing = False
try:
    vasc.Load("$OUT/missing.swc", "swc")
except Exception:
    missing = True

unknown = False
try:
    vasc.Load("$IN", "nope")
except Exception:
    unknown = True

ws = vasc.GetWorkspace()
cat = ws.OpenCatalog("")
code = ws.Run("$IN", "$OUT/run")
recorded = cat.Lookup("$IN")["samples"]
`

func runScript(t *testing.T, src string) py.StringDict {
	t.Helper()
	ctx := py.NewContext(py.DefaultContextOpts())
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()
	mod, err := py.RunSrc(ctx, src, "<test>", nil)
	if err != nil {
		py.TracebackDump(err)
		t.Fatal(err)
	}
	return mod.Globals
}

func TestScript(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "elbow.swc")
	if err := os.WriteFile(in, []byte(elbowSWC), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}
	src := strings.NewReplacer("$IN", filepath.ToSlash(in), "$OUT", filepath.ToSlash(out)).Replace(script)
	g := runScript(t, src)

	if g["n"] != py.Int(3) || g["sections"] != py.Int(1) {
		t.Errorf("samples %v, sections %v", g["n"], g["sections"])
	}
	if length := float64(g["length"].(py.Float)); math.Abs(length-7) > 1e-9 {
		t.Errorf("length %g", length)
	}
	if doubled := float64(g["doubled"].(py.Float)); math.Abs(doubled-14) > 1e-9 {
		t.Errorf("scaled length %g", doubled)
	}
	if faces := g["faces"].(py.Int); faces == 0 {
		t.Error("no faces")
	}
	if _, err := os.Stat(filepath.Join(out, "elbow.obj")); err != nil {
		t.Error(err)
	}
	if g["missing"] != py.True || g["unknown"] != py.True {
		t.Errorf("missing %v, unknown %v", g["missing"], g["unknown"])
	}
	if g["code"] != py.Int(0) {
		t.Errorf("exit code %v", g["code"])
	}
	if g["recorded"] != py.Int(3) {
		t.Errorf("catalog record: %v samples", g["recorded"])
	}
	if _, err := os.Stat(filepath.Join(out, "run", "elbow_polyline.ply")); err != nil {
		t.Error(err)
	}
}
