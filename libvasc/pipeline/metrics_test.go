package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	in := t.TempDir()
	good := filepath.Join(in, "a.swc")
	bad := filepath.Join(in, "b.swc")
	os.WriteFile(good, []byte("1 3 0 0 0 1 -1\n2 3 2 0 0 1 1\n"), 0o644)
	os.WriteFile(bad, []byte("1 3 0 0 0 1 -1\n1 3 2 0 0 1 1\n"), 0o644)
	os.WriteFile(filepath.Join(in, "c.dat"), []byte("?"), 0o644)

	opts := DefaultOpts
	opts.OutDir = filepath.Join(t.TempDir(), "out")
	ctx := NewContext(nil)
	o, err := New(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = o.RunDir(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	m := ctx.metrics
	for result, want := range map[string]float64{
		ResultOK:            1,
		ResultFailed:        1,
		ResultUnknownFormat: 1,
		ResultSkipped:       0,
	} {
		if got := testutil.ToFloat64(m.inputs.WithLabelValues(result)); got != want {
			t.Errorf("%s: got %g, want %g", result, got, want)
		}
	}
	if got := testutil.ToFloat64(m.artifacts); got == 0 {
		t.Error("no artifacts counted")
	}
	if n := testutil.CollectAndCount(m.stageSeconds); n != 6 {
		t.Errorf("%d stages observed", n)
	}
}
