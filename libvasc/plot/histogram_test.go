package plot_test

import (
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/plot"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

func TestBin(t *testing.T) {
	b, err := plot.Bin([]float64{2, 1, math.NaN(), 1, 1, math.Inf(1)}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Counts) != 2 || b.Counts[0] != 3 || b.Counts[1] != 1 {
		t.Fatalf("counts %v", b.Counts)
	}
	if b.Edges[0] != 1 || b.Edges[1] != 1.5 {
		t.Fatalf("edges %v", b.Edges)
	}

	b, err = plot.Bin([]float64{4, 4}, 3)
	if err != nil || b.Counts[0]+b.Counts[1]+b.Counts[2] != 2 {
		t.Fatalf("constant input: %v, %v", b, err)
	}

	if _, err = plot.Bin([]float64{math.NaN()}, 4); !errors.Is(err, plot.ErrNoData) {
		t.Fatalf("got %v", err)
	}
	if _, err = plot.Bin([]float64{1}, 0); !errors.Is(err, govasc.ErrBadOpts) {
		t.Fatalf("got %v", err)
	}
}

func TestHistogram(t *testing.T) {
	opts := plot.DefaultOpts
	opts.Bins = 2
	opts.Title = "segment_length"
	img, err := plot.Histogram([]float64{1, 1, 1, 2}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != opts.Width || img.Bounds().Dy() != opts.Height {
		t.Fatalf("size %v", img.Bounds())
	}

	cm, _ := vmath.ColorMapByName(opts.ColorMap)
	palette := cm.Palette(2)

	tall := plot.BarRect(opts, 0, 2, 1)
	mid := image.Pt((tall.Min.X+tall.Max.X)/2, (tall.Min.Y+tall.Max.Y)/2)
	if got := img.RGBAAt(mid.X, mid.Y); got != palette[0] {
		t.Fatalf("tall bar pixel %v, want %v", got, palette[0])
	}

	// The short bar is a third as high, so its upper half stays background.
	short := plot.BarRect(opts, 1, 2, 1.0/3)
	x := (short.Min.X + short.Max.X) / 2
	if got := img.RGBAAt(x, short.Max.Y-2); got != palette[1] {
		t.Fatalf("short bar pixel %v, want %v", got, palette[1])
	}
	if got := img.RGBAAt(x, tall.Min.Y+4); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Fatalf("above short bar %v", got)
	}

	pathname := filepath.Join(t.TempDir(), "hist.png")
	if err = plot.WritePNG(pathname, img); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(pathname)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil || cfg.Width != opts.Width || cfg.Height != opts.Height {
		t.Fatalf("decoded %+v, %v", cfg, err)
	}

	opts.ColorMap = "nope"
	if _, err = plot.Histogram([]float64{1}, opts); !errors.Is(err, govasc.ErrBadOpts) {
		t.Fatalf("got %v", err)
	}
}
