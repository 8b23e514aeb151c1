// Package plot renders analysis distributions as PNG histograms.
package plot

import (
	"bufio"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/formats/textio"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

var ErrNoData = errors.New("no finite values to plot")

// Opts configures Histogram.
type Opts struct {
	Width, Height int
	Bins          int
	ColorMap      string // bar colors, low bins to high bins
	Title         string
}

var DefaultOpts = Opts{
	Width:    640,
	Height:   400,
	Bins:     20,
	ColorMap: "viridis",
}

const (
	marginLeft   = 48
	marginRight  = 12
	marginTop    = 24
	marginBottom = 24
)

var (
	background = color.RGBA{255, 255, 255, 255}
	ink        = color.RGBA{32, 32, 32, 255}
)

// Bins holds Counts[i] values falling in [Edges[i], Edges[i+1]).
type Bins struct {
	Edges  []float64
	Counts []float64
}

// Bin sorts the finite entries of values into n equal-width bins spanning their range.
func Bin(values []float64, n int) (Bins, error) {
	if n < 1 {
		return Bins{}, errors.Wrapf(govasc.ErrBadOpts, "%d bins", n)
	}
	x := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			x = append(x, v)
		}
	}
	if len(x) == 0 {
		return Bins{}, ErrNoData
	}
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := floats.Span(make([]float64, n+1), lo, hi)
	// The top edge is exclusive.
	edges[n] = math.Nextafter(hi, math.Inf(1))
	return Bins{
		Edges:  edges,
		Counts: stat.Histogram(nil, edges, x, nil),
	}, nil
}

// PlotArea returns the rectangle bars are drawn in.
func PlotArea(opts Opts) image.Rectangle {
	return image.Rect(marginLeft, marginTop, opts.Width-marginRight, opts.Height-marginBottom)
}

// BarRect returns the extent of bar i of n whose count is the given fraction of the tallest.
func BarRect(opts Opts, i, n int, frac float64) image.Rectangle {
	area := PlotArea(opts)
	w := float64(area.Dx()) / float64(n)
	x0 := area.Min.X + int(math.Round(float64(i)*w))
	x1 := area.Min.X + int(math.Round(float64(i+1)*w))
	if x1-x0 > 2 {
		x1-- // gap between bars
	}
	top := area.Max.Y - int(math.Round(frac*float64(area.Dy())))
	return image.Rect(x0, top, x1, area.Max.Y)
}

// Histogram renders values as a histogram image.
func Histogram(values []float64, opts Opts) (*image.RGBA, error) {
	if opts.Width <= marginLeft+marginRight || opts.Height <= marginTop+marginBottom {
		return nil, errors.Wrapf(govasc.ErrBadOpts, "image size %dx%d", opts.Width, opts.Height)
	}
	cm, ok := vmath.ColorMapByName(opts.ColorMap)
	if !ok {
		return nil, errors.Wrapf(govasc.ErrBadOpts, "unknown color map %q", opts.ColorMap)
	}
	bins, err := Bin(values, opts.Bins)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	palette := cm.Palette(opts.Bins)
	tallest := floats.Max(bins.Counts)
	for i, c := range bins.Counts {
		if c == 0 {
			continue
		}
		fillRect(img, BarRect(opts, i, opts.Bins, c/tallest), palette[i])
	}

	area := PlotArea(opts)
	fillRect(img, image.Rect(area.Min.X-1, area.Min.Y, area.Min.X, area.Max.Y+1), ink)
	fillRect(img, image.Rect(area.Min.X-1, area.Max.Y, area.Max.X, area.Max.Y+1), ink)

	face := basicfont.Face7x13
	label := func(s string, x, y int) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(ink),
			Face: face,
			Dot:  fixed.P(x, y),
		}
		d.DrawString(s)
	}
	if opts.Title != "" {
		label(opts.Title, area.Min.X, marginTop-8)
	}
	label(textio.FormatFloat(tallest), 4, area.Min.Y+face.Ascent)
	label("0", marginLeft-14, area.Max.Y)
	lo, hi := textio.FormatFloat(bins.Edges[0]), textio.FormatFloat(bins.Edges[len(bins.Edges)-1])
	label(lo, area.Min.X, opts.Height-6)
	label(hi, area.Max.X-font.MeasureString(face, hi).Round(), opts.Height-6)
	return img, nil
}

// fillRect rasterizes r as a filled path.
func fillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	w, h := float32(r.Dx()), float32(r.Dy())
	z.MoveTo(0, 0)
	z.LineTo(w, 0)
	z.LineTo(w, h)
	z.LineTo(0, h)
	z.ClosePath()
	z.Draw(dst, r, image.NewUniform(c), image.Point{})
}

// WritePNG encodes img to pathname.
func WritePNG(pathname string, img image.Image) error {
	return textio.WriteFile(pathname, func(out *bufio.Writer) error {
		return png.Encode(out, img)
	})
}
