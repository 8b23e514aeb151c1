package vmath

import (
	"image/color"
	"math"
	"strings"
)

// ColorMap is a piecewise-linear ramp through evenly spaced color stops.
type ColorMap struct {
	Name  string
	Stops []color.RGBA
}

// DefaultResolution is the number of discrete colors a ColorMap is sampled into by default.
const DefaultResolution = 16

var (
	Viridis = ColorMap{
		Name: "viridis",
		Stops: []color.RGBA{
			{68, 1, 84, 255},
			{59, 82, 139, 255},
			{33, 145, 140, 255},
			{94, 201, 98, 255},
			{253, 231, 37, 255},
		},
	}
	Jet = ColorMap{
		Name: "jet",
		Stops: []color.RGBA{
			{0, 0, 143, 255},
			{0, 0, 255, 255},
			{0, 255, 255, 255},
			{255, 255, 0, 255},
			{255, 0, 0, 255},
			{128, 0, 0, 255},
		},
	}
	Reds = ColorMap{
		Name: "reds",
		Stops: []color.RGBA{
			{255, 245, 240, 255},
			{252, 146, 114, 255},
			{203, 24, 29, 255},
			{103, 0, 13, 255},
		},
	}
	Grayscale = ColorMap{
		Name: "gray",
		Stops: []color.RGBA{
			{0, 0, 0, 255},
			{255, 255, 255, 255},
		},
	}
)

// ColorMaps lists the built-in maps.
var ColorMaps = []ColorMap{Viridis, Jet, Reds, Grayscale}

// ColorMapByName returns the built-in map with the given name (case-insensitive).
func ColorMapByName(name string) (ColorMap, bool) {
	for _, cm := range ColorMaps {
		if strings.EqualFold(cm.Name, name) {
			return cm, true
		}
	}
	return ColorMap{}, false
}

// At returns the color at t in [0, 1]; t is clamped.
func (cm ColorMap) At(t float64) color.RGBA {
	N := len(cm.Stops)
	switch {
	case N == 0:
		return color.RGBA{A: 255}
	case N == 1 || math.IsNaN(t):
		return cm.Stops[0]
	}
	t = math.Max(0, math.Min(1, t))

	span := t * float64(N-1)
	i := int(math.Floor(span))
	if i >= N-1 {
		return cm.Stops[N-1]
	}
	return LerpColor(cm.Stops[i], cm.Stops[i+1], span-float64(i))
}

// Palette samples the map into n evenly spaced colors, first and last stops included.
func (cm ColorMap) Palette(n int) []color.RGBA {
	if n <= 0 {
		n = DefaultResolution
	}
	pal := make([]color.RGBA, n)
	for i := range pal {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		pal[i] = cm.At(t)
	}
	return pal
}

// LerpColor interpolates each channel of a toward b.
func LerpColor(a, b color.RGBA, t float64) color.RGBA {
	ch := func(x, y uint8) uint8 {
		return uint8(math.Round(LerpScalar(float64(x), float64(y), t)))
	}
	return color.RGBA{
		R: ch(a.R, b.R),
		G: ch(a.G, b.G),
		B: ch(a.B, b.B),
		A: ch(a.A, b.A),
	}
}
