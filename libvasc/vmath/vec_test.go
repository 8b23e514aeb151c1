package vmath_test

import (
	"image/color"
	"math"
	"testing"

	"github.com/2x3systems/govasc/libvasc/vmath"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		v      r3.Vec
		expect r3.Vec
	}{
		{"zero", vmath.V3(0, 0, 0), vmath.V3(0, 0, 0)},
		{"x", vmath.V3(5, 0, 0), vmath.V3(1, 0, 0)},
		{"345", vmath.V3(3, 4, 0), vmath.V3(0.6, 0.8, 0)},
		{"negative", vmath.V3(0, 0, -2), vmath.V3(0, 0, -1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := vmath.Normalize(tt.v)
			if !vmath.Approx(got, tt.expect, 1e-12) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.v, got, tt.expect)
			}
		})
	}
}

func TestAbsOrder(t *testing.T) {
	tests := []struct {
		name   string
		v      r3.Vec
		expect [3]vmath.Axis
	}{
		{"xyz", vmath.V3(3, 2, 1), [3]vmath.Axis{vmath.AxisX, vmath.AxisY, vmath.AxisZ}},
		{"zyx", vmath.V3(0.1, -2, -7), [3]vmath.Axis{vmath.AxisZ, vmath.AxisY, vmath.AxisX}},
		{"ties keep order", vmath.V3(1, 1, 1), [3]vmath.Axis{vmath.AxisX, vmath.AxisY, vmath.AxisZ}},
		{"y first", vmath.V3(-1, 4, 2), [3]vmath.Axis{vmath.AxisY, vmath.AxisZ, vmath.AxisX}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vmath.AbsOrder(tt.v); got != tt.expect {
				t.Errorf("AbsOrder(%v) = %v, want %v", tt.v, got, tt.expect)
			}
		})
	}
}

func TestDominantAxis(t *testing.T) {
	if axis, ok := vmath.DominantAxis(vmath.V3(0, -1, 0.2), vmath.Epsilon); !ok || axis != vmath.AxisY {
		t.Errorf("expected y, got %v ok=%v", axis, ok)
	}
	s := math.Sqrt(0.5)
	if _, ok := vmath.DominantAxis(vmath.V3(s, s, 0), vmath.Epsilon); ok {
		t.Error("expected a tie for the xy diagonal")
	}
	if _, ok := vmath.DominantAxis(r3.Vec{}, vmath.Epsilon); ok {
		t.Error("expected a tie for the zero vector")
	}
}

func TestPerpendicular(t *testing.T) {
	for _, v := range []r3.Vec{
		vmath.V3(1, 0, 0),
		vmath.V3(0, 0, -1),
		vmath.Normalize(vmath.V3(1, 2, 3)),
	} {
		n := vmath.Perpendicular(v)
		if math.Abs(r3.Dot(n, v)) > 1e-12 {
			t.Errorf("Perpendicular(%v) = %v is not orthogonal", v, n)
		}
		if math.Abs(r3.Norm(n)-1) > 1e-12 {
			t.Errorf("Perpendicular(%v) = %v is not unit length", v, n)
		}
	}
}

func TestBox(t *testing.T) {
	box := vmath.EmptyBox()
	for _, p := range []r3.Vec{vmath.V3(1, -2, 3), vmath.V3(-1, 2, 0), vmath.V3(0, 0, 5)} {
		box = vmath.ExpandBox(box, p)
	}
	if box.Min != vmath.V3(-1, -2, 0) || box.Max != vmath.V3(1, 2, 5) {
		t.Fatalf("unexpected box %v", box)
	}
	if c := vmath.BoxCenter(box); c != vmath.V3(0, 0, 2.5) {
		t.Errorf("unexpected center %v", c)
	}
	if !vmath.BoxContains(box, vmath.V3(1, 2, 5)) || vmath.BoxContains(box, vmath.V3(1.01, 0, 0)) {
		t.Error("BoxContains is wrong at the boundary")
	}
}

func TestColorMap(t *testing.T) {
	cm := vmath.ColorMap{Stops: []color.RGBA{{0, 0, 0, 255}, {200, 100, 50, 255}}}
	if got := cm.At(0.5); got != (color.RGBA{100, 50, 25, 255}) {
		t.Errorf("At(0.5) = %v", got)
	}
	if got := cm.At(-3); got != cm.Stops[0] {
		t.Errorf("At(-3) should clamp, got %v", got)
	}
	pal := vmath.Jet.Palette(16)
	if len(pal) != 16 || pal[0] != vmath.Jet.Stops[0] || pal[15] != vmath.Jet.Stops[len(vmath.Jet.Stops)-1] {
		t.Errorf("palette endpoints do not match stops: %v", pal)
	}
	if _, ok := vmath.ColorMapByName("VIRIDIS"); !ok {
		t.Error("expected viridis lookup to succeed")
	}
}
