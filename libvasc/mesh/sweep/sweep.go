// Package sweep builds one tube mesh per section by sweeping a circular cross-section
// along the section polyline.
package sweep

import (
	"fmt"
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/colorcode"
	"github.com/2x3systems/govasc/libvasc/mesh"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

// Style selects how the section polyline is altered before sweeping.
type Style int

const (
	Original   Style = iota
	Zigzag           // internal samples pushed sideways by radius * ZigzagFactor, alternating
	Simplified       // first and last samples only
)

var styleNames = [...]string{"original", "zigzag", "simplified"}

func (s Style) String() string { return styleNames[s] }

// ParseStyle returns the style with the given name.
func ParseStyle(name string) (Style, error) {
	for i, n := range styleNames {
		if n == name {
			return Style(i), nil
		}
	}
	return Original, errors.Wrapf(govasc.ErrBadOpts, "unknown sweep style %q", name)
}

// Opts configures the sweep mesher.
type Opts struct {
	Sides        int     // cross-section sides at tessellation 1
	Tessellation float64 // in (0, 1]; scales Sides, never below 3
	Smooth       bool    // share ring vertices and average normals; otherwise one vertex per face corner
	Caps         bool    // close both ends with triangle fans
	Style        Style
	ZigzagFactor float64
	Connection   mesh.ObjectsConnection

	ColorScheme colorcode.Scheme
	ColorEntity colorcode.Entity
	ColorMap    string // empty disables vertex colors
	Resolution  int
}

// DefaultOpts sweeps 16-sided smooth tubes with capped ends, one mesh per section.
var DefaultOpts = Opts{
	Sides:        16,
	Tessellation: 1,
	Smooth:       true,
	Caps:         true,
	Style:        Original,
	ZigzagFactor: 0.5,
	Connection:   mesh.Separate,
	ColorScheme:  colorcode.Default,
	ColorEntity:  colorcode.PerSection,
	ColorMap:     vmath.Viridis.Name,
	Resolution:   vmath.DefaultResolution,
}

// Mesher implements govasc.Mesher with the polyline sweep.
type Mesher struct {
	opts    Opts
	sides   int
	palette []color.RGBA
}

var _ govasc.Mesher = (*Mesher)(nil)

// New validates opts and returns a sweep mesher.
func New(opts Opts) (*Mesher, error) {
	if !(opts.Tessellation > 0 && opts.Tessellation <= 1) {
		return nil, errors.Wrapf(govasc.ErrBadOpts, "tessellation %g outside (0, 1]", opts.Tessellation)
	}
	if opts.Sides < 3 {
		return nil, errors.Wrapf(govasc.ErrBadOpts, "%d cross-section sides", opts.Sides)
	}
	if opts.Resolution <= 0 {
		opts.Resolution = vmath.DefaultResolution
	}

	sw := &Mesher{
		opts:  opts,
		sides: max(3, int(math.Round(float64(opts.Sides)*opts.Tessellation))),
	}
	if opts.ColorMap != "" {
		cm, ok := vmath.ColorMapByName(opts.ColorMap)
		if !ok {
			return nil, errors.Wrapf(govasc.ErrBadOpts, "unknown color map %q", opts.ColorMap)
		}
		sw.palette = cm.Palette(opts.Resolution)
	}
	return sw, nil
}

func (sw *Mesher) Algorithm() string { return mesh.AlgoPolyline }

// Sides returns the effective cross-section side count.
func (sw *Mesher) Sides() int { return sw.sides }

// Mesh sweeps every non-degenerate section of M.
func (sw *Mesher) Mesh(M *govasc.Morphology) ([]*govasc.Mesh, error) {
	if M.NumSegments() == 0 {
		return nil, &govasc.MesherError{Kind: govasc.MesherEmpty, Err: govasc.ErrEmptyMorphology}
	}

	lines := colorcode.PolyLines(M, sw.opts.ColorScheme, sw.opts.ColorEntity, sw.opts.Resolution)
	meshes := make([]*govasc.Mesh, 0, len(lines))
	for _, L := range lines {
		if len(L.Points) < 2 {
			continue
		}
		m := sw.SweepLine(L)
		m.Name = fmt.Sprintf("%s_section_%d", meshBaseName(M), L.Section)
		meshes = append(meshes, m)
	}
	return mesh.Connect(meshBaseName(M), meshes, sw.opts.Connection), nil
}

func meshBaseName(M *govasc.Morphology) string {
	if M.Name == "" {
		return "morphology"
	}
	return M.Name
}

// ring is a cross-section placed at one polyline point.
type ring struct {
	center r3.Vec
	radius float64
	u, v   r3.Vec // unit frame spanning the cross-section plane
	color  int
}

// SweepLine meshes a single polyline of at least two points.
func (sw *Mesher) SweepLine(L govasc.PolyLine) *govasc.Mesh {
	pts := sw.stylize(L.Points)
	rings := frames(pts)

	m := &govasc.Mesh{}
	if sw.opts.Smooth {
		sw.buildSmooth(m, rings)
		mesh.ComputeNormals(m)
	} else {
		sw.buildHard(m, rings)
	}
	return m
}

func (sw *Mesher) stylize(src []govasc.PolyPoint) []govasc.PolyPoint {
	switch sw.opts.Style {
	case Simplified:
		return []govasc.PolyPoint{src[0], src[len(src)-1]}
	case Zigzag:
		if len(src) < 3 {
			return src
		}
		pts := append([]govasc.PolyPoint(nil), src...)
		rings := frames(src)
		for k := 1; k+1 < len(pts); k++ {
			sign := 1.0
			if k%2 == 0 {
				sign = -1
			}
			offset := r3.Scale(sign*pts[k].Radius*sw.opts.ZigzagFactor, rings[k].u)
			pts[k].Pos = r3.Add(pts[k].Pos, offset)
		}
		return pts
	default:
		return src
	}
}

// frames assigns each point a tangent toward the next point (the last point reuses the
// previous tangent) and a cross-section frame carried along by parallel transport.
func frames(pts []govasc.PolyPoint) []ring {
	N := len(pts)
	rings := make([]ring, N)

	tangent := r3.Vec{Z: 1}
	for k := 0; k+1 < N; k++ {
		if d := r3.Sub(pts[k+1].Pos, pts[k].Pos); vmath.Length(d) > 0 {
			tangent = vmath.Normalize(d)
			break
		}
	}

	var u r3.Vec
	for k := 0; k < N; k++ {
		if k+1 < N {
			if d := r3.Sub(pts[k+1].Pos, pts[k].Pos); vmath.Length(d) > 0 {
				tangent = vmath.Normalize(d)
			}
		}
		if k == 0 {
			u = vmath.Perpendicular(tangent)
		} else {
			u = vmath.Normalize(r3.Sub(u, r3.Scale(r3.Dot(u, tangent), tangent)))
			if vmath.Length(u) == 0 {
				u = vmath.Perpendicular(tangent)
			}
		}
		rings[k] = ring{
			center: pts[k].Pos,
			radius: pts[k].Radius,
			u:      u,
			v:      r3.Cross(tangent, u),
			color:  pts[k].Color,
		}
	}
	return rings
}

func (sw *Mesher) ringPoint(R *ring, j int) r3.Vec {
	theta := 2 * math.Pi * float64(j%sw.sides) / float64(sw.sides)
	radial := r3.Add(r3.Scale(math.Cos(theta), R.u), r3.Scale(math.Sin(theta), R.v))
	return r3.Add(R.center, r3.Scale(R.radius, radial))
}

func (sw *Mesher) addColored(m *govasc.Mesh, p r3.Vec, ci int) uint32 {
	idx := m.AddVertex(p)
	if sw.palette != nil {
		m.Colors = append(m.Colors, sw.palette[max(0, min(ci, len(sw.palette)-1))])
	}
	return idx
}

// buildSmooth emits K vertices per ring shared by the adjoining bands and caps,
// plus one center vertex per cap.
func (sw *Mesher) buildSmooth(m *govasc.Mesh, rings []ring) {
	K := sw.sides
	base := make([]uint32, len(rings))
	for k := range rings {
		base[k] = uint32(len(m.Vertices))
		for j := 0; j < K; j++ {
			sw.addColored(m, sw.ringPoint(&rings[k], j), rings[k].color)
		}
	}
	at := func(k, j int) uint32 { return base[k] + uint32(j%K) }

	for k := 0; k+1 < len(rings); k++ {
		for j := 0; j < K; j++ {
			m.AddFace(at(k, j), at(k, j+1), at(k+1, j+1))
			m.AddFace(at(k, j), at(k+1, j+1), at(k+1, j))
		}
	}

	if sw.opts.Caps {
		first, last := 0, len(rings)-1
		c0 := sw.addColored(m, rings[first].center, rings[first].color)
		c1 := sw.addColored(m, rings[last].center, rings[last].color)
		for j := 0; j < K; j++ {
			m.AddFace(c0, at(first, j+1), at(first, j))
			m.AddFace(c1, at(last, j), at(last, j+1))
		}
	}
}

// buildHard emits three vertices per triangle so each face keeps its own normal.
func (sw *Mesher) buildHard(m *govasc.Mesh, rings []ring) {
	K := sw.sides
	tri := func(a, b, c r3.Vec, ca, cb, cc int) {
		ia := sw.addColored(m, a, ca)
		ib := sw.addColored(m, b, cb)
		ic := sw.addColored(m, c, cc)
		m.AddFace(ia, ib, ic)
		n := m.FaceNormal(len(m.Faces) - 1)
		m.Normals = append(m.Normals, n, n, n)
	}

	for k := 0; k+1 < len(rings); k++ {
		A, B := &rings[k], &rings[k+1]
		for j := 0; j < K; j++ {
			a0, a1 := sw.ringPoint(A, j), sw.ringPoint(A, j+1)
			b0, b1 := sw.ringPoint(B, j), sw.ringPoint(B, j+1)
			tri(a0, a1, b1, A.color, A.color, B.color)
			tri(a0, b1, b0, A.color, B.color, B.color)
		}
	}

	if sw.opts.Caps {
		F, L := &rings[0], &rings[len(rings)-1]
		for j := 0; j < K; j++ {
			tri(F.center, sw.ringPoint(F, j+1), sw.ringPoint(F, j), F.color, F.color, F.color)
			tri(L.center, sw.ringPoint(L, j), sw.ringPoint(L, j+1), L.color, L.color, L.color)
		}
	}
}
