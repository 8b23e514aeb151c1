package govasc

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle mesh. Normals and Colors are optional; when present they
// hold one entry per vertex.
type Mesh struct {
	Name     string
	Vertices []r3.Vec
	Normals  []r3.Vec
	Colors   []color.RGBA
	Faces    [][3]uint32
}

// Mesher turns a Morphology into one or more meshes.
type Mesher interface {

	// Algorithm names the meshing algorithm, e.g. "polyline".
	Algorithm() string

	// Mesh builds meshes for M without mutating it.
	Mesh(M *Morphology) ([]*Mesh, error)
}

// MeshWriter serializes a Mesh to one on-disk format.
type MeshWriter interface {
	Format() string
	Ext() string
	WriteFile(pathname string, mesh *Mesh) error
}

// NumVertices returns the vertex count.
func (m *Mesh) NumVertices() int { return len(m.Vertices) }

// NumFaces returns the triangle count.
func (m *Mesh) NumFaces() int { return len(m.Faces) }

// HasNormals returns true if every vertex carries a normal.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) > 0 && len(m.Normals) == len(m.Vertices)
}

// HasColors returns true if every vertex carries a color.
func (m *Mesh) HasColors() bool {
	return len(m.Colors) > 0 && len(m.Colors) == len(m.Vertices)
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p r3.Vec) uint32 {
	m.Vertices = append(m.Vertices, p)
	return uint32(len(m.Vertices) - 1)
}

// AddFace appends the triangle (a, b, c), wound counter-clockwise seen from outside.
func (m *Mesh) AddFace(a, b, c uint32) {
	m.Faces = append(m.Faces, [3]uint32{a, b, c})
}

// FaceNormal returns the unit normal of face fi given its winding.
func (m *Mesh) FaceNormal(fi int) r3.Vec {
	f := m.Faces[fi]
	a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
	return unit(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// Centroid returns the centroid of face fi.
func (m *Mesh) Centroid(fi int) r3.Vec {
	f := m.Faces[fi]
	sum := r3.Add(r3.Add(m.Vertices[f[0]], m.Vertices[f[1]]), m.Vertices[f[2]])
	return r3.Scale(1.0/3, sum)
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() r3.Box {
	if len(m.Vertices) == 0 {
		return r3.Box{}
	}
	return boundsOf(len(m.Vertices), func(i int) r3.Vec { return m.Vertices[i] })
}

// Append adds other's vertices and faces to m without welding coincident vertices.
// Per-vertex normals and colors survive only if both meshes carry them.
func (m *Mesh) Append(other *Mesh) {
	base := uint32(len(m.Vertices))
	keepNormals := (len(m.Vertices) == 0 || m.HasNormals()) && other.HasNormals()
	keepColors := (len(m.Vertices) == 0 || m.HasColors()) && other.HasColors()

	m.Vertices = append(m.Vertices, other.Vertices...)
	if keepNormals {
		m.Normals = append(m.Normals, other.Normals...)
	} else {
		m.Normals = nil
	}
	if keepColors {
		m.Colors = append(m.Colors, other.Colors...)
	} else {
		m.Colors = nil
	}
	for _, f := range other.Faces {
		m.Faces = append(m.Faces, [3]uint32{f[0] + base, f[1] + base, f[2] + base})
	}
}

// MeshStats summarizes the topology of a Mesh.
type MeshStats struct {
	Vertices         int
	Faces            int
	BoundaryEdges    int // edges used by exactly one face
	NonManifoldEdges int // edges used by more than two faces
	Components       int // face-connected components
	Watertight       bool
}

// Stats computes the edge and component statistics of m. Vertices at identical positions
// are treated as one, so meshes with split (hard-edged) vertices are judged by their shape.
func (m *Mesh) Stats() MeshStats {
	st := MeshStats{
		Vertices: len(m.Vertices),
		Faces:    len(m.Faces),
	}

	weld := make([]uint32, len(m.Vertices))
	first := make(map[r3.Vec]uint32, len(m.Vertices))
	for i, v := range m.Vertices {
		w, seen := first[v]
		if !seen {
			w = uint32(i)
			first[v] = w
		}
		weld[i] = w
	}

	type edge [2]uint32
	uses := make(map[edge]int, 3*len(m.Faces)/2)
	parent := make([]int, len(m.Vertices))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for _, f := range m.Faces {
		for k := 0; k < 3; k++ {
			a, b := weld[f[k]], weld[f[(k+1)%3]]
			if a > b {
				a, b = b, a
			}
			uses[edge{a, b}]++
			if ra, rb := find(int(a)), find(int(b)); ra != rb {
				parent[ra] = rb
			}
		}
	}
	for _, n := range uses {
		switch {
		case n == 1:
			st.BoundaryEdges++
		case n > 2:
			st.NonManifoldEdges++
		}
	}

	roots := make(map[int]struct{})
	for _, f := range m.Faces {
		roots[find(int(weld[f[0]]))] = struct{}{}
	}
	st.Components = len(roots)
	st.Watertight = len(m.Faces) > 0 && st.BoundaryEdges == 0 && st.NonManifoldEdges == 0
	return st
}
