package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

// Merge returns a single mesh holding every vertex and face of meshes, without welding.
func Merge(name string, meshes []*govasc.Mesh) *govasc.Mesh {
	out := &govasc.Mesh{Name: name}
	for _, m := range meshes {
		out.Append(m)
	}
	return out
}

// Connect applies the objects-connection policy to a list of per-section meshes.
func Connect(name string, meshes []*govasc.Mesh, mode ObjectsConnection) []*govasc.Mesh {
	if mode != Merged || len(meshes) <= 1 {
		return meshes
	}
	return []*govasc.Mesh{Merge(name, meshes)}
}

// ComputeNormals sets each vertex normal to the area-weighted average of its incident face normals.
func ComputeNormals(m *govasc.Mesh) {
	normals := make([]r3.Vec, len(m.Vertices))
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		// Cross product length is twice the face area.
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		for _, vi := range f {
			normals[vi] = r3.Add(normals[vi], n)
		}
	}
	for i := range normals {
		normals[i] = vmath.Normalize(normals[i])
	}
	m.Normals = normals
}

// FlipFaces reverses the winding of every face (and negates vertex normals).
func FlipFaces(m *govasc.Mesh) {
	for i, f := range m.Faces {
		m.Faces[i] = [3]uint32{f[0], f[2], f[1]}
	}
	for i, n := range m.Normals {
		m.Normals[i] = r3.Scale(-1, n)
	}
}

// SignedVolume returns the volume enclosed by m, positive when faces wind outward.
func SignedVolume(m *govasc.Mesh) float64 {
	V := 0.0
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		V += r3.Dot(a, r3.Cross(b, c))
	}
	return V / 6
}
