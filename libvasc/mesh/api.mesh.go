// Package mesh post-processes govasc.Mesh values and writes them as PLY, OBJ, STL or a
// YAML scene container.
package mesh

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
)

// Algorithm names accepted by a mesher factory.
const (
	AlgoPolyline     = "polyline"
	AlgoMetaBalls    = "meta-balls"
	AlgoSkin         = "skin"
	AlgoVoxelization = "voxelization"
)

// ObjectsConnection selects whether per-section meshes are merged into one object.
type ObjectsConnection int

const (
	Separate ObjectsConnection = iota
	Merged
)

// Writer tags.
const (
	FormatPLY       = "ply"
	FormatPLYBinary = "ply-binary"
	FormatOBJ       = "obj"
	FormatSTL       = "stl"
	FormatScene     = "scene"
)

// Writers returns every built-in mesh writer.
func Writers() []govasc.MeshWriter {
	return []govasc.MeshWriter{
		PLYWriter{},
		PLYWriter{Binary: true},
		OBJWriter{},
		STLWriter{},
		SceneWriter{},
	}
}

// WriterFor returns the mesh writer registered under tag (case-insensitive).
func WriterFor(tag string) (govasc.MeshWriter, error) {
	for _, w := range Writers() {
		if strings.EqualFold(w.Format(), tag) {
			return w, nil
		}
	}
	return nil, errors.Wrapf(govasc.ErrUnknownFormat, "no mesh writer for %q", tag)
}
