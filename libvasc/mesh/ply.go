package mesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/formats/textio"
)

// PLYWriter writes PLY, ASCII or little-endian binary. Vertex normals and colors are
// written when the mesh carries them.
type PLYWriter struct {
	Binary bool
}

func (w PLYWriter) Format() string {
	if w.Binary {
		return FormatPLYBinary
	}
	return FormatPLY
}

func (PLYWriter) Ext() string { return ".ply" }

func (w PLYWriter) WriteFile(pathname string, m *govasc.Mesh) error {
	return textio.WriteFile(pathname, func(out *bufio.Writer) error {
		return w.Encode(out, m)
	})
}

// Encode writes m in PLY form to out.
func (w PLYWriter) Encode(out *bufio.Writer, m *govasc.Mesh) error {
	format := "ascii"
	if w.Binary {
		format = "binary_little_endian"
	}
	normals, colors := m.HasNormals(), m.HasColors()

	fmt.Fprintln(out, "ply")
	fmt.Fprintf(out, "format %s 1.0\n", format)
	if m.Name != "" {
		fmt.Fprintf(out, "comment %s\n", m.Name)
	}
	fmt.Fprintf(out, "element vertex %d\n", len(m.Vertices))
	fmt.Fprintln(out, "property float x\nproperty float y\nproperty float z")
	if normals {
		fmt.Fprintln(out, "property float nx\nproperty float ny\nproperty float nz")
	}
	if colors {
		fmt.Fprintln(out, "property uchar red\nproperty uchar green\nproperty uchar blue\nproperty uchar alpha")
	}
	fmt.Fprintf(out, "element face %d\n", len(m.Faces))
	fmt.Fprintln(out, "property list uchar int vertex_indices")
	fmt.Fprintln(out, "end_header")

	if w.Binary {
		return encodePLYBinary(out, m, normals, colors)
	}

	for i, v := range m.Vertices {
		fmt.Fprintf(out, "%g %g %g", float32(v.X), float32(v.Y), float32(v.Z))
		if normals {
			n := m.Normals[i]
			fmt.Fprintf(out, " %g %g %g", float32(n.X), float32(n.Y), float32(n.Z))
		}
		if colors {
			c := m.Colors[i]
			fmt.Fprintf(out, " %d %d %d %d", c.R, c.G, c.B, c.A)
		}
		out.WriteByte('\n')
	}
	for _, f := range m.Faces {
		if _, err := fmt.Fprintf(out, "3 %d %d %d\n", f[0], f[1], f[2]); err != nil {
			return err
		}
	}
	return nil
}

func encodePLYBinary(out *bufio.Writer, m *govasc.Mesh, normals, colors bool) error {
	var scratch [4]byte
	putFloat := func(x float64) {
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(float32(x)))
		out.Write(scratch[:])
	}

	for i, v := range m.Vertices {
		putFloat(v.X)
		putFloat(v.Y)
		putFloat(v.Z)
		if normals {
			n := m.Normals[i]
			putFloat(n.X)
			putFloat(n.Y)
			putFloat(n.Z)
		}
		if colors {
			c := m.Colors[i]
			out.Write([]byte{c.R, c.G, c.B, c.A})
		}
	}
	for _, f := range m.Faces {
		out.WriteByte(3)
		for _, vi := range f {
			binary.LittleEndian.PutUint32(scratch[:], vi)
			if _, err := out.Write(scratch[:]); err != nil {
				return err
			}
		}
	}
	return nil
}
