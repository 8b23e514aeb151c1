package mesh

import (
	"bufio"
	"fmt"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/formats/textio"
)

// OBJWriter writes Wavefront OBJ with optional vertex normals.
type OBJWriter struct{}

func (OBJWriter) Format() string { return FormatOBJ }
func (OBJWriter) Ext() string    { return ".obj" }

func (w OBJWriter) WriteFile(pathname string, m *govasc.Mesh) error {
	return textio.WriteFile(pathname, func(out *bufio.Writer) error {
		return w.Encode(out, m)
	})
}

// Encode writes m in OBJ form to out.
func (OBJWriter) Encode(out *bufio.Writer, m *govasc.Mesh) error {
	if m.Name != "" {
		fmt.Fprintf(out, "o %s\n", m.Name)
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(out, "v %s %s %s\n", textio.FormatFloat(v.X), textio.FormatFloat(v.Y), textio.FormatFloat(v.Z))
	}
	normals := m.HasNormals()
	if normals {
		for _, n := range m.Normals {
			fmt.Fprintf(out, "vn %s %s %s\n", textio.FormatFloat(n.X), textio.FormatFloat(n.Y), textio.FormatFloat(n.Z))
		}
	}
	for _, f := range m.Faces {
		a, b, c := f[0]+1, f[1]+1, f[2]+1
		var err error
		if normals {
			_, err = fmt.Fprintf(out, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		} else {
			_, err = fmt.Fprintf(out, "f %d %d %d\n", a, b, c)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
