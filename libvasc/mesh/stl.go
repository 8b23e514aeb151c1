package mesh

import (
	"bufio"
	"encoding/binary"
	"math"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/formats/textio"
)

const stlHeaderLen = 80

// STLWriter writes binary STL. Face normals are recomputed from the winding.
type STLWriter struct{}

func (STLWriter) Format() string { return FormatSTL }
func (STLWriter) Ext() string    { return ".stl" }

func (w STLWriter) WriteFile(pathname string, m *govasc.Mesh) error {
	return textio.WriteFile(pathname, func(out *bufio.Writer) error {
		return w.Encode(out, m)
	})
}

// Encode writes m in binary STL form to out.
func (STLWriter) Encode(out *bufio.Writer, m *govasc.Mesh) error {
	var header [stlHeaderLen]byte
	copy(header[:], m.Name)
	out.Write(header[:])

	var rec [50]byte
	binary.LittleEndian.PutUint32(rec[:4], uint32(len(m.Faces)))
	out.Write(rec[:4])

	for fi, f := range m.Faces {
		n := m.FaceNormal(fi)
		vals := [12]float64{n.X, n.Y, n.Z}
		for k, vi := range f {
			v := m.Vertices[vi]
			vals[3+3*k], vals[4+3*k], vals[5+3*k] = v.X, v.Y, v.Z
		}
		for k, x := range vals {
			binary.LittleEndian.PutUint32(rec[4*k:], math.Float32bits(float32(x)))
		}
		rec[48], rec[49] = 0, 0
		if _, err := out.Write(rec[:]); err != nil {
			return err
		}
	}
	return nil
}
