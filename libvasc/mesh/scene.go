package mesh

import (
	"bufio"
	"image/color"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/formats/textio"
)

// SceneWriter writes the scene container: a YAML document holding one or more named
// objects, each with vertices, optional normals and colors, and triangle faces.
type SceneWriter struct{}

func (SceneWriter) Format() string { return FormatScene }
func (SceneWriter) Ext() string    { return ".scene.yaml" }

func (w SceneWriter) WriteFile(pathname string, m *govasc.Mesh) error {
	return WriteScene(pathname, m.Name, []*govasc.Mesh{m})
}

// WriteScene writes every mesh as one object of a single scene document.
func WriteScene(pathname, name string, meshes []*govasc.Mesh) error {
	return textio.WriteFile(pathname, func(out *bufio.Writer) error {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(newSceneDoc(name, meshes)); err != nil {
			return err
		}
		return enc.Close()
	})
}

type sceneDoc struct {
	Name    string        `yaml:"name"`
	Objects []sceneObject `yaml:"objects"`
}

type sceneObject struct {
	Name     string      `yaml:"name"`
	Vertices []flowSeq   `yaml:"vertices"`
	Normals  []flowSeq   `yaml:"normals,omitempty"`
	Colors   []flowSeq   `yaml:"colors,omitempty"`
	Faces    []flowSeq   `yaml:"faces"`
	Stats    *sceneStats `yaml:"stats,omitempty"`
}

type sceneStats struct {
	Watertight bool `yaml:"watertight"`
	Components int  `yaml:"components"`
}

// flowSeq is a short numeric tuple emitted on one line.
type flowSeq []string

func (s flowSeq) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range s {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: v})
	}
	return node, nil
}

func vecSeq(v r3.Vec) flowSeq {
	f := textio.FormatFloat
	return flowSeq{f(v.X), f(v.Y), f(v.Z)}
}

func newSceneDoc(name string, meshes []*govasc.Mesh) *sceneDoc {
	doc := &sceneDoc{Name: name}
	for _, m := range meshes {
		obj := sceneObject{
			Name:     m.Name,
			Vertices: make([]flowSeq, len(m.Vertices)),
			Faces:    make([]flowSeq, len(m.Faces)),
		}
		for i, v := range m.Vertices {
			obj.Vertices[i] = vecSeq(v)
		}
		if m.HasNormals() {
			for _, n := range m.Normals {
				obj.Normals = append(obj.Normals, vecSeq(n))
			}
		}
		if m.HasColors() {
			for _, c := range m.Colors {
				obj.Colors = append(obj.Colors, flowSeq{
					strconv.Itoa(int(c.R)), strconv.Itoa(int(c.G)), strconv.Itoa(int(c.B)), strconv.Itoa(int(c.A)),
				})
			}
		}
		for i, f := range m.Faces {
			obj.Faces[i] = flowSeq{
				strconv.FormatUint(uint64(f[0]), 10),
				strconv.FormatUint(uint64(f[1]), 10),
				strconv.FormatUint(uint64(f[2]), 10),
			}
		}
		st := m.Stats()
		obj.Stats = &sceneStats{Watertight: st.Watertight, Components: st.Components}
		doc.Objects = append(doc.Objects, obj)
	}
	return doc
}

type sceneIn struct {
	Name    string `yaml:"name"`
	Objects []struct {
		Name     string      `yaml:"name"`
		Vertices [][]float64 `yaml:"vertices"`
		Normals  [][]float64 `yaml:"normals"`
		Colors   [][]uint8   `yaml:"colors"`
		Faces    [][]uint32  `yaml:"faces"`
	} `yaml:"objects"`
}

// ReadScene loads a scene container written by WriteScene.
func ReadScene(pathname string) ([]*govasc.Mesh, error) {
	data, err := os.ReadFile(pathname)
	if err != nil {
		return nil, err
	}
	var doc sceneIn
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "scene %s", pathname)
	}

	meshes := make([]*govasc.Mesh, 0, len(doc.Objects))
	for oi, obj := range doc.Objects {
		m := &govasc.Mesh{Name: obj.Name}
		for _, v := range obj.Vertices {
			if len(v) != 3 {
				return nil, errors.Wrapf(govasc.ErrColumnCount, "object %d vertex has %d components", oi, len(v))
			}
			m.Vertices = append(m.Vertices, r3.Vec{X: v[0], Y: v[1], Z: v[2]})
		}
		for _, n := range obj.Normals {
			if len(n) != 3 {
				return nil, errors.Wrapf(govasc.ErrColumnCount, "object %d normal has %d components", oi, len(n))
			}
			m.Normals = append(m.Normals, r3.Vec{X: n[0], Y: n[1], Z: n[2]})
		}
		for _, c := range obj.Colors {
			if len(c) != 4 {
				return nil, errors.Wrapf(govasc.ErrColumnCount, "object %d color has %d channels", oi, len(c))
			}
			m.Colors = append(m.Colors, color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]})
		}
		for _, f := range obj.Faces {
			if len(f) != 3 {
				return nil, errors.Wrapf(govasc.ErrColumnCount, "object %d face has %d corners", oi, len(f))
			}
			m.Faces = append(m.Faces, [3]uint32{f[0], f[1], f[2]})
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}
