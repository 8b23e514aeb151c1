// Package h5 reads and writes the H5 morphology layout:
//
//	/points        (N, 4) float64  x, y, z, r
//	/structure     (M, 2) int64    one-based start index into /points, section type
//	/connectivity  (K, 2) int64    one-based section id pairs
//
// Section k spans /points rows [start_k, start_k+1) and the last section runs to N.
// Optional /dynamics_radius, /dynamics_flow and /dynamics_pressure hold (F, N) frames.
package h5

import (
	"bytes"

	"github.com/pkg/errors"
	"gonum.org/v1/hdf5"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/formats/textio"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

const FormatTag = "h5"

const (
	dsPoints       = "points"
	dsStructure    = "structure"
	dsConnectivity = "connectivity"
	dsDynamics     = "dynamics_"
)

var hdf5Magic = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

// Format implements govasc.MorphologyReader and govasc.MorphologyWriter for H5.
type Format struct{}

var (
	_ govasc.MorphologyReader = Format{}
	_ govasc.MorphologyWriter = Format{}
)

func (Format) Format() string { return FormatTag }
func (Format) Ext() string    { return ".h5" }

// Probe checks the HDF5 superblock signature.
func (Format) Probe(pathname string) bool {
	head, err := textio.Head(pathname, len(hdf5Magic))
	return err == nil && bytes.Equal(head, hdf5Magic)
}

// Load reads the H5 file at pathname.
func (Format) Load(pathname string) (*govasc.RawGraph, error) {
	f, err := hdf5.OpenFile(pathname, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, govasc.NewReaderError(govasc.ReaderIO, pathname, 0, err)
	}
	defer f.Close()

	fail := func(kind govasc.ReaderKind, err error) (*govasc.RawGraph, error) {
		return nil, govasc.NewReaderError(kind, pathname, 0, err)
	}

	points, pointDims, err := readFloat64(f, dsPoints)
	if err != nil {
		return fail(govasc.ReaderSyntax, err)
	}
	if len(pointDims) != 2 || pointDims[1] != 4 {
		return fail(govasc.ReaderColumns, errors.Wrapf(govasc.ErrColumnCount, "/%s has shape %v, want (N, 4)", dsPoints, pointDims))
	}
	structure, structDims, err := readInt64(f, dsStructure)
	if err != nil {
		return fail(govasc.ReaderSyntax, err)
	}
	if len(structDims) != 2 || structDims[1] != 2 {
		return fail(govasc.ReaderColumns, errors.Wrapf(govasc.ErrColumnCount, "/%s has shape %v, want (M, 2)", dsStructure, structDims))
	}

	N := int(pointDims[0])
	G := &govasc.RawGraph{
		Path:    pathname,
		Format:  FormatTag,
		Samples: make([]govasc.RawSample, N),
	}
	for i := 0; i < N; i++ {
		row := points[4*i : 4*i+4]
		G.Samples[i] = govasc.RawSample{
			ID:     int64(i),
			Parent: -1,
			Pos:    vmath.V3(row[0], row[1], row[2]),
			Radius: row[3],
		}
	}

	M := int(structDims[0])
	G.Sections = make([][]int64, 0, M)
	for k := 0; k < M; k++ {
		start := structure[2*k] - 1
		end := int64(N)
		if k+1 < M {
			end = structure[2*(k+1)] - 1
		}
		if start < 0 || start > end || end > int64(N) {
			return fail(govasc.ReaderReference, errors.Wrapf(govasc.ErrUnknownID, "section %d spans points [%d, %d) of %d", k+1, start, end, N))
		}
		typ := int32(structure[2*k+1])
		sec := make([]int64, 0, end-start)
		for i := start; i < end; i++ {
			G.Samples[i].Type = typ
			sec = append(sec, i)
		}
		G.Sections = append(G.Sections, sec)
	}

	if f.LinkExists(dsConnectivity) {
		conn, connDims, err := readInt64(f, dsConnectivity)
		if err != nil {
			return fail(govasc.ReaderSyntax, err)
		}
		if len(connDims) != 2 || connDims[1] != 2 {
			return fail(govasc.ReaderColumns, errors.Wrapf(govasc.ErrColumnCount, "/%s has shape %v, want (K, 2)", dsConnectivity, connDims))
		}
		for k := 0; k < int(connDims[0]); k++ {
			a, b := int(conn[2*k]-1), int(conn[2*k+1]-1)
			if a < 0 || b < 0 || a >= M || b >= M {
				return fail(govasc.ReaderReference, errors.Errorf("connectivity row %d references section outside [1, %d]", k+1, M))
			}
			if a > b {
				a, b = b, a
			}
			G.Connectivity = append(G.Connectivity, govasc.Connection{A: a, B: b})
		}
	}

	G.Dynamics, err = readDynamics(f, N)
	if err != nil {
		return fail(govasc.ReaderColumns, err)
	}

	return G, nil
}

func readDynamics(f *hdf5.File, N int) (*govasc.Dynamics, error) {
	var D govasc.Dynamics
	found := false
	for _, track := range []struct {
		name string
		dst  *[][]float64
	}{
		{"radius", &D.Radius},
		{"flow", &D.Flow},
		{"pressure", &D.Pressure},
	} {
		name := dsDynamics + track.name
		if !f.LinkExists(name) {
			continue
		}
		vals, dims, err := readFloat64(f, name)
		if err != nil {
			return nil, err
		}
		if len(dims) != 2 || int(dims[1]) != N {
			return nil, errors.Wrapf(govasc.ErrColumnCount, "/%s has shape %v, want (F, %d)", name, dims, N)
		}
		frames := make([][]float64, dims[0])
		for fi := range frames {
			frames[fi] = vals[fi*N : (fi+1)*N]
		}
		*track.dst = frames
		found = true
	}
	if !found {
		return nil, nil
	}
	return &D, nil
}

func readFloat64(f *hdf5.File, name string) ([]float64, []uint, error) {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open /%s", name)
	}
	defer dset.Close()

	dims, _, err := dset.Space().SimpleExtentDims()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "shape of /%s", name)
	}
	data := make([]float64, numElems(dims))
	if err = dset.Read(&data); err != nil {
		return nil, nil, errors.Wrapf(err, "read /%s", name)
	}
	return data, dims, nil
}

func readInt64(f *hdf5.File, name string) ([]int64, []uint, error) {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open /%s", name)
	}
	defer dset.Close()

	dims, _, err := dset.Space().SimpleExtentDims()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "shape of /%s", name)
	}
	data := make([]int64, numElems(dims))
	if err = dset.Read(&data); err != nil {
		return nil, nil, errors.Wrapf(err, "read /%s", name)
	}
	return data, dims, nil
}

func numElems(dims []uint) int {
	N := 1
	for _, d := range dims {
		N *= int(d)
	}
	return N
}
