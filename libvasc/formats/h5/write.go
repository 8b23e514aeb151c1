package h5

import (
	"github.com/pkg/errors"
	"gonum.org/v1/hdf5"

	"github.com/2x3systems/govasc/govasc"
)

// WriteFile writes M in the H5 layout. Points are emitted section by section so each
// section occupies a contiguous row range; connectivity is M's derived adjacency.
func (Format) WriteFile(pathname string, M *govasc.Morphology) error {
	f, err := hdf5.CreateFile(pathname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return &govasc.WriterError{Path: pathname, Err: err}
	}

	err = writeMorphology(f, M)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &govasc.WriterError{Path: pathname, Err: err}
	}
	return nil
}

func writeMorphology(f *hdf5.File, M *govasc.Morphology) error {
	var (
		points    []float64
		structure []int64
		order     []int // points row -> sample index
	)
	for i := range M.Sections {
		S := &M.Sections[i]
		typ := int32(0)
		if len(S.Samples) > 0 {
			typ = M.Samples[S.First()].Type
		}
		structure = append(structure, int64(len(order)+1), int64(typ))
		for _, si := range S.Samples {
			s := &M.Samples[si]
			points = append(points, s.Pos.X, s.Pos.Y, s.Pos.Z, s.Radius)
			order = append(order, si)
		}
	}

	if err := writeFloat64(f, dsPoints, points, uint(len(order)), 4); err != nil {
		return err
	}
	if err := writeInt64(f, dsStructure, structure, uint(len(M.Sections)), 2); err != nil {
		return err
	}

	conn := make([]int64, 0, 2*len(M.Connectivity))
	for _, c := range M.Connectivity {
		conn = append(conn, int64(c.A+1), int64(c.B+1))
	}
	if err := writeInt64(f, dsConnectivity, conn, uint(len(M.Connectivity)), 2); err != nil {
		return err
	}

	for _, track := range M.Dynamics.Tracks() {
		frames := make([]float64, 0, len(track.Frames)*len(order))
		for _, frame := range track.Frames {
			for _, si := range order {
				frames = append(frames, frame[si])
			}
		}
		if err := writeFloat64(f, dsDynamics+track.Name, frames, uint(len(track.Frames)), uint(len(order))); err != nil {
			return err
		}
	}
	return nil
}

func writeFloat64(f *hdf5.File, name string, data []float64, rows, cols uint) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{rows, cols}, nil)
	if err != nil {
		return errors.Wrapf(err, "dataspace for /%s", name)
	}
	defer space.Close()

	dset, err := f.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return errors.Wrapf(err, "create /%s", name)
	}
	defer dset.Close()

	if len(data) == 0 {
		return nil
	}
	return errors.Wrapf(dset.Write(&data), "write /%s", name)
}

func writeInt64(f *hdf5.File, name string, data []int64, rows, cols uint) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{rows, cols}, nil)
	if err != nil {
		return errors.Wrapf(err, "dataspace for /%s", name)
	}
	defer space.Close()

	dset, err := f.CreateDataset(name, hdf5.T_NATIVE_INT64, space)
	if err != nil {
		return errors.Wrapf(err, "create /%s", name)
	}
	defer dset.Close()

	if len(data) == 0 {
		return nil
	}
	return errors.Wrapf(dset.Write(&data), "write /%s", name)
}
