package pipeline

import (
	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/mesh"
	"github.com/2x3systems/govasc/libvasc/mesh/metaball"
	"github.com/2x3systems/govasc/libvasc/mesh/sweep"
)

// NewMesher returns the mesher for algorithm. Skin and voxelization are recognized but
// not built, and fail with MesherUnsupported.
func NewMesher(algorithm string, sweepOpts sweep.Opts, mbOpts metaball.Opts) (govasc.Mesher, error) {
	switch algorithm {
	case mesh.AlgoPolyline:
		sw, err := sweep.New(sweepOpts)
		if err != nil {
			return nil, err
		}
		return sw, nil
	case mesh.AlgoMetaBalls:
		mb, err := metaball.New(mbOpts)
		if err != nil {
			return nil, err
		}
		return mb, nil
	case mesh.AlgoSkin, mesh.AlgoVoxelization:
		return nil, &govasc.MesherError{
			Kind: govasc.MesherUnsupported,
			Err:  errors.Errorf("%s meshing is not available", algorithm),
		}
	}
	return nil, errors.Wrapf(govasc.ErrBadOpts, "unknown meshing algorithm %q", algorithm)
}
