package skeleton

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

// Relative slack on the spacing thresholds so that a second pass with the same
// thresholds leaves an already resampled section untouched.
const spacingTol = 1e-9

// origin records where a resampled sample comes from: an existing sample (B < 0),
// or the interpolation A + T*(B-A).
type origin struct {
	A, B int
	T    float64
}

// Resample returns a copy of M whose sections have been respaced, then re-finalized.
func Resample(M *govasc.Morphology, minSpacing, maxSpacing float64, opts BuildOpts) (*govasc.Morphology, error) {
	opts.MinSpacing, opts.MaxSpacing = minSpacing, maxSpacing
	if err := checkSpacing(opts); err != nil {
		return nil, err
	}
	dup := resample(M, minSpacing, maxSpacing)
	opts.AllowDegenerate = true
	if err := Finalize(dup, opts); err != nil {
		return nil, err
	}
	return dup, nil
}

// resample walks each section, dropping internal samples closer than minSpacing to the
// previously kept sample and then subdividing any gap wider than maxSpacing into equal
// parts. Terminal samples are never removed. The sample arena is rebuilt in section walk
// order; samples no section references keep their relative order at the end.
func resample(M *govasc.Morphology, minSpacing, maxSpacing float64) *govasc.Morphology {
	mergeBelow := minSpacing * (1 - spacingTol)
	splitAbove := maxSpacing * (1 + spacingTol)

	referenced := make([]bool, len(M.Samples))
	for i := range M.Sections {
		for _, si := range M.Sections[i].Samples {
			referenced[si] = true
		}
	}

	var (
		origins []origin
		newIdx  = make(map[int]int, len(M.Samples))
	)
	keep := func(si int) int {
		if ni, exists := newIdx[si]; exists {
			return ni
		}
		ni := len(origins)
		newIdx[si] = ni
		origins = append(origins, origin{A: si, B: -1})
		return ni
	}

	out := &govasc.Morphology{
		Name:     M.Name,
		Sections: make([]govasc.Section, len(M.Sections)),
	}

	for i := range M.Sections {
		src := M.Sections[i].Samples
		kept := mergeSection(M, src, mergeBelow)

		samples := make([]int, 0, len(kept))
		for k, si := range kept {
			if k > 0 {
				prev := kept[k-1]
				d := vmath.Distance(M.Samples[prev].Pos, M.Samples[si].Pos)
				if d > splitAbove {
					n := int(math.Ceil(d / maxSpacing))
					for j := 1; j < n; j++ {
						samples = append(samples, len(origins))
						origins = append(origins, origin{A: prev, B: si, T: float64(j) / float64(n)})
					}
				}
			}
			samples = append(samples, keep(si))
		}
		out.Sections[i] = govasc.Section{Index: i, Samples: samples}
	}

	for si, ok := range referenced {
		if !ok {
			keep(si)
		}
	}

	out.Samples = make([]govasc.Sample, len(origins))
	for ni, o := range origins {
		a := &M.Samples[o.A]
		s := govasc.Sample{
			Index:       ni,
			ParentIndex: -1,
			Type:        a.Type,
			Pos:         a.Pos,
			Radius:      a.Radius,
		}
		if o.B >= 0 {
			b := &M.Samples[o.B]
			s.Pos = vmath.Lerp(a.Pos, b.Pos, o.T)
			s.Radius = vmath.LerpScalar(a.Radius, b.Radius, o.T)
		}
		out.Samples[ni] = s
	}

	if M.Dynamics != nil {
		out.Dynamics = resampleDynamics(M.Dynamics, origins)
	}
	return out
}

// mergeSection returns the sample indices of src that survive the merge pass.
func mergeSection(M *govasc.Morphology, src []int, mergeBelow float64) []int {
	if len(src) < 2 {
		return append([]int(nil), src...)
	}
	pos := func(si int) r3.Vec { return M.Samples[si].Pos }

	kept := []int{src[0]}
	last := len(src) - 1
	for k := 1; k < last; k++ {
		if vmath.Distance(pos(kept[len(kept)-1]), pos(src[k])) >= mergeBelow {
			kept = append(kept, src[k])
		}
	}
	for len(kept) > 1 && vmath.Distance(pos(kept[len(kept)-1]), pos(src[last])) < mergeBelow {
		kept = kept[:len(kept)-1]
	}
	return append(kept, src[last])
}

func resampleDynamics(D *govasc.Dynamics, origins []origin) *govasc.Dynamics {
	remap := func(frames [][]float64) [][]float64 {
		if frames == nil {
			return nil
		}
		out := make([][]float64, len(frames))
		for f, src := range frames {
			dst := make([]float64, len(origins))
			for ni, o := range origins {
				if o.B < 0 {
					dst[ni] = src[o.A]
				} else {
					dst[ni] = vmath.LerpScalar(src[o.A], src[o.B], o.T)
				}
			}
			out[f] = dst
		}
		return out
	}
	return &govasc.Dynamics{
		Radius:   remap(D.Radius),
		Flow:     remap(D.Flow),
		Pressure: remap(D.Pressure),
	}
}
