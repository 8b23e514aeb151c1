package skeleton

import (
	"math"

	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
)

// Build converts G into a Morphology satisfying the morphology invariants.
// On any invariant violation a *govasc.BuilderError is returned and no Morphology is produced.
func Build(G *govasc.RawGraph, opts BuildOpts) (*govasc.Morphology, error) {
	if opts.Resample {
		if err := checkSpacing(opts); err != nil {
			return nil, err
		}
	}

	M, idx, err := compact(G)
	if err != nil {
		return nil, err
	}
	M.Name = G.Path

	if G.HasSections() {
		err = copySections(M, G, idx, opts.AllowDegenerate)
	} else {
		err = extractSections(M, opts.AllowDegenerate)
	}
	if err != nil {
		return nil, err
	}

	if opts.Resample {
		M = resample(M, opts.MinSpacing, opts.MaxSpacing)
	}

	if err = Finalize(M, opts); err != nil {
		return nil, err
	}

	if len(G.Connectivity) > 0 {
		if err = validateConnectivity(M, G.Connectivity, opts.epsilon()); err != nil {
			return nil, err
		}
	}

	if opts.Center {
		M = Center(M)
	}
	return M, nil
}

// compact maps reader IDs onto dense indices in input order and rewrites parent links.
func compact(G *govasc.RawGraph) (*govasc.Morphology, map[int64]int, error) {
	N := len(G.Samples)
	M := &govasc.Morphology{
		Samples: make([]govasc.Sample, N),
	}

	idx := make(map[int64]int, N)
	for i, raw := range G.Samples {
		if _, dupe := idx[raw.ID]; dupe {
			return nil, nil, &govasc.BuilderError{
				Which:     "I1",
				Offending: []int{i},
				Err:       errors.Wrapf(govasc.ErrDuplicateID, "sample ID %d", raw.ID),
			}
		}
		idx[raw.ID] = i
	}

	var bad []int
	for i, raw := range G.Samples {
		parent := -1
		if raw.Parent >= 0 && !G.HasSections() {
			p, exists := idx[raw.Parent]
			if !exists {
				return nil, nil, &govasc.BuilderError{
					Which:     "I3",
					Offending: []int{i},
					Err:       errors.Wrapf(govasc.ErrUnknownID, "parent %d of sample %d", raw.Parent, raw.ID),
				}
			}
			parent = p
		}
		if !isFiniteSample(raw) {
			bad = append(bad, i)
		}
		M.Samples[i] = govasc.Sample{
			Index:       i,
			ParentIndex: parent,
			Type:        raw.Type,
			Pos:         raw.Pos,
			Radius:      raw.Radius,
		}
	}
	if len(bad) > 0 {
		return nil, nil, &govasc.BuilderError{
			Which:     "I4",
			Offending: bad,
			Err:       errors.Wrap(govasc.ErrNonFinite, "sample position or radius is non-finite or negative"),
		}
	}

	if G.Dynamics != nil {
		for _, track := range G.Dynamics.Tracks() {
			for f, frame := range track.Frames {
				if len(frame) != N {
					return nil, nil, &govasc.BuilderError{
						Which:     "I3",
						Offending: []int{f},
						Err:       errors.Wrapf(govasc.ErrInvariantViolation, "dynamics %s frame %d has %d values for %d samples", track.Name, f, len(frame), N),
					}
				}
			}
		}
		M.Dynamics = G.Dynamics.Clone()
	}

	return M, idx, nil
}

func isFiniteSample(raw govasc.RawSample) bool {
	p := raw.Pos
	for _, v := range [4]float64{p.X, p.Y, p.Z, raw.Radius} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return raw.Radius >= 0
}

// copySections maps explicit reader sections onto sample indices, verbatim.
func copySections(M *govasc.Morphology, G *govasc.RawGraph, idx map[int64]int, allowDegenerate bool) error {
	M.Sections = make([]govasc.Section, len(G.Sections))
	for si, ids := range G.Sections {
		if len(ids) == 0 || (len(ids) == 1 && !allowDegenerate) {
			return &govasc.BuilderError{
				Which:     "I2",
				Offending: []int{si},
				Err:       errors.Wrapf(govasc.ErrInvariantViolation, "section %d has %d samples", si, len(ids)),
			}
		}
		S := govasc.Section{
			Index:   si,
			Samples: make([]int, len(ids)),
		}
		for k, id := range ids {
			i, exists := idx[id]
			if !exists {
				return &govasc.BuilderError{
					Which:     "I3",
					Offending: []int{si},
					Err:       errors.Wrapf(govasc.ErrUnknownID, "section %d references sample ID %d", si, id),
				}
			}
			S.Samples[k] = i
		}
		M.Sections[si] = S
	}
	return nil
}

// extractSections derives sections from parent links in a single pass over samples.
// A root with at most one child starts a section at itself; any sample whose parent has
// a child count other than one starts a section at its parent. A section runs until it
// reaches a sample whose child count is not one.
func extractSections(M *govasc.Morphology, allowDegenerate bool) error {
	N := len(M.Samples)
	children := make([][]int, N)
	for i := range M.Samples {
		if p := M.Samples[i].ParentIndex; p >= 0 {
			children[p] = append(children[p], i)
		}
	}

	covered := make([]bool, N)
	walk := func(start []int) []int {
		chain := start
		cur := chain[len(chain)-1]
		for {
			covered[cur] = true
			if len(children[cur]) != 1 {
				return chain
			}
			cur = children[cur][0]
			chain = append(chain, cur)
		}
	}

	for i := range M.Samples {
		var chain []int
		p := M.Samples[i].ParentIndex
		switch {
		case p < 0 && len(children[i]) <= 1:
			chain = walk([]int{i})
		case p >= 0 && len(children[p]) != 1:
			chain = walk([]int{p, i})
		case p < 0:
			covered[i] = true
		default:
			continue
		}
		if chain == nil {
			continue
		}
		if len(chain) < 2 && !allowDegenerate {
			return &govasc.BuilderError{
				Which:     "I2",
				Offending: []int{i},
				Err:       errors.Wrapf(govasc.ErrInvariantViolation, "isolated sample %d forms a single-sample section", i),
			}
		}
		M.Sections = append(M.Sections, govasc.Section{
			Index:   len(M.Sections),
			Samples: chain,
		})
	}

	// Samples unreachable from any root sit on a parent-link cycle.
	var cyclic []int
	for i, ok := range covered {
		if !ok {
			cyclic = append(cyclic, i)
		}
	}
	if len(cyclic) > 0 {
		return &govasc.BuilderError{
			Which:     "I3",
			Offending: cyclic,
			Err:       errors.Wrap(govasc.ErrInvariantViolation, "parent links form a cycle"),
		}
	}
	return nil
}

func checkSpacing(opts BuildOpts) error {
	min, max := opts.MinSpacing, opts.MaxSpacing
	if !(min >= 0) || !(max > 0) || math.IsInf(max, 0) || min > max/2 {
		return errors.Wrapf(govasc.ErrBadOpts, "resample spacing [%g, %g] needs 0 <= min <= max/2", min, max)
	}
	return nil
}
