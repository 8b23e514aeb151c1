package govasc

import "gonum.org/v1/gonum/spatial/r3"

// Morphology is the canonical skeleton graph: a flat sample arena, a flat section list
// referencing samples by index, and a section adjacency edge list.
//
// After the builder completes, a Morphology is treated as read-only; analysis and meshing
// produce new objects and never mutate it.
type Morphology struct {
	Name         string
	Samples      []Sample
	Sections     []Section
	Connectivity []Connection
	Dynamics     *Dynamics

	// Cached; recomputed by Revalidate after every mutation.
	Bounds r3.Box
	Center r3.Vec

	Diagnostics Diagnostics
}

// NumSegments returns the total number of segments over all sections.
func (M *Morphology) NumSegments() int {
	N := 0
	for i := range M.Sections {
		N += M.Sections[i].NumSegments()
	}
	return N
}

// Sample returns the sample at index i.
func (M *Morphology) Sample(i int) *Sample {
	return &M.Samples[i]
}

// SectionSegments calls fn for each segment of section si, in stored order.
func (M *Morphology) SectionSegments(si int, fn func(seg Segment)) {
	S := &M.Sections[si]
	for k := 0; k+1 < len(S.Samples); k++ {
		fn(Segment{
			Section: si,
			Index:   k,
			A:       &M.Samples[S.Samples[k]],
			B:       &M.Samples[S.Samples[k+1]],
		})
	}
}

// EachSegment calls fn for every segment, sections in canonical order and segments in stored order.
func (M *Morphology) EachSegment(fn func(seg Segment)) {
	for si := range M.Sections {
		M.SectionSegments(si, fn)
	}
}

// EdgeSections reduces each non-degenerate section to its terminal samples.
func (M *Morphology) EdgeSections() []EdgeSection {
	edges := make([]EdgeSection, 0, len(M.Sections))
	for i := range M.Sections {
		S := &M.Sections[i]
		if S.IsDegenerate() {
			continue
		}
		edges = append(edges, EdgeSection{
			Section: i,
			First:   S.First(),
			Last:    S.Last(),
		})
	}
	return edges
}

// Revalidate recomputes the cached bounding box and center.
func (M *Morphology) Revalidate() {
	if len(M.Samples) == 0 {
		M.Bounds = r3.Box{}
		M.Center = r3.Vec{}
		return
	}
	M.Bounds = boundsOf(len(M.Samples), func(i int) r3.Vec { return M.Samples[i].Pos })
	M.Center = r3.Scale(0.5, r3.Add(M.Bounds.Min, M.Bounds.Max))
}

// MinRadius returns the smallest strictly positive sample radius, or 0 if there is none.
func (M *Morphology) MinRadius() float64 {
	min := 0.0
	for i := range M.Samples {
		r := M.Samples[i].Radius
		if r > 0 && (min == 0 || r < min) {
			min = r
		}
	}
	return min
}

// MaxRadius returns the largest sample radius.
func (M *Morphology) MaxRadius() float64 {
	max := 0.0
	for i := range M.Samples {
		if r := M.Samples[i].Radius; r > max {
			max = r
		}
	}
	return max
}

// Clone returns a deep copy of M.
func (M *Morphology) Clone() *Morphology {
	dup := &Morphology{
		Name:        M.Name,
		Samples:     append([]Sample(nil), M.Samples...),
		Sections:    make([]Section, len(M.Sections)),
		Bounds:      M.Bounds,
		Center:      M.Center,
		Diagnostics: M.Diagnostics.Clone(),
	}
	for i, S := range M.Sections {
		dup.Sections[i] = Section{
			Index:   S.Index,
			Samples: append([]int(nil), S.Samples...),
		}
	}
	if M.Connectivity != nil {
		dup.Connectivity = append([]Connection(nil), M.Connectivity...)
	}
	dup.Dynamics = M.Dynamics.Clone()
	return dup
}

// Clone returns a deep copy of D (nil stays nil).
func (D *Dynamics) Clone() *Dynamics {
	if D == nil {
		return nil
	}
	dup := func(src [][]float64) [][]float64 {
		if src == nil {
			return nil
		}
		out := make([][]float64, len(src))
		for i := range src {
			out[i] = append([]float64(nil), src[i]...)
		}
		return out
	}
	return &Dynamics{
		Radius:   dup(D.Radius),
		Flow:     dup(D.Flow),
		Pressure: dup(D.Pressure),
	}
}

// Clone returns a deep copy of diag.
func (diag Diagnostics) Clone() Diagnostics {
	diag.ZeroRadiusSamples = append([]int(nil), diag.ZeroRadiusSamples...)
	diag.DegenerateSections = append([]int(nil), diag.DegenerateSections...)
	diag.ShortSections = append([]int(nil), diag.ShortSections...)
	return diag
}
