package skeleton

import (
	"math"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/2x3systems/govasc/govasc"
)

// cellKey is the epsilon-sized cell holding a terminal position.
type cellKey [3]int64

func compareCells(A, B interface{}) int {
	a, b := A.(cellKey), B.(cellKey)
	for k := 0; k < 3; k++ {
		switch {
		case a[k] < b[k]:
			return -1
		case a[k] > b[k]:
			return 1
		}
	}
	return 0
}

func compareConnections(A, B interface{}) int {
	a, b := A.(govasc.Connection), B.(govasc.Connection)
	switch {
	case a.A != b.A:
		return a.A - b.A
	default:
		return a.B - b.B
	}
}

type terminal struct {
	section int
	pos     r3.Vec
}

func snap(p r3.Vec, eps float64) cellKey {
	return cellKey{
		int64(math.Floor(p.X / eps)),
		int64(math.Floor(p.Y / eps)),
		int64(math.Floor(p.Z / eps)),
	}
}

func coincide(a, b r3.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

// DeriveConnectivity buckets the terminal samples of every non-degenerate section on an
// epsilon grid and emits each pair of distinct sections with coinciding terminals once,
// as (lower, higher) section index, sorted.
func DeriveConnectivity(M *govasc.Morphology, eps float64) []govasc.Connection {
	cells := redblacktree.Tree{Comparator: compareCells}
	pairs := redblacktree.Tree{Comparator: compareConnections}

	for _, E := range M.EdgeSections() {
		for _, si := range [2]int{E.First, E.Last} {
			t := terminal{E.Section, M.Samples[si].Pos}
			key := snap(t.pos, eps)

			// Points within eps of each other land in the same or an adjacent cell.
			var nb cellKey
			for dx := int64(-1); dx <= 1; dx++ {
				for dy := int64(-1); dy <= 1; dy++ {
					for dz := int64(-1); dz <= 1; dz++ {
						nb = cellKey{key[0] + dx, key[1] + dy, key[2] + dz}
						found, ok := cells.Get(nb)
						if !ok {
							continue
						}
						for _, other := range found.([]terminal) {
							if other.section == t.section || !coincide(other.pos, t.pos, eps) {
								continue
							}
							c := govasc.Connection{A: other.section, B: t.section}
							if c.A > c.B {
								c.A, c.B = c.B, c.A
							}
							pairs.Put(c, nil)
						}
					}
				}
			}

			var bucket []terminal
			if found, ok := cells.Get(key); ok {
				bucket = found.([]terminal)
			}
			cells.Put(key, append(bucket, t))
		}
	}

	if pairs.Size() == 0 {
		return nil
	}
	conn := make([]govasc.Connection, 0, pairs.Size())
	for _, key := range pairs.Keys() {
		conn = append(conn, key.(govasc.Connection))
	}
	return conn
}

// SectionsCoincide returns true if a terminal of section i lies within eps of a terminal of section j.
func SectionsCoincide(M *govasc.Morphology, i, j int, eps float64) bool {
	Si, Sj := &M.Sections[i], &M.Sections[j]
	if len(Si.Samples) == 0 || len(Sj.Samples) == 0 {
		return false
	}
	for _, a := range [2]int{Si.First(), Si.Last()} {
		for _, b := range [2]int{Sj.First(), Sj.Last()} {
			if coincide(M.Samples[a].Pos, M.Samples[b].Pos, eps) {
				return true
			}
		}
	}
	return false
}

// validateConnectivity checks reader-supplied adjacency against terminal coincidence.
func validateConnectivity(M *govasc.Morphology, provided []govasc.Connection, eps float64) error {
	for _, c := range provided {
		if c.A < 0 || c.B < 0 || c.A >= len(M.Sections) || c.B >= len(M.Sections) {
			return &govasc.BuilderError{
				Which:     "I3",
				Offending: []int{c.A, c.B},
				Err:       errors.Wrapf(govasc.ErrInvariantViolation, "connectivity references section outside [0, %d)", len(M.Sections)),
			}
		}
		if !SectionsCoincide(M, c.A, c.B, eps) {
			return &govasc.BuilderError{
				Which:     "I6",
				Offending: []int{c.A, c.B},
				Err:       errors.Wrapf(govasc.ErrInvariantViolation, "sections %d and %d share no terminal", c.A, c.B),
			}
		}
	}
	return nil
}
