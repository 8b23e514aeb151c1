package govasc

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is a point on the vascular skeleton with a cross-sectional radius.
type Sample struct {
	Index       int     // dense zero-based index into Morphology.Samples
	ParentIndex int     // zero-based index of the parent sample, or -1 for a root
	Type        int32   // SWC structure type (0 when the source has none)
	Pos         r3.Vec  // position
	Radius      float64 // cross-sectional radius, >= 0
}

// Section is a maximal chain of samples with no internal branching.
// Consecutive pairs of Samples form the section's segments.
type Section struct {
	Index   int   // zero-based index into Morphology.Sections
	Samples []int // ordered sample indices
}

// NumSegments returns the number of segments in this section.
func (S *Section) NumSegments() int {
	if len(S.Samples) < 2 {
		return 0
	}
	return len(S.Samples) - 1
}

// IsDegenerate returns true if this section has fewer than two samples.
func (S *Section) IsDegenerate() bool {
	return len(S.Samples) < 2
}

// First returns the index of this section's first sample.
func (S *Section) First() int {
	return S.Samples[0]
}

// Last returns the index of this section's last sample.
func (S *Section) Last() int {
	return S.Samples[len(S.Samples)-1]
}

// Connection is an undirected adjacency edge between two sections, A < B.
type Connection struct {
	A, B int
}

// EdgeSection is a section reduced to the undirected edge between its terminal samples.
type EdgeSection struct {
	Section int
	First   int
	Last    int
}

// Segment is a transient view of two adjacent samples within a section.
// All metrics treat a segment as a right tapered cylinder.
type Segment struct {
	Section int // section index
	Index   int // segment index within the section
	A, B    *Sample
}

// Dynamics holds precomputed per-frame arrays indexed [frame][sample].
// Any of the arrays may be nil.
type Dynamics struct {
	Radius   [][]float64
	Flow     [][]float64
	Pressure [][]float64
}

// NumFrames returns the number of frames present.
func (D *Dynamics) NumFrames() int {
	if D == nil {
		return 0
	}
	N := len(D.Radius)
	if len(D.Flow) > N {
		N = len(D.Flow)
	}
	if len(D.Pressure) > N {
		N = len(D.Pressure)
	}
	return N
}

// Tracks returns the non-nil arrays keyed by name, in a fixed order.
func (D *Dynamics) Tracks() []DynamicsTrack {
	if D == nil {
		return nil
	}
	var tracks []DynamicsTrack
	for _, tr := range []DynamicsTrack{
		{"radius", D.Radius},
		{"flow", D.Flow},
		{"pressure", D.Pressure},
	} {
		if tr.Frames != nil {
			tracks = append(tracks, tr)
		}
	}
	return tracks
}

// DynamicsTrack names one of the Dynamics arrays.
type DynamicsTrack struct {
	Name   string
	Frames [][]float64
}

// Diagnostics is the non-fatal report produced by the skeleton builder.
type Diagnostics struct {
	NumZeroRadius         int   // samples with radius == 0
	NumDegenerateSections int   // sections with fewer than two samples
	NumShortSections      int   // sections whose thickness-to-length ratio exceeds 1
	ZeroRadiusSamples     []int // offending sample indices
	DegenerateSections    []int // offending section indices
	ShortSections         []int // offending section indices
}

// RawSample is a sample as emitted by a reader, before index compaction.
type RawSample struct {
	ID     int64 // reader-level identifier
	Parent int64 // reader-level parent identifier, or -1 for a root
	Type   int32
	Pos    r3.Vec
	Radius float64
	Line   int // source line number for text formats, else 0
}

// RawGraph is the intermediate representation every reader produces.
type RawGraph struct {
	Path     string
	Format   string
	Samples  []RawSample
	Sections [][]int64 // explicit sections as sample IDs, nil for parent-link inputs

	// Connectivity optionally lists adjacent section pairs (zero-based section indices).
	Connectivity []Connection

	// Dynamics, when present, is indexed by position in Samples.
	Dynamics *Dynamics
}

// HasSections returns true if the reader supplied explicit sections.
func (G *RawGraph) HasSections() bool {
	return G.Sections != nil
}

// MorphologyReader parses one on-disk morphology format into a RawGraph.
type MorphologyReader interface {

	// Format returns the short format tag, e.g. "swc".
	Format() string

	// Probe returns true if the file at pathname looks like this format.
	Probe(pathname string) bool

	// Load parses the file at pathname.
	Load(pathname string) (*RawGraph, error)
}

// MorphologyWriter serializes a Morphology to one on-disk format.
type MorphologyWriter interface {
	Format() string

	// Ext returns the file extension written, including the leading dot.
	Ext() string

	// WriteFile writes M to pathname, replacing any existing file.
	WriteFile(pathname string, M *Morphology) error
}

// PolyPoint is one drawable vertex of a PolyLine.
type PolyPoint struct {
	Pos    r3.Vec
	Radius float64
	Color  int // color-map index in [0, resolution)
}

// PolyLine is a drawable view of a section.
type PolyLine struct {
	Section int
	Points  []PolyPoint
}
