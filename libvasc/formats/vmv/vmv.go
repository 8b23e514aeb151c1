// Package vmv reads and writes the VMV vascular morphology format, which lists
// vertices explicitly and groups them into strands (sections).
package vmv

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/formats/textio"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

const FormatTag = "vmv"

// Format implements govasc.MorphologyReader and govasc.MorphologyWriter for VMV.
type Format struct{}

var (
	_ govasc.MorphologyReader = Format{}
	_ govasc.MorphologyWriter = Format{}
)

func (Format) Format() string { return FormatTag }
func (Format) Ext() string    { return ".vmv" }

func (Format) Probe(pathname string) bool {
	if textio.HasExt(pathname, ".vmv") {
		return true
	}
	head, err := textio.Head(pathname, 4096)
	return err == nil && bytes.Contains(head, []byte("$PARAM_BEGIN"))
}

// Load parses the VMV file at pathname.
func (Format) Load(pathname string) (*govasc.RawGraph, error) {
	data, err := os.ReadFile(pathname)
	if err != nil {
		return nil, govasc.NewReaderError(govasc.ReaderIO, pathname, 0, err)
	}
	return Parse(pathname, data)
}

// Parse parses a VMV document held in memory; pathname is used for error reporting.
func Parse(pathname string, data []byte) (*govasc.RawGraph, error) {
	doc, err := sParseVMV.ParseBytes(pathname, data)
	if err != nil {
		line := 0
		var perr participle.Error
		if errors.As(err, &perr) {
			line = perr.Position().Line
		}
		return nil, govasc.NewReaderError(govasc.ReaderSyntax, pathname, line,
			errors.Wrap(govasc.ErrMalformedRecord, err.Error()))
	}

	G := &govasc.RawGraph{
		Path:     pathname,
		Format:   FormatTag,
		Samples:  make([]govasc.RawSample, 0, len(doc.Verts)),
		Sections: make([][]int64, 0, len(doc.Strands)),
	}

	seen := make(map[int64]int, len(doc.Verts))
	for _, v := range doc.Verts {
		if prev, dupe := seen[v.ID]; dupe {
			return nil, govasc.NewReaderError(govasc.ReaderReference, pathname, v.Pos.Line,
				errors.Wrapf(govasc.ErrDuplicateID, "vertex %d first seen on line %d", v.ID, prev))
		}
		seen[v.ID] = v.Pos.Line
		G.Samples = append(G.Samples, govasc.RawSample{
			ID:     v.ID,
			Parent: -1,
			Pos:    vmath.V3(v.X, v.Y, v.Z),
			Radius: v.R,
			Line:   v.Pos.Line,
		})
	}

	for _, strand := range doc.Strands {
		for _, id := range strand.Points {
			if _, exists := seen[id]; !exists {
				return nil, govasc.NewReaderError(govasc.ReaderReference, pathname, strand.Pos.Line,
					errors.Wrapf(govasc.ErrUnknownID, "strand %d references vertex %d", strand.ID, id))
			}
		}
		G.Sections = append(G.Sections, strand.Points)
	}

	for _, p := range doc.Params {
		want := -1
		switch strings.ToUpper(p.Key) {
		case paramNumVerts:
			want = len(doc.Verts)
		case paramNumStrands:
			want = len(doc.Strands)
		}
		if want >= 0 && p.Value != int64(want) {
			return nil, govasc.NewReaderError(govasc.ReaderColumns, pathname, p.Pos.Line,
				errors.Wrapf(govasc.ErrColumnCount, "%s declares %d, found %d", p.Key, p.Value, want))
		}
	}

	return G, nil
}

// WriteFile writes M as VMV. Vertex IDs are one-based sample indices and strands follow section order.
func (Format) WriteFile(pathname string, M *govasc.Morphology) error {
	return textio.WriteFile(pathname, func(w *bufio.Writer) error {
		return Encode(w, M)
	})
}

// Encode writes M in VMV form to w.
func Encode(w *bufio.Writer, M *govasc.Morphology) error {
	fmt.Fprintln(w, "$PARAM_BEGIN")
	fmt.Fprintf(w, "%s %d\n", paramNumVerts, len(M.Samples))
	fmt.Fprintf(w, "%s %d\n", paramNumStrands, len(M.Sections))
	fmt.Fprintln(w, "$PARAM_END")

	fmt.Fprintln(w, "$VERT_LIST_BEGIN")
	for i := range M.Samples {
		s := &M.Samples[i]
		fmt.Fprintf(w, "%d %s %s %s %s\n",
			s.Index+1,
			textio.FormatFloat(s.Pos.X),
			textio.FormatFloat(s.Pos.Y),
			textio.FormatFloat(s.Pos.Z),
			textio.FormatFloat(s.Radius),
		)
	}
	fmt.Fprintln(w, "$VERT_LIST_END")

	fmt.Fprintln(w, "$STRANDS_LIST_BEGIN")
	for i := range M.Sections {
		fmt.Fprintf(w, "%d", i+1)
		for _, si := range M.Sections[i].Samples {
			fmt.Fprintf(w, " %d", si+1)
		}
		w.WriteByte('\n')
	}
	_, err := fmt.Fprintln(w, "$STRANDS_LIST_END")
	return err
}
