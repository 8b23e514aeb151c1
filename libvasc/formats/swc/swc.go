// Package swc reads and writes the SWC morphology format: one sample per line,
// "id type x y z radius parent", with parent -1 marking a root.
package swc

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/formats/textio"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

const (
	FormatTag = "swc"
	numFields = 7
)

// Format implements govasc.MorphologyReader and govasc.MorphologyWriter for SWC.
type Format struct{}

var (
	_ govasc.MorphologyReader = Format{}
	_ govasc.MorphologyWriter = Format{}
)

func (Format) Format() string { return FormatTag }
func (Format) Ext() string    { return ".swc" }

// Probe accepts a ".swc" extension, or otherwise a first record of seven numeric fields.
func (Format) Probe(pathname string) bool {
	if textio.HasExt(pathname, ".swc") {
		return true
	}
	head, err := textio.Head(pathname, 4096)
	if err != nil {
		return false
	}

	matched := false
	textio.EachRecord(bytes.NewReader(head), func(line int, fields []string) error {
		var vals [numFields]float64
		matched = len(fields) == numFields && textio.ParseFloats(fields, vals[:]) == nil
		return errStop
	})
	return matched
}

var errStop = errors.New("stop")

// Load parses the SWC file at pathname.
func (Format) Load(pathname string) (*govasc.RawGraph, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, govasc.NewReaderError(govasc.ReaderIO, pathname, 0, err)
	}
	defer f.Close()

	G := &govasc.RawGraph{
		Path:   pathname,
		Format: FormatTag,
	}
	lineOf := make(map[int64]int)

	err = textio.EachRecord(f, func(line int, fields []string) error {
		if len(fields) != numFields {
			return govasc.NewReaderError(govasc.ReaderColumns, pathname, line,
				errors.Wrapf(govasc.ErrColumnCount, "want %d fields, got %d", numFields, len(fields)))
		}
		id, err := textio.ParseInt(fields[0])
		if err != nil {
			return govasc.NewReaderError(govasc.ReaderValue, pathname, line, err)
		}
		typ, err := textio.ParseInt(fields[1])
		if err != nil {
			return govasc.NewReaderError(govasc.ReaderValue, pathname, line, err)
		}
		var xyzr [4]float64
		if err = textio.ParseFloats(fields[2:6], xyzr[:]); err != nil {
			return govasc.NewReaderError(govasc.ReaderValue, pathname, line, err)
		}
		parent, err := textio.ParseInt(fields[6])
		if err != nil {
			return govasc.NewReaderError(govasc.ReaderValue, pathname, line, err)
		}
		if parent < 0 {
			parent = -1
		}
		if prev, dupe := lineOf[id]; dupe {
			return govasc.NewReaderError(govasc.ReaderReference, pathname, line,
				errors.Wrapf(govasc.ErrDuplicateID, "id %d first seen on line %d", id, prev))
		}
		lineOf[id] = line

		G.Samples = append(G.Samples, govasc.RawSample{
			ID:     id,
			Parent: parent,
			Type:   int32(typ),
			Pos:    vmath.V3(xyzr[0], xyzr[1], xyzr[2]),
			Radius: xyzr[3],
			Line:   line,
		})
		return nil
	})
	if err != nil {
		if _, isReaderErr := err.(*govasc.ReaderError); !isReaderErr {
			err = govasc.NewReaderError(govasc.ReaderIO, pathname, 0, err)
		}
		return nil, err
	}

	for _, s := range G.Samples {
		if s.Parent == -1 {
			continue
		}
		if _, exists := lineOf[s.Parent]; !exists {
			return nil, govasc.NewReaderError(govasc.ReaderReference, pathname, s.Line,
				errors.Wrapf(govasc.ErrUnknownID, "parent %d of sample %d", s.Parent, s.ID))
		}
	}

	return G, nil
}

// WriteFile writes M as SWC. Sample IDs are one-based indices; parents come from ParentIndex.
func (Format) WriteFile(pathname string, M *govasc.Morphology) error {
	return textio.WriteFile(pathname, func(w *bufio.Writer) error {
		fmt.Fprintf(w, "# %s\n", headerName(M))
		fmt.Fprintf(w, "# samples %d, sections %d\n", len(M.Samples), len(M.Sections))
		fmt.Fprintln(w, "# id type x y z radius parent")

		for i := range M.Samples {
			s := &M.Samples[i]
			parent := -1
			if s.ParentIndex >= 0 {
				parent = s.ParentIndex + 1
			}
			_, err := fmt.Fprintf(w, "%d %d %s %s %s %s %d\n",
				s.Index+1,
				s.Type,
				textio.FormatFloat(s.Pos.X),
				textio.FormatFloat(s.Pos.Y),
				textio.FormatFloat(s.Pos.Z),
				textio.FormatFloat(s.Radius),
				parent,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func headerName(M *govasc.Morphology) string {
	name := strings.TrimSpace(M.Name)
	if name == "" {
		name = "morphology"
	}
	return name
}
