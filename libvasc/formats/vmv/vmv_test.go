package vmv_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
	"github.com/2x3systems/govasc/libvasc/formats/vmv"
	"github.com/2x3systems/govasc/libvasc/vmath"
)

const strandY = `# one strand along y
$PARAM_BEGIN
NUM_VERTS 4
NUM_STRANDS 1
$PARAM_END
$VERT_LIST_BEGIN
1 0 0 0 1
2 0 1 0 0.5
3 0 2 0 0.5
4 0 3 0 1
$VERT_LIST_END
$STRANDS_LIST_BEGIN
1 1 2 3 4
$STRANDS_LIST_END
`

func TestParse(t *testing.T) {
	G, err := vmv.Parse("strand.vmv", []byte(strandY))
	if err != nil {
		t.Fatal(err)
	}
	if !G.HasSections() || len(G.Sections) != 1 {
		t.Fatalf("want 1 section, got %v", G.Sections)
	}
	if got := G.Sections[0]; len(got) != 4 || got[0] != 1 || got[3] != 4 {
		t.Fatalf("unexpected strand %v", got)
	}
	if len(G.Samples) != 4 || G.Samples[1].Radius != 0.5 || G.Samples[3].Pos.Y != 3 {
		t.Fatalf("unexpected samples %+v", G.Samples)
	}
	if G.Samples[2].Line != 9 {
		t.Errorf("vertex line = %d, want 9", G.Samples[2].Line)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind govasc.ReaderKind
		err  error
	}{
		{
			"syntax",
			"$PARAM_BEGIN\nNUM_VERTS\n$PARAM_END\n",
			govasc.ReaderSyntax, govasc.ErrMalformedRecord,
		},
		{
			"count",
			"$PARAM_BEGIN\nNUM_VERTS 3\n$PARAM_END\n$VERT_LIST_BEGIN\n1 0 0 0 1\n$VERT_LIST_END\n$STRANDS_LIST_BEGIN\n$STRANDS_LIST_END\n",
			govasc.ReaderColumns, govasc.ErrColumnCount,
		},
		{
			"unknown vertex",
			"$PARAM_BEGIN\n$PARAM_END\n$VERT_LIST_BEGIN\n1 0 0 0 1\n$VERT_LIST_END\n$STRANDS_LIST_BEGIN\n1 1 9\n$STRANDS_LIST_END\n",
			govasc.ReaderReference, govasc.ErrUnknownID,
		},
		{
			"duplicate vertex",
			"$PARAM_BEGIN\n$PARAM_END\n$VERT_LIST_BEGIN\n1 0 0 0 1\n1 0 1 0 1\n$VERT_LIST_END\n$STRANDS_LIST_BEGIN\n$STRANDS_LIST_END\n",
			govasc.ReaderReference, govasc.ErrDuplicateID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := vmv.Parse("bad.vmv", []byte(tt.body))
			var rerr *govasc.ReaderError
			if !errors.As(err, &rerr) {
				t.Fatalf("want *ReaderError, got %v", err)
			}
			if rerr.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", rerr.Kind, tt.kind)
			}
			if rerr.Line == 0 {
				t.Error("text formats report a line number")
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("got %v, want %v", err, tt.err)
			}
		})
	}
}

func TestEncodeCanonical(t *testing.T) {
	M := &govasc.Morphology{
		Samples: []govasc.Sample{
			{Index: 0, ParentIndex: -1, Pos: vmath.V3(0, 0, 0), Radius: 1},
			{Index: 1, ParentIndex: -1, Pos: vmath.V3(0, 1, 0), Radius: 0.5},
			{Index: 2, ParentIndex: -1, Pos: vmath.V3(0, 2, 0), Radius: 0.5},
			{Index: 3, ParentIndex: -1, Pos: vmath.V3(0, 3, 0), Radius: 1},
		},
		Sections: []govasc.Section{{Index: 0, Samples: []int{0, 1, 2, 3}}},
	}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := vmv.Encode(w, M); err != nil {
		t.Fatal(err)
	}
	w.Flush()
	first := buf.String()

	G, err := vmv.Parse("enc.vmv", buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(G.Samples) != 4 || len(G.Sections) != 1 {
		t.Fatalf("reparse: %d samples %d sections", len(G.Samples), len(G.Sections))
	}
	for i, s := range G.Samples {
		if s.Pos != M.Samples[i].Pos || s.Radius != M.Samples[i].Radius {
			t.Fatalf("sample %d: got %+v", i, s)
		}
	}

	buf.Reset()
	w.Reset(&buf)
	vmv.Encode(w, M)
	w.Flush()
	if buf.String() != first {
		t.Fatal("encoding is not deterministic")
	}
}
