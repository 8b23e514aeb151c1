// Package textio holds the line handling shared by the text morphology formats.
package textio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
)

const maxLineLen = 1 << 20

// EachRecord calls fn with the whitespace-separated fields of every non-blank line.
// Lines whose first non-space rune is '#' are skipped. Line numbers are one-based.
func EachRecord(r io.Reader, fn func(line int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLen)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 || text[0] == '#' {
			continue
		}
		if err := fn(line, strings.Fields(text)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// ParseFloats parses each field into dst, which must have len(fields) elements.
func ParseFloats(fields []string, dst []float64) error {
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return errors.Wrapf(govasc.ErrBadValue, "field %d %q", i+1, f)
		}
		dst[i] = v
	}
	return nil
}

// ParseInt parses a base-10 integer field.
func ParseInt(field string) (int64, error) {
	v, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(govasc.ErrBadValue, "integer %q", field)
	}
	return v, nil
}

// FormatFloat formats v with the fewest digits that round-trip exactly.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// HasExt returns true if pathname ends in ext (case-insensitive).
func HasExt(pathname, ext string) bool {
	return strings.EqualFold(filepath.Ext(pathname), ext)
}

// Head returns up to n leading bytes of the file at pathname.
func Head(pathname string, n int) ([]byte, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	k, err := io.ReadFull(f, buf)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		err = nil
	}
	return buf[:k], err
}

// WriteFile creates pathname and hands a buffered writer to fn, flushing and closing on success.
// Failures are reported as a *govasc.WriterError.
func WriteFile(pathname string, fn func(w *bufio.Writer) error) error {
	f, err := os.Create(pathname)
	if err != nil {
		return &govasc.WriterError{Path: pathname, Err: err}
	}

	bw := bufio.NewWriterSize(f, 64*1024)
	err = fn(bw)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &govasc.WriterError{Path: pathname, Err: err}
	}
	return nil
}
