package govasc

import (
	"fmt"

	"github.com/pkg/errors"
)

// Errors
var (
	ErrMalformedRecord    = errors.New("malformed record")
	ErrColumnCount        = errors.New("unexpected column count")
	ErrBadValue           = errors.New("bad numeric value")
	ErrDuplicateID        = errors.New("duplicate sample ID")
	ErrUnknownID          = errors.New("reference to unknown sample ID")
	ErrUnknownFormat      = errors.New("unrecognized morphology format")
	ErrInvariantViolation = errors.New("morphology invariant violation")
	ErrEmptyMorphology    = errors.New("morphology has no samples")
	ErrNonFinite          = errors.New("non-finite value")
	ErrBadOpts            = errors.New("bad options")
	ErrFrameOutOfRange    = errors.New("dynamics frame out of range")
)

// ReaderKind classifies a ReaderError.
type ReaderKind string

const (
	ReaderSyntax    ReaderKind = "syntax"
	ReaderColumns   ReaderKind = "columns"
	ReaderValue     ReaderKind = "value"
	ReaderReference ReaderKind = "reference"
	ReaderIO        ReaderKind = "io"
)

// ReaderError reports a malformed input; Line is 0 for binary formats.
type ReaderError struct {
	Kind ReaderKind
	Path string
	Line int
	Err  error
}

func (e *ReaderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %v", e.Path, e.Line, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *ReaderError) Unwrap() error { return e.Err }
func (e *ReaderError) Cause() error  { return e.Err }

// NewReaderError is a convenience constructor.
func NewReaderError(kind ReaderKind, path string, line int, err error) *ReaderError {
	return &ReaderError{Kind: kind, Path: path, Line: line, Err: err}
}

// BuilderError reports an invariant violation; Which names the invariant (e.g. "I6").
type BuilderError struct {
	Which     string
	Offending []int
	Err       error
}

func (e *BuilderError) Error() string {
	const maxListed = 8
	listed := e.Offending
	more := ""
	if len(listed) > maxListed {
		more = fmt.Sprintf(" (+%d more)", len(listed)-maxListed)
		listed = listed[:maxListed]
	}
	return fmt.Sprintf("invariant %s violated at %v%s: %v", e.Which, listed, more, e.Err)
}

func (e *BuilderError) Unwrap() error { return e.Err }
func (e *BuilderError) Cause() error  { return e.Err }

// MesherKind classifies a MesherError.
type MesherKind string

const (
	MesherEmpty        MesherKind = "empty-skeleton"
	MesherNonFinite    MesherKind = "non-finite-field"
	MesherDegenerate   MesherKind = "degenerate-input"
	MesherUnsupported  MesherKind = "unsupported-algorithm"
	MesherGridTooLarge MesherKind = "grid-too-large"
)

// MesherError reports degenerate input or a polygonizer failure.
type MesherError struct {
	Kind MesherKind
	Err  error
}

func (e *MesherError) Error() string {
	if e.Err == nil {
		return "mesher: " + string(e.Kind)
	}
	return fmt.Sprintf("mesher: %s: %v", e.Kind, e.Err)
}

func (e *MesherError) Unwrap() error { return e.Err }
func (e *MesherError) Cause() error  { return e.Err }

// WriterError reports an output I/O failure.
type WriterError struct {
	Path string
	Err  error
}

func (e *WriterError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriterError) Unwrap() error { return e.Err }
func (e *WriterError) Cause() error  { return e.Err }
