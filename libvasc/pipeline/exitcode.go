package pipeline

import (
	"io/fs"

	"github.com/pkg/errors"

	"github.com/2x3systems/govasc/govasc"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitInvariant = 1 // malformed input, invariant violation, mesher failure, bad options
	ExitIO        = 2 // any read or write failure of the filesystem
)

// ExitCode maps a pipeline error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		re *govasc.ReaderError
		we *govasc.WriterError
		pe *fs.PathError
	)
	switch {
	case errors.As(err, &re):
		if re.Kind == govasc.ReaderIO {
			return ExitIO
		}
		return ExitInvariant
	case errors.As(err, &we), errors.As(err, &pe):
		return ExitIO
	}
	return ExitInvariant
}
