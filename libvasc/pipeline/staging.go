package pipeline

import (
	"os"
	"path/filepath"

	"github.com/2x3systems/govasc/govasc"
)

// staging collects a pipeline's artifacts in a hidden directory inside the output directory
// and moves them into place only on commit, so an abandoned pipeline leaves nothing behind.
type staging struct {
	outDir string
	dir    string
	names  []string
}

func newStaging(outDir string) (*staging, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, &govasc.WriterError{Path: outDir, Err: err}
	}
	dir, err := os.MkdirTemp(outDir, ".stage-*")
	if err != nil {
		return nil, &govasc.WriterError{Path: outDir, Err: err}
	}
	return &staging{
		outDir: outDir,
		dir:    dir,
	}, nil
}

// Path returns where to write the artifact that will be committed as outDir/name.
func (s *staging) Path(name string) string {
	s.names = append(s.names, name)
	return filepath.Join(s.dir, name)
}

// Adopt registers a file already written into the staging directory.
func (s *staging) Adopt(tmpPath string) {
	s.names = append(s.names, filepath.Base(tmpPath))
}

// Dir is the staging directory itself.
func (s *staging) Dir() string {
	return s.dir
}

// Commit renames every staged artifact into outDir and returns their final paths.
func (s *staging) Commit() ([]string, error) {
	defer s.Discard()

	final := make([]string, 0, len(s.names))
	for _, name := range s.names {
		dest := filepath.Join(s.outDir, name)
		if err := os.Rename(filepath.Join(s.dir, name), dest); err != nil {
			return final, &govasc.WriterError{Path: dest, Err: err}
		}
		final = append(final, dest)
	}
	return final, nil
}

// Discard removes the staging directory and anything left in it.
func (s *staging) Discard() {
	os.RemoveAll(s.dir)
}
