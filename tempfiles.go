package main

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// stagedFile is a temp artifact owned by exactly one flow. Callers defer
// Cleanup right after staging so removal runs on every exit path; Release
// transfers ownership and turns the deferred Cleanup into a no-op.
type stagedFile struct {
	path     string
	released bool
}

// stageFile reserves a fresh randomly named path in the work dir with the
// given suffix. The external tool writes the file itself.
func stageFile(suffix string) (*stagedFile, error) {
	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, &FilesystemError{Err: err}
	}
	return &stagedFile{path: filepath.Join(cfg.WorkDir, uuid.New().String()+suffix)}, nil
}

// adoptFile wraps an already-written path, e.g. an upload staged by the
// handler, so a worker can guard it the same way.
func adoptFile(path string) *stagedFile {
	return &stagedFile{path: path}
}

func (s *stagedFile) Path() string { return s.path }

// Release hands the path to the caller; the guard no longer removes it.
func (s *stagedFile) Release() string {
	s.released = true
	return s.path
}

func (s *stagedFile) Cleanup() {
	if s == nil || s.released {
		return
	}
	_ = os.Remove(s.path)
}
