package converter

import (
	"os"
	"path/filepath"

	apperrors "romgen/internal/errors"
)

// Workspace is a private temporary directory. Callers must Close it; Close
// removes the directory and everything in it.
type Workspace struct {
	dir string
}

// NewWorkspace creates a fresh temporary directory below parent, or below
// the system temp directory when parent is empty.
func NewWorkspace(parent string) (*Workspace, error) {
	dir, err := os.MkdirTemp(parent, "romgen-*")
	if err != nil {
		return nil, apperrors.FilesystemError(apperrors.CodeFilesystemGeneric, "failed to create temporary directory", err).
			WithModule("converter").
			WithOperation("NewWorkspace")
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns name joined to the workspace directory.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Close removes the workspace. It is safe to call more than once.
func (w *Workspace) Close() error {
	if w == nil || w.dir == "" {
		return nil
	}
	dir := w.dir
	w.dir = ""
	if err := os.RemoveAll(dir); err != nil {
		return apperrors.FilesystemError(apperrors.CodeFilesystemGeneric, "failed to remove temporary directory", err).
			WithModule("converter").
			WithOperation("Close").
			WithField("dir", dir)
	}
	return nil
}
