package emitter

import (
	"bytes"
	stdErrors "errors"
	"os"
	"path/filepath"

	apperrors "romgen/internal/errors"
)

// publishMode is the permission of every published file.
const publishMode os.FileMode = 0o644

// Exists reports whether path is present. Errors other than "not exist"
// are returned so that an unreadable directory is not mistaken for a
// missing artifact.
func Exists(fs FileSystem, path string) (bool, error) {
	if _, err := fs.Stat(path); err != nil {
		if stdErrors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, apperrors.FilesystemError(apperrors.CodeFilesystemGeneric, "failed to inspect artifact", err).
			WithModule("emitter").
			WithOperation("Exists").
			WithField("path", path)
	}
	return true, nil
}

// WriteFileAtomic writes data to a temporary sibling of path and renames it
// into place, so path never holds a partial file.
func WriteFileAtomic(fs FileSystem, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return publishError("failed to create output directory", err, dir)
	}

	tmp, err := fs.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return publishError("failed to create temporary file", err, path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return publishError("failed to write temporary file", err, tmpName)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return publishError("failed to close temporary file", err, tmpName)
	}
	if err := fs.Chmod(tmpName, publishMode); err != nil {
		_ = fs.Remove(tmpName)
		return publishError("failed to set file mode", err, tmpName)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)
		return publishError("failed to move generated file into place", err, path)
	}
	return nil
}

// WriteFileIfChanged writes data to path unless path already holds exactly
// data. It reports whether a write happened.
func WriteFileIfChanged(fs FileSystem, path string, data []byte) (bool, error) {
	current, err := fs.ReadFile(path)
	if err == nil && bytes.Equal(current, data) {
		return false, nil
	}
	if err != nil && !stdErrors.Is(err, os.ErrNotExist) {
		return false, publishError("failed to read existing file", err, path)
	}
	if err := WriteFileAtomic(fs, path, data); err != nil {
		return false, err
	}
	return true, nil
}

func publishError(message string, err error, path string) *apperrors.AppError {
	return apperrors.FilesystemError(apperrors.CodeFilesystemGeneric, message, err).
		WithModule("emitter").
		WithOperation("publish").
		WithField("path", path)
}
