package emitter

import (
	"io"
	"os"
)

// TempFile is the handle returned by FileSystem.CreateTemp.
type TempFile interface {
	io.Writer
	Name() string
	Close() error
}

// FileSystem abstracts the filesystem operations used to publish headers.
type FileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
	Remove(path string) error
	Rename(oldPath, newPath string) error
	Chmod(path string, mode os.FileMode) error
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	CreateTemp(dir, pattern string) (TempFile, error)
}

// OSFileSystem implements FileSystem using the local OS.
type OSFileSystem struct{}

func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

func (OSFileSystem) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (OSFileSystem) Chmod(path string, mode os.FileMode) error {
	return os.Chmod(path, mode)
}

func (OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSFileSystem) CreateTemp(dir, pattern string) (TempFile, error) {
	return os.CreateTemp(dir, pattern)
}
