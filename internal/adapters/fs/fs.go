package fs

import (
	"errors"
	"fmt"
	"os"
)

// LocalFileSystem implements the pipeline's file access contract on the
// local disk.
type LocalFileSystem struct{}

func NewLocalFileSystem() *LocalFileSystem {
	return &LocalFileSystem{}
}

// Opens an existing file for reading.
func (lfs *LocalFileSystem) Open(path string) (*os.File, error) {
	return os.Open(path)
}

// Creates or truncates a file for writing. Returns a non nil error if the file
// is already present and the force flag is false.
func (lfs *LocalFileSystem) Create(path string, force bool) (*os.File, error) {
	_, err := os.Stat(path)
	if !force && err == nil {
		return nil, fmt.Errorf("file %s already exists", path)
	}
	return os.Create(path)
}

// Returns the file size in bytes.
func (lfs *LocalFileSystem) Size(path string) (int64, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

// Reports whether the path exists.
func (lfs *LocalFileSystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Deletes a file.
func (lfs *LocalFileSystem) Remove(path string) error {
	return os.Remove(path)
}
