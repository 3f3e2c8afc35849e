package ports

import "os"

// FileSystem is the narrow file access contract consumed by the file
// pipeline. Nothing beyond ordinary sequential byte I/O and size probing is
// required.
type FileSystem interface {
	// Open opens an existing file for reading.
	Open(path string) (*os.File, error)

	// Create creates or truncates a file for writing. When force is false
	// and the file already exists, Create fails.
	Create(path string, force bool) (*os.File, error)

	// Size returns the file size in bytes.
	Size(path string) (int64, error)

	// Exists reports whether the path exists.
	Exists(path string) (bool, error)

	// Remove deletes a file. Used to clean up partial output after a
	// cancelled or failed run.
	Remove(path string) error
}
