package resize

import (
	"io"
	"os"
)

// WriteFile is a destination handle opened for writing.
type WriteFile interface {
	io.Writer
	Sync() error
	Close() error
}

// FileSystem is the local file access the upload transport needs.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Create(path string) (WriteFile, error)
}

// OSFileSystem is the FileSystem backed by the os package.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFileSystem) Create(path string) (WriteFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}
