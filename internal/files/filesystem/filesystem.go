package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// File is one entry reached while walking a Directory.
type File interface {
	// Path returns the absolute path of the entry.
	Path() string

	// Info returns entry metadata.
	Info() FileInfo
}

// Directory is a document root that can be traversed.
type Directory interface {
	// Path returns the absolute path to the directory.
	Path() string

	// Walk visits the root and every entry below it in lexical order.
	// Returning fs.SkipDir from fn for a directory skips its contents.
	// Any other error from fn stops the walk and is returned.
	Walk(fn func(File, error) error) error
}

// FileSystemProvider opens directories and reads files.
type FileSystemProvider interface {
	// Open opens a directory at the specified path.
	Open(path string) (Directory, error)

	// ReadFile reads a specific file at the given path.
	ReadFile(path string) ([]byte, error)
}
