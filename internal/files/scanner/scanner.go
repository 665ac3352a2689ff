package scanner

import (
	"fmt"
	"strings"

	"github.com/vvka-141/sparkify-etl/internal/files/filesystem"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

// Scanner discovers documents from a directory tree.
// Scanner is safe for concurrent use by multiple goroutines as long as
// the provided fsProvider is also thread-safe.
type Scanner struct {
	fsProvider filesystem.FileSystemProvider
}

// NewScanner creates a new scanner over the OS filesystem.
func NewScanner() *Scanner {
	return &Scanner{fsProvider: filesystem.NewOSFileSystem()}
}

// NewScannerWithFS creates a new scanner with a custom filesystem provider.
// This is primarily useful for testing with in-memory filesystems.
// Panics if fsProvider is nil.
func NewScannerWithFS(fsProvider filesystem.FileSystemProvider) *Scanner {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{fsProvider: fsProvider}
}

// Discover recursively lists the files under root whose names end with suffix.
// An empty suffix selects sparkify.DefaultSuffix. A missing root is an error;
// an existing root with no matches yields an empty list.
func (s *Scanner) Discover(root, suffix string) ([]string, error) {
	if suffix == "" {
		suffix = sparkify.DefaultSuffix
	}

	dir, err := s.fsProvider.Open(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory %s: %w", root, err)
	}

	paths := []string{}
	err = dir.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			return fmt.Errorf("error walking path: %w", err)
		}

		info := file.Info()
		if info.IsDir() {
			return nil
		}

		name := info.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, suffix) {
			return nil
		}

		paths = append(paths, file.Path())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

// ReadFile returns the content of a discovered document.
func (s *Scanner) ReadFile(path string) ([]byte, error) {
	content, err := s.fsProvider.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return content, nil
}

var _ sparkify.FileScanner = (*Scanner)(nil)
