// Package files groups the input-document discovery layers.
//
// Sub-packages:
//   - filesystem: filesystem abstraction with OS and in-memory implementations
//   - scanner: recursive, suffix-filtered, deterministically ordered discovery
//
// # Usage
//
//	import (
//	    "github.com/vvka-141/sparkify-etl/internal/files/filesystem"
//	    "github.com/vvka-141/sparkify-etl/internal/files/scanner"
//	)
//
//	s := scanner.NewScanner()
//	paths, err := s.Discover("data/song_data", ".json")
package files
