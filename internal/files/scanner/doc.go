// Package scanner discovers input documents under a root directory.
//
// Discovery is recursive and keeps files whose names end with the configured
// suffix. Names starting with "." are skipped, as a shell glob "*" would.
// Paths are returned absolute, in the lexical order filepath.Walk visits them,
// so two runs over the same tree process files in the same order.
//
// The scanner is filesystem-agnostic through filesystem.FileSystemProvider,
// enabling both production use with the OS filesystem and testing with
// in-memory filesystems.
package scanner
