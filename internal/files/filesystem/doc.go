// Package filesystem provides filesystem abstraction interfaces and implementations.
//
// The pipeline only ever walks a document root and reads the files it found,
// so the abstraction is limited to that surface. The in-memory implementation
// lets discovery and the batch driver be tested without touching disk.
//
// Implementations:
//   - OSFileSystem: production implementation using the OS filesystem
//   - MemoryFileSystem: in-memory implementation for testing
package filesystem
