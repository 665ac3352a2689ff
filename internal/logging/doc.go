// Package logging provides concrete implementations of the sparkify.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: writes to stderr, colouring the level prefixes on a terminal
//   - NullLogger: discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
