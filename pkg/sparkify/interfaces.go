package sparkify

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Connector is a unified interface for establishing database connections.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM tokens).
type Connector interface {
	// Connect establishes the single connection used for the life of a run.
	// The returned connection should be closed by the caller when done.
	Connect(ctx context.Context) (*pgx.Conn, error)
}

// SongLookup resolves a log event to the song and artist it played.
type SongLookup interface {
	// LookupSong returns the ids of a song matching title, artist name and duration exactly.
	// A miss is not an error: both ids are nil.
	LookupSong(ctx context.Context, title, artist string, duration float64) (songID, artistID *string, err error)
}

// FileScanner discovers input documents.
type FileScanner interface {
	// Discover recursively lists files under root whose names end with suffix,
	// as absolute paths in deterministic lexical order.
	Discover(root, suffix string) ([]string, error)

	// ReadFile returns the content of a discovered file.
	ReadFile(path string) ([]byte, error)
}

// Approver handles user interaction for approval workflows,
// particularly for destructive operations like a schema reset.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts user to type database name for confirmation
type Approver interface {
	// RequestApproval prompts for confirmation before dropping and recreating the tables of dbName.
	RequestApproval(ctx context.Context, dbName string) (bool, error)
}

// ErrorClassifier determines whether an error is transient (retryable) or fatal.
type ErrorClassifier interface {
	// IsTransient returns true if the error is temporary and the operation should be retried.
	IsTransient(err error) bool
}

// BackoffStrategy calculates the delay before the next retry attempt.
type BackoffStrategy interface {
	// NextDelay returns the duration to wait before the next attempt.
	// attempt is zero-indexed (0 = first retry, 1 = second retry, etc.)
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of retry attempts (0 = no retries, -1 = unlimited)
	MaxAttempts() int
}

// MetricsRecorder receives the outcome of a run.
type MetricsRecorder interface {
	// RecordRun reports a finished run; runErr is nil on success.
	RecordRun(summary RunSummary, runErr error)
}
