package sparkify

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Run completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to database
	ExitApprovalDenied  = 12 // User denied schema reset approval
	ExitLoadFailed      = 13 // Store write failed
	ExitParseError      = 14 // Input document could not be parsed
)

const (
	// NullMarker is the token PostgreSQL's text COPY format reads as NULL.
	NullMarker = `\N`

	// NextSongPage is the only event page that produces songplays.
	NextSongPage = "NextSong"

	// DefaultSuffix selects the input documents during discovery.
	DefaultSuffix = ".json"

	// DefaultSongDataDir and DefaultLogDataDir are the input roots used when none is configured.
	DefaultSongDataDir = "data/song_data"
	DefaultLogDataDir  = "data/log_data"

	// DefaultDatabase is the target database when neither flags, environment nor config name one.
	DefaultDatabase = "sparkifydb"

	// DefaultHost, DefaultPort and DefaultSSLMode complete a connection nobody configured.
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 5432
	DefaultSSLMode = "prefer"

	// DefaultAppName is reported to the server as application_name.
	DefaultAppName = "sparkify"

	// DefaultTimeout bounds a whole run.
	DefaultTimeout = 30 * time.Minute

	// DefaultForceApprovalCountdown is the countdown duration before a forced schema reset proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultRetryInitialDelay is the initial delay before the first connect retry.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay caps the delay between connect retries.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultConnectRetries is zero: a failed connect aborts the run unless retries are configured.
	DefaultConnectRetries = 0

	// TimestampLayout is the text form of start_time written through COPY.
	TimestampLayout = "2006-01-02 15:04:05.000"
)
