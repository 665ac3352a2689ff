package sparkify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Song is one row of the songs dimension.
type Song struct {
	SongID   string
	ArtistID string
	Title    string
	Year     *int // nil when the document carries no year; 0 is kept as 0
	Duration float64
}

// Values returns the song fields in insert order: song_id, artist_id, title, year, duration.
func (s Song) Values() []any {
	return []any{s.SongID, s.ArtistID, s.Title, s.Year, s.Duration}
}

// Artist is one row of the artists dimension.
type Artist struct {
	ArtistID  string
	Name      string
	Location  *string
	Latitude  *float64
	Longitude *float64
}

// Values returns the artist fields in insert order: artist_id, name, location, latitude, longitude.
func (a Artist) Values() []any {
	return []any{a.ArtistID, a.Name, a.Location, a.Latitude, a.Longitude}
}

// User is an upsert candidate for the users dimension.
// On conflict only Level is overwritten.
type User struct {
	UserID    string
	FirstName string
	LastName  string
	Gender    string
	Level     string
}

// Values returns the user fields in insert order.
func (u User) Values() []any {
	return []any{u.UserID, u.FirstName, u.LastName, u.Gender, u.Level}
}

// TimeRow is one row of the time dimension, keyed by StartTime.
type TimeRow struct {
	StartTime time.Time
	Hour      int
	Day       int
	Month     int
	Year      int
	Weekday   string
}

// Values returns the time fields in column order of the time table.
func (r TimeRow) Values() []any {
	return []any{r.StartTime, r.Hour, r.Day, r.Month, r.Year, r.Weekday}
}

// Songplay is one fact row. SongID and ArtistID are nil when the lookup missed.
type Songplay struct {
	StartTime time.Time
	UserID    string
	Level     string
	SongID    *string
	ArtistID  *string
	SessionID int64
	Location  *string
	UserAgent *string
}

// Values returns the songplay fields in COPY column order:
// start_time, user_id, level, song_id, artist_id, session_id, location, user_agent.
func (p Songplay) Values() []any {
	return []any{p.StartTime, p.UserID, p.Level, p.SongID, p.ArtistID, p.SessionID, p.Location, p.UserAgent}
}

// LogBatch is the transformed content of one log document.
// The three slices are parallel to the retained events, in encounter order.
type LogBatch struct {
	Times     []TimeRow
	Users     []User
	Songplays []Songplay
}

// CommitMode selects the unit-of-work boundary of a run.
type CommitMode string

const (
	// CommitPerFile commits after every file; a failure leaves earlier files durable.
	CommitPerFile CommitMode = "per-file"

	// CommitBatch runs the whole batch in one transaction; a failure leaves nothing behind.
	CommitBatch CommitMode = "batch"
)

// ParseCommitMode converts a user-supplied value into a CommitMode.
// An empty value yields CommitPerFile.
func ParseCommitMode(s string) (CommitMode, error) {
	switch CommitMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", CommitPerFile:
		return CommitPerFile, nil
	case CommitBatch:
		return CommitBatch, nil
	default:
		return "", fmt.Errorf("unknown commit mode %q (want %q or %q): %w", s, CommitPerFile, CommitBatch, ErrInvalidConfig)
	}
}

// RunConfig contains the parameters of one ETL run.
type RunConfig struct {
	// SongDataDir is the root of the song-metadata documents, processed first.
	SongDataDir string

	// LogDataDir is the root of the event-log documents, processed second.
	LogDataDir string

	// Suffix selects documents during discovery (".json" when empty).
	Suffix string

	// CommitMode selects per-file or whole-batch transactions.
	CommitMode CommitMode
}

// Validate checks if the RunConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *RunConfig) Validate() error {
	var errs []error

	if c.SongDataDir == "" {
		errs = append(errs, fmt.Errorf("SongDataDir is required: %w", ErrInvalidConfig))
	}

	if c.LogDataDir == "" {
		errs = append(errs, fmt.Errorf("LogDataDir is required: %w", ErrInvalidConfig))
	}

	if c.Suffix == "" {
		c.Suffix = DefaultSuffix
	}

	if c.CommitMode == "" {
		c.CommitMode = CommitPerFile
	}
	if c.CommitMode != CommitPerFile && c.CommitMode != CommitBatch {
		errs = append(errs, fmt.Errorf("unknown commit mode %q: %w", c.CommitMode, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// FamilySummary reports the progress of one document family.
type FamilySummary struct {
	Family         string
	Root           string
	FilesFound     int
	FilesProcessed int
}

// RunSummary reports what a run did. It is returned even when the run fails,
// describing the work committed before the failure.
type RunSummary struct {
	RunID      uuid.UUID
	CommitMode CommitMode
	StartedAt  time.Time
	Duration   time.Duration
	Families   []FamilySummary

	Songs     int64
	Artists   int64
	Users     int64
	TimeRows  int64
	Songplays int64
}

// FilesProcessed returns the number of files committed across all families.
func (s RunSummary) FilesProcessed() int {
	n := 0
	for _, f := range s.Families {
		n += f.FilesProcessed
	}
	return n
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWSRegion is used when AuthMethod is AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name ("project:region:instance")
	// used when AuthMethod is AuthMethodGoogleIAM.
	GoogleInstance string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod converts a config or flag value ("standard", "aws", "google", "azure") into an AuthMethod.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam", "gcp":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("%q: %w", s, ErrUnsupportedAuthMethod)
	}
}
