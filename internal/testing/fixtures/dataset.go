package fixtures

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/vvka-141/sparkify-etl/internal/files/filesystem"
)

// Song is a song-metadata document as it appears on disk.
type Song struct {
	NumSongs        int      `json:"num_songs"`
	ArtistID        string   `json:"artist_id"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
	ArtistLocation  string   `json:"artist_location"`
	ArtistName      string   `json:"artist_name"`
	SongID          string   `json:"song_id"`
	Title           string   `json:"title"`
	Duration        float64  `json:"duration"`
	Year            int      `json:"year"`
}

// Event is one event-log record as it appears on disk.
// Pointer fields marshal as null when unset.
type Event struct {
	Artist    *string  `json:"artist"`
	Auth      string   `json:"auth"`
	FirstName *string  `json:"firstName"`
	Gender    *string  `json:"gender"`
	LastName  *string  `json:"lastName"`
	Length    *float64 `json:"length"`
	Level     string   `json:"level"`
	Location  *string  `json:"location"`
	Method    string   `json:"method"`
	Page      string   `json:"page"`
	SessionID int64    `json:"sessionId"`
	Song      *string  `json:"song"`
	Status    int      `json:"status"`
	TS        int64    `json:"ts"`
	UserAgent *string  `json:"userAgent"`
	UserID    string   `json:"userId"`
}

// NextSong returns a populated NextSong event for userID playing title by artist.
func NextSong(ts int64, userID, level, title, artist string, length float64) Event {
	return Event{
		Artist:    &artist,
		Auth:      "Logged In",
		FirstName: ptr("Sylvie"),
		Gender:    ptr("F"),
		LastName:  ptr("Cruz"),
		Length:    &length,
		Level:     level,
		Location:  ptr("Washington-Arlington-Alexandria, DC-VA-MD-WV"),
		Method:    "PUT",
		Page:      "NextSong",
		SessionID: 345,
		Song:      &title,
		Status:    200,
		TS:        ts,
		UserAgent: ptr(`"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_4)"`),
		UserID:    userID,
	}
}

// PageView returns a non-NextSong event, which the pipeline ignores.
func PageView(ts int64, page string) Event {
	return Event{Auth: "Logged Out", Level: "free", Method: "GET", Page: page, SessionID: 38, Status: 200, TS: ts}
}

func ptr(s string) *string { return &s }

// DatasetBuilder provides a fluent API for building input document trees
// for discovery, driver and end-to-end tests.
//
// Example usage:
//
//	fs := fixtures.NewDatasetBuilder().
//	    AddSong("song_data/A/A/A/S1.json", fixtures.Song{SongID: "S1", ...}).
//	    AddLog("log_data/2018/11/2018-11-01-events.json", fixtures.NextSong(...)).
//	    BuildMemory("/data")
type DatasetBuilder struct {
	files map[string]string // path -> content
}

// NewDatasetBuilder creates an empty builder.
func NewDatasetBuilder() *DatasetBuilder {
	return &DatasetBuilder{files: make(map[string]string)}
}

// AddSong adds a one-record song document.
func (b *DatasetBuilder) AddSong(filePath string, song Song) *DatasetBuilder {
	b.files[filePath] = mustJSON(song) + "\n"
	return b
}

// AddLog adds an event-log document with one line per event.
func (b *DatasetBuilder) AddLog(filePath string, events ...Event) *DatasetBuilder {
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, mustJSON(ev))
	}
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	b.files[filePath] = content
	return b
}

// AddRaw adds a file with arbitrary content, e.g. a malformed document.
func (b *DatasetBuilder) AddRaw(filePath, content string) *DatasetBuilder {
	b.files[filePath] = content
	return b
}

// Paths returns the relative paths added so far, sorted.
func (b *DatasetBuilder) Paths() []string {
	paths := make([]string, 0, len(b.files))
	for p := range b.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// BuildMemory returns an in-memory filesystem rooted at root holding every file.
func (b *DatasetBuilder) BuildMemory(root string) *filesystem.MemoryFileSystem {
	mfs := filesystem.NewMemoryFileSystem(root)
	for p, content := range b.files {
		mfs.AddFile(path.Clean(p), content)
	}
	return mfs
}

// WriteTo writes every file below dir on disk.
func (b *DatasetBuilder) WriteTo(t *testing.T, dir string) {
	t.Helper()
	for p, content := range b.files {
		full := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
	}
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
