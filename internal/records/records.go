package records

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// SongDocument is the single record of a song-metadata file.
type SongDocument struct {
	SongID          string   `json:"song_id"`
	ArtistID        string   `json:"artist_id"`
	Title           string   `json:"title"`
	Year            *int     `json:"year"`
	Duration        float64  `json:"duration"`
	NumSongs        *int     `json:"num_songs"`
	ArtistName      string   `json:"artist_name"`
	ArtistLocation  *string  `json:"artist_location"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
}

// LogEvent is one record of an event-log file. Only the fields declared in
// schemas/event.json are decoded; the rest of a record is ignored.
type LogEvent struct {
	Artist    *string  `json:"artist"`
	FirstName *string  `json:"firstName"`
	Gender    *string  `json:"gender"`
	LastName  *string  `json:"lastName"`
	Length    *float64 `json:"length"`
	Level     *string  `json:"level"`
	Location  *string  `json:"location"`
	Page      string   `json:"page"`
	SessionID int64    `json:"sessionId"`
	Song      *string  `json:"song"`
	TS        int64    `json:"ts"`
	UserAgent *string  `json:"userAgent"`
	UserID    UserID   `json:"userId"`
}

// UserID accepts both the string and the numeric spelling of userId.
// A null or absent id is the empty string.
type UserID string

func (u *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*u = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UserID(s)
	default:
		n := json.Number(data)
		if _, err := n.Int64(); err != nil {
			return fmt.Errorf("userId %s is not an integer", data)
		}
		*u = UserID(n.String())
	}
	return nil
}

type compiledSchemas struct {
	song  *gojsonschema.Schema
	event *gojsonschema.Schema
}

var loadSchemas = sync.OnceValues(func() (compiledSchemas, error) {
	song, err := compile("song")
	if err != nil {
		return compiledSchemas{}, err
	}
	event, err := compile("event")
	if err != nil {
		return compiledSchemas{}, err
	}
	return compiledSchemas{song: song, event: event}, nil
})

func compile(name string) (*gojsonschema.Schema, error) {
	data, err := schemaSource(name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

// schemaSource returns the embedded JSON schema for a document family ("song" or "event").
func schemaSource(family string) ([]byte, error) {
	return schemaFS.ReadFile("schemas/" + family + ".json")
}

// ParseSongDocument decodes a song-metadata file. The file must hold exactly one record.
func ParseSongDocument(path string, content []byte) (SongDocument, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return SongDocument{}, err
	}

	raws, err := splitRecords(path, content)
	if err != nil {
		return SongDocument{}, err
	}
	if len(raws) != 1 {
		return SongDocument{}, &ParseError{
			Path: path,
			Kind: KindRecordCount,
			Err:  fmt.Errorf("song document must hold exactly one record, found %d", len(raws)),
		}
	}

	var doc SongDocument
	if err := decode(path, 1, schemas.song, raws[0], &doc); err != nil {
		return SongDocument{}, err
	}
	return doc, nil
}

// ParseLogDocument decodes an event-log file. An empty file yields no events.
func ParseLogDocument(path string, content []byte) ([]LogEvent, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}

	raws, err := splitRecords(path, content)
	if err != nil {
		return nil, err
	}

	events := make([]LogEvent, 0, len(raws))
	for i, raw := range raws {
		var ev LogEvent
		if err := decode(path, i+1, schemas.event, raw, &ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func splitRecords(path string, content []byte) ([]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var raws []json.RawMessage
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return raws, nil
		}
		if err != nil {
			return nil, &ParseError{Path: path, Record: len(raws) + 1, Kind: KindMalformedJSON, Err: err}
		}
		raws = append(raws, raw)
	}
}

func decode(path string, record int, schema *gojsonschema.Schema, raw json.RawMessage, out any) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ParseError{Path: path, Record: record, Kind: KindMalformedJSON, Err: err}
	}
	if !result.Valid() {
		var field string
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			name := fieldName(desc)
			if field == "" && !strings.HasPrefix(desc.Type(), "condition_") {
				field = name
			}
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return &ParseError{
			Path:   path,
			Record: record,
			Kind:   KindSchema,
			Field:  field,
			Err:    errors.New(strings.Join(msgs, "; ")),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &ParseError{Path: path, Record: record, Kind: KindSchema, Err: err}
	}
	return nil
}

const rootContext = "(root)"

// fieldName reports the offending property. Required-field errors are raised
// on the enclosing object, so the missing property comes from the details.
func fieldName(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			if field == rootContext || field == "" {
				return prop
			}
			return field + "." + prop
		}
	}
	if field == rootContext {
		return ""
	}
	return field
}
