// Package transform reshapes decoded documents into dimension and fact rows.
package transform

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/sparkify-etl/internal/records"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

// ExtractSong splits a song-metadata document into its song and artist rows.
func ExtractSong(doc records.SongDocument) (sparkify.Song, sparkify.Artist) {
	song := sparkify.Song{
		SongID:   doc.SongID,
		ArtistID: doc.ArtistID,
		Title:    doc.Title,
		Year:     doc.Year,
		Duration: doc.Duration,
	}
	artist := sparkify.Artist{
		ArtistID:  doc.ArtistID,
		Name:      doc.ArtistName,
		Location:  doc.ArtistLocation,
		Latitude:  doc.ArtistLatitude,
		Longitude: doc.ArtistLongitude,
	}
	return song, artist
}

// TimeRowFor derives the calendar fields of an epoch-millisecond timestamp, in UTC.
func TimeRowFor(ts int64) sparkify.TimeRow {
	t := time.UnixMilli(ts).UTC()
	return sparkify.TimeRow{
		StartTime: t,
		Hour:      t.Hour(),
		Day:       t.Day(),
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   t.Weekday().String(),
	}
}

// TransformLog keeps the NextSong events of a log document and builds, per
// retained event and in encounter order, one time row, one user candidate and
// one songplay. Song and artist ids are resolved through lookup; a miss leaves
// both nil. Time rows are not deduplicated here.
func TransformLog(ctx context.Context, lookup sparkify.SongLookup, events []records.LogEvent) (sparkify.LogBatch, error) {
	var batch sparkify.LogBatch

	for i := range events {
		ev := &events[i]
		if ev.Page != sparkify.NextSongPage {
			continue
		}

		tr := TimeRowFor(ev.TS)
		batch.Times = append(batch.Times, tr)

		user := sparkify.User{
			UserID:    string(ev.UserID),
			FirstName: deref(ev.FirstName),
			LastName:  deref(ev.LastName),
			Gender:    deref(ev.Gender),
			Level:     deref(ev.Level),
		}
		batch.Users = append(batch.Users, user)

		var length float64
		if ev.Length != nil {
			length = *ev.Length
		}
		songID, artistID, err := lookup.LookupSong(ctx, deref(ev.Song), deref(ev.Artist), length)
		if err != nil {
			return sparkify.LogBatch{}, fmt.Errorf("lookup %q by %q: %w", deref(ev.Song), deref(ev.Artist), err)
		}

		batch.Songplays = append(batch.Songplays, sparkify.Songplay{
			StartTime: tr.StartTime,
			UserID:    user.UserID,
			Level:     user.Level,
			SongID:    songID,
			ArtistID:  artistID,
			SessionID: ev.SessionID,
			Location:  ev.Location,
			UserAgent: ev.UserAgent,
		})
	}

	return batch, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
