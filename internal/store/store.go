// Package store writes transformed rows into the star schema.
//
// A Store is bound to one transaction, the unit of work of the batch driver.
// Songs, artists and users go through parameterized statements. Time rows are
// staged into a temporary table with COPY and merged with ON CONFLICT DO
// NOTHING; songplays are appended with a single text-format COPY.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/sparkify-etl/internal/copytext"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

// LoadStats counts the rows a LoadLogBatch call wrote.
type LoadStats struct {
	TimeRowsStaged  int64
	TimeRowsMerged  int64
	UsersUpserted   int64
	SongplaysCopied int64
}

// Store performs the pipeline's writes and lookups inside one transaction.
type Store struct {
	tx pgx.Tx
}

// New binds a Store to tx. Panics if tx is nil.
func New(tx pgx.Tx) *Store {
	if tx == nil {
		panic("tx cannot be nil")
	}
	return &Store{tx: tx}
}

// InsertSong inserts one song; an existing song_id is left untouched.
// It returns the number of rows inserted (0 or 1).
func (s *Store) InsertSong(ctx context.Context, song sparkify.Song) (int64, error) {
	tag, err := s.tx.Exec(ctx, songInsert, song.Values()...)
	if err != nil {
		return 0, loadErr(fmt.Sprintf("insert song %s", song.SongID), err)
	}
	return tag.RowsAffected(), nil
}

// InsertArtist inserts one artist; an existing artist_id is left untouched.
func (s *Store) InsertArtist(ctx context.Context, artist sparkify.Artist) (int64, error) {
	tag, err := s.tx.Exec(ctx, artistInsert, artist.Values()...)
	if err != nil {
		return 0, loadErr(fmt.Sprintf("insert artist %s", artist.ArtistID), err)
	}
	return tag.RowsAffected(), nil
}

// LookupSong resolves a played song by exact title, artist name and duration.
func (s *Store) LookupSong(ctx context.Context, title, artist string, duration float64) (*string, *string, error) {
	var songID, artistID string
	err := s.tx.QueryRow(ctx, songSelect, title, artist, duration).Scan(&songID, &artistID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, loadErr("select song", err)
	}
	return &songID, &artistID, nil
}

// LoadLogBatch writes one log document's rows: the time merge first, then the
// user upserts, then the songplay append, so every songplay's start_time is
// present in time once the call returns.
func (s *Store) LoadLogBatch(ctx context.Context, batch sparkify.LogBatch) (LoadStats, error) {
	var stats LoadStats

	staged, merged, err := s.mergeTime(ctx, batch.Times)
	if err != nil {
		return stats, err
	}
	stats.TimeRowsStaged, stats.TimeRowsMerged = staged, merged

	if stats.UsersUpserted, err = s.upsertUsers(ctx, batch.Users); err != nil {
		return stats, err
	}

	if stats.SongplaysCopied, err = s.copySongplays(ctx, batch.Songplays); err != nil {
		return stats, err
	}

	return stats, nil
}

func (s *Store) mergeTime(ctx context.Context, rows []sparkify.TimeRow) (staged, merged int64, err error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}

	if _, err := s.tx.Exec(ctx, timeTempTable); err != nil {
		return 0, 0, loadErr("create tmp_table", err)
	}

	var enc copytext.Encoder
	for _, r := range rows {
		enc.WriteRow(r.Values()...)
	}
	tag, err := s.tx.Conn().PgConn().CopyFrom(ctx, enc.Reader(), timeTempCopy)
	if err != nil {
		return 0, 0, loadErr("copy time rows into tmp_table", err)
	}
	if staged, err = checkCopied("copy time rows into tmp_table", &enc, tag); err != nil {
		return staged, 0, err
	}

	tag, err = s.tx.Exec(ctx, timeMerge)
	if err != nil {
		return staged, 0, loadErr("merge time rows", err)
	}
	merged = tag.RowsAffected()

	if _, err := s.tx.Exec(ctx, timeTempDrop); err != nil {
		return staged, merged, loadErr("drop tmp_table", err)
	}

	return staged, merged, nil
}

// upsertUsers queues one upsert per candidate. A batch executes its statements
// in queue order, so the last event's level is the one that sticks.
func (s *Store) upsertUsers(ctx context.Context, users []sparkify.User) (int64, error) {
	if len(users) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, u := range users {
		batch.Queue(userUpsert, u.Values()...)
	}

	results := s.tx.SendBatch(ctx, batch)

	var n int64
	for i := range users {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return n, loadErr(fmt.Sprintf("upsert user %s", users[i].UserID), err)
		}
		n += tag.RowsAffected()
	}

	if err := results.Close(); err != nil {
		return n, loadErr("complete user upsert batch", err)
	}
	return n, nil
}

func (s *Store) copySongplays(ctx context.Context, plays []sparkify.Songplay) (int64, error) {
	if len(plays) == 0 {
		return 0, nil
	}

	var enc copytext.Encoder
	for _, p := range plays {
		enc.WriteRow(p.Values()...)
	}

	tag, err := s.tx.Conn().PgConn().CopyFrom(ctx, enc.Reader(), songplayCopy)
	if err != nil {
		return 0, loadErr("copy songplays", err)
	}
	return checkCopied("copy songplays", &enc, tag)
}

// checkCopied returns the row count of a COPY and fails when the server
// accepted fewer or more rows than enc holds.
func checkCopied(op string, enc *copytext.Encoder, tag pgconn.CommandTag) (int64, error) {
	n := tag.RowsAffected()
	if n != int64(enc.Rows()) {
		return n, loadErr(op, fmt.Errorf("server copied %d of %d rows", n, enc.Rows()))
	}
	return n, nil
}

// loadErr tags err with sparkify.ErrLoadFailed while keeping it reachable
// through errors.As, e.g. for *pgconn.PgError.
func loadErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, sparkify.ErrLoadFailed, err)
}

var _ sparkify.SongLookup = (*Store)(nil)
