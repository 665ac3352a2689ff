package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/sparkify-etl/internal/store"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

// fakeTx is a pgx.Tx whose Commit and Rollback are observable.
// Any other method panics through the nil embedded interface.
type fakeTx struct {
	pgx.Tx
	id        int
	db        *fakeDB
	done      bool
	commitErr error
}

func (t *fakeTx) Commit(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	if t.commitErr != nil {
		return t.commitErr
	}
	t.db.commit(t.id)
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.db.rollback(t.id)
	return nil
}

// fakeDB stands in for the connection and the store: writes are staged per
// transaction and become visible on commit.
type fakeDB struct {
	mu        sync.Mutex
	nextID    int
	beginErr  error
	commitErr error

	staged    map[int][]string
	committed []string
	rollbacks int
	commits   int

	songs   map[string]bool
	failOn  string // InsertSong fails for this song id
	lookups map[string][2]string
}

func newFakeDB() *fakeDB {
	return &fakeDB{staged: map[int][]string{}, songs: map[string]bool{}, lookups: map[string][2]string{}}
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	db.nextID++
	return &fakeTx{id: db.nextID, db: db, commitErr: db.commitErr}, nil
}

func (db *fakeDB) commit(id int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.commits++
	db.committed = append(db.committed, db.staged[id]...)
	delete(db.staged, id)
}

func (db *fakeDB) rollback(id int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.rollbacks++
	delete(db.staged, id)
}

func (db *fakeDB) stage(id int, write string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.staged[id] = append(db.staged[id], write)
}

func (db *fakeDB) factory(tx pgx.Tx) Loader {
	return &fakeLoader{db: db, txID: tx.(*fakeTx).id}
}

type fakeLoader struct {
	db   *fakeDB
	txID int
}

func (l *fakeLoader) InsertSong(_ context.Context, song sparkify.Song) (int64, error) {
	if song.SongID == l.db.failOn {
		return 0, fmt.Errorf("insert song %s: %w: %w", song.SongID, sparkify.ErrLoadFailed, errors.New("boom"))
	}
	l.db.stage(l.txID, "song:"+song.SongID)
	return 1, nil
}

func (l *fakeLoader) InsertArtist(_ context.Context, artist sparkify.Artist) (int64, error) {
	l.db.stage(l.txID, "artist:"+artist.ArtistID)
	return 1, nil
}

func (l *fakeLoader) LookupSong(_ context.Context, title, artist string, _ float64) (*string, *string, error) {
	ids, ok := l.db.lookups[title+"|"+artist]
	if !ok {
		return nil, nil, nil
	}
	return &ids[0], &ids[1], nil
}

func (l *fakeLoader) LoadLogBatch(_ context.Context, batch sparkify.LogBatch) (store.LoadStats, error) {
	for _, sp := range batch.Songplays {
		l.db.stage(l.txID, "songplay:"+sp.UserID)
	}
	return store.LoadStats{
		TimeRowsStaged:  int64(len(batch.Times)),
		TimeRowsMerged:  int64(len(batch.Times)),
		UsersUpserted:   int64(len(batch.Users)),
		SongplaysCopied: int64(len(batch.Songplays)),
	}, nil
}

type capturingLogger struct {
	mu    sync.Mutex
	infos []string
}

func (l *capturingLogger) Verbose(string, ...interface{}) {}
func (l *capturingLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}
func (l *capturingLogger) Error(string, ...interface{}) {}

type capturingRecorder struct {
	summaries []sparkify.RunSummary
	errs      []error
}

func (r *capturingRecorder) RecordRun(summary sparkify.RunSummary, runErr error) {
	r.summaries = append(r.summaries, summary)
	r.errs = append(r.errs, runErr)
}
