// Package services orchestrates ETL runs and schema maintenance on top of the
// lower-level packages.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/sparkify-etl/internal/metrics"
	"github.com/vvka-141/sparkify-etl/internal/records"
	"github.com/vvka-141/sparkify-etl/internal/store"
	"github.com/vvka-141/sparkify-etl/internal/transform"
	"github.com/vvka-141/sparkify-etl/pkg/sparkify"
)

// Family names used in logs and summaries.
const (
	FamilySong = "song"
	FamilyLog  = "log"
)

// Beginner opens transactions. *pgx.Conn satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Loader is the transactional write surface a file processor needs.
type Loader interface {
	sparkify.SongLookup
	InsertSong(ctx context.Context, song sparkify.Song) (int64, error)
	InsertArtist(ctx context.Context, artist sparkify.Artist) (int64, error)
	LoadLogBatch(ctx context.Context, batch sparkify.LogBatch) (store.LoadStats, error)
}

// LoaderFactory binds a Loader to a transaction.
type LoaderFactory func(tx pgx.Tx) Loader

func defaultLoaderFactory(tx pgx.Tx) Loader {
	return store.New(tx)
}

// processFunc turns one file's content into rows written through loader.
type processFunc func(ctx context.Context, loader Loader, path string, content []byte) (rowCounts, error)

type rowCounts struct {
	songs, artists, users, timeRows, songplays int64
}

func (c *rowCounts) add(o rowCounts) {
	c.songs += o.songs
	c.artists += o.artists
	c.users += o.users
	c.timeRows += o.timeRows
	c.songplays += o.songplays
}

// BatchService runs the ETL over a single connection.
// Thread-Safety: NOT safe for concurrent Run calls on the same instance.
type BatchService struct {
	conn      Beginner
	scanner   sparkify.FileScanner
	logger    sparkify.Logger
	recorder  sparkify.MetricsRecorder
	newLoader LoaderFactory
	now       func() time.Time
}

// NewBatchService creates a BatchService. A nil recorder records nothing.
// Panics if conn, scanner or logger is nil.
func NewBatchService(conn Beginner, scanner sparkify.FileScanner, logger sparkify.Logger, recorder sparkify.MetricsRecorder) *BatchService {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if scanner == nil {
		panic("scanner cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if recorder == nil {
		recorder = metrics.NewRecorder(nil, logger)
	}
	return &BatchService{
		conn:      conn,
		scanner:   scanner,
		logger:    logger,
		recorder:  recorder,
		newLoader: defaultLoaderFactory,
		now:       time.Now,
	}
}

// WithLoaderFactory replaces the store-backed Loader, mainly for tests.
func (s *BatchService) WithLoaderFactory(f LoaderFactory) *BatchService {
	s.newLoader = f
	return s
}

// Run loads the song family, then the log family.
//
// In per-file mode every file is its own transaction: a failing file is
// rolled back, earlier files stay committed and the run stops. In batch mode
// the whole run is one transaction. Nothing is retried.
//
// The returned summary describes committed work only and is valid on error.
func (s *BatchService) Run(ctx context.Context, cfg sparkify.RunConfig) (summary sparkify.RunSummary, err error) {
	if err := cfg.Validate(); err != nil {
		return sparkify.RunSummary{}, fmt.Errorf("invalid run configuration: %w", err)
	}

	summary = sparkify.RunSummary{
		RunID:      uuid.New(),
		CommitMode: cfg.CommitMode,
		StartedAt:  s.now(),
	}
	defer func() {
		summary.Duration = s.now().Sub(summary.StartedAt)
		s.recorder.RecordRun(summary, err)
	}()

	s.logger.Verbose("run %s: commit mode %s", summary.RunID, cfg.CommitMode)

	families := []struct {
		name    string
		root    string
		process processFunc
	}{
		{FamilySong, cfg.SongDataDir, processSongFile},
		{FamilyLog, cfg.LogDataDir, processLogFile},
	}

	u := &unitOfWork{svc: s, mode: cfg.CommitMode, summary: &summary}
	defer u.abort(ctx)

	for _, fam := range families {
		if err := u.runFamily(ctx, fam.name, fam.root, cfg.Suffix, fam.process); err != nil {
			return summary, err
		}
	}
	if err := u.finish(ctx); err != nil {
		return summary, err
	}
	return summary, nil
}

// unitOfWork owns the open transaction and the counts it has not committed yet.
type unitOfWork struct {
	svc     *BatchService
	mode    sparkify.CommitMode
	summary *sparkify.RunSummary

	tx      pgx.Tx
	loader  Loader
	pending rowCounts
	files   map[int]int // summary.Families index -> uncommitted files
}

func (u *unitOfWork) runFamily(ctx context.Context, family, root, suffix string, process processFunc) error {
	s := u.svc
	paths, err := s.scanner.Discover(root, suffix)
	if err != nil {
		return fmt.Errorf("discover %s files: %w: %w", family, sparkify.ErrInvalidConfig, err)
	}

	u.summary.Families = append(u.summary.Families, sparkify.FamilySummary{
		Family:     family,
		Root:       root,
		FilesFound: len(paths),
	})
	famIdx := len(u.summary.Families) - 1
	s.logger.Info("%d files found in %s", len(paths), root)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		content, err := s.scanner.ReadFile(path)
		if err != nil {
			return err
		}
		if err := u.begin(ctx); err != nil {
			return err
		}

		counts, err := process(ctx, u.loader, path, content)
		if err != nil {
			return withPath(path, err)
		}
		u.pending.add(counts)
		if u.files == nil {
			u.files = map[int]int{}
		}
		u.files[famIdx]++

		if u.mode == sparkify.CommitPerFile {
			if err := u.commit(ctx); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		s.logger.Info("%d/%d files processed.", i+1, len(paths))
	}
	return nil
}

// begin opens a transaction unless one is already open (batch mode).
func (u *unitOfWork) begin(ctx context.Context) error {
	if u.tx != nil {
		return nil
	}
	tx, err := u.svc.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w: %w", sparkify.ErrLoadFailed, err)
	}
	u.tx = tx
	u.loader = u.svc.newLoader(tx)
	return nil
}

func (u *unitOfWork) commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Commit(ctx)
	u.tx, u.loader = nil, nil
	if err != nil {
		u.discard()
		return fmt.Errorf("commit: %w: %w", sparkify.ErrLoadFailed, err)
	}

	u.summary.Songs += u.pending.songs
	u.summary.Artists += u.pending.artists
	u.summary.Users += u.pending.users
	u.summary.TimeRows += u.pending.timeRows
	u.summary.Songplays += u.pending.songplays
	for idx, n := range u.files {
		u.summary.Families[idx].FilesProcessed += n
	}
	u.discard()
	return nil
}

// finish commits the run-wide transaction of batch mode.
func (u *unitOfWork) finish(ctx context.Context) error {
	return u.commit(ctx)
}

// abort rolls back whatever is still open. It runs on every exit path and
// is a no-op after a successful commit.
func (u *unitOfWork) abort(ctx context.Context) {
	if u.tx == nil {
		return
	}
	if err := u.tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		u.svc.logger.Error("rollback failed: %v", err)
	}
	u.tx, u.loader = nil, nil
	u.discard()
}

func (u *unitOfWork) discard() {
	u.pending = rowCounts{}
	u.files = nil
}

// withPath names the failing file unless err already does.
func withPath(path string, err error) error {
	var perr *records.ParseError
	if errors.As(err, &perr) {
		return err
	}
	return fmt.Errorf("%s: %w", path, err)
}

func processSongFile(ctx context.Context, loader Loader, path string, content []byte) (rowCounts, error) {
	doc, err := records.ParseSongDocument(path, content)
	if err != nil {
		return rowCounts{}, err
	}

	song, artist := transform.ExtractSong(doc)
	songs, err := loader.InsertSong(ctx, song)
	if err != nil {
		return rowCounts{}, err
	}
	artists, err := loader.InsertArtist(ctx, artist)
	if err != nil {
		return rowCounts{}, err
	}
	return rowCounts{songs: songs, artists: artists}, nil
}

func processLogFile(ctx context.Context, loader Loader, path string, content []byte) (rowCounts, error) {
	events, err := records.ParseLogDocument(path, content)
	if err != nil {
		return rowCounts{}, err
	}

	batch, err := transform.TransformLog(ctx, loader, events)
	if err != nil {
		return rowCounts{}, err
	}

	stats, err := loader.LoadLogBatch(ctx, batch)
	if err != nil {
		return rowCounts{}, err
	}
	return rowCounts{
		users:     stats.UsersUpserted,
		timeRows:  stats.TimeRowsMerged,
		songplays: stats.SongplaysCopied,
	}, nil
}
