// Package schema creates and resets the star schema the pipeline loads into.
//
// The tables are created with CREATE TABLE IF NOT EXISTS, so Create is safe to
// run before every load. Reset drops and recreates them and is only reached
// after an approver has confirmed it.
package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tables lists the star schema tables in creation order.
var Tables = []string{"songplays", "users", "songs", "artists", "time"}

var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS songplays (
	songplay_id SERIAL PRIMARY KEY,
	start_time  TIMESTAMP NOT NULL,
	user_id     VARCHAR NOT NULL,
	level       VARCHAR,
	song_id     VARCHAR,
	artist_id   VARCHAR,
	session_id  INT,
	location    VARCHAR,
	user_agent  VARCHAR
)`,
	`CREATE TABLE IF NOT EXISTS users (
	user_id    VARCHAR PRIMARY KEY,
	first_name VARCHAR,
	last_name  VARCHAR,
	gender     VARCHAR,
	level      VARCHAR
)`,
	`CREATE TABLE IF NOT EXISTS songs (
	song_id   VARCHAR PRIMARY KEY,
	artist_id VARCHAR NOT NULL,
	title     VARCHAR NOT NULL,
	year      INT,
	duration  DOUBLE PRECISION NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS artists (
	artist_id VARCHAR PRIMARY KEY,
	name      VARCHAR NOT NULL,
	location  VARCHAR,
	latitude  DOUBLE PRECISION,
	longitude DOUBLE PRECISION
)`,
	`CREATE TABLE IF NOT EXISTS time (
	start_time TIMESTAMP PRIMARY KEY,
	hour       INT,
	day        INT,
	month      INT,
	year       INT,
	weekday    VARCHAR
)`,
}

// Conn is the subset of *pgx.Conn and pgx.Tx the schema manager uses.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Manager implements schema lifecycle operations.
// Stateless and safe for concurrent use; thread safety depends on the injected Conn.
type Manager struct{}

// New creates a new schema Manager.
func New() *Manager {
	return &Manager{}
}

// Create creates every missing table.
func (m *Manager) Create(ctx context.Context, conn Conn) error {
	for i, stmt := range createStatements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", Tables[i], err)
		}
	}
	return nil
}

// Drop drops every table of the schema.
func (m *Manager) Drop(ctx context.Context, conn Conn) error {
	for _, table := range Tables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{table}.Sanitize())
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}

// Reset drops and recreates the schema, discarding all loaded rows.
func (m *Manager) Reset(ctx context.Context, conn Conn) error {
	if err := m.Drop(ctx, conn); err != nil {
		return err
	}
	return m.Create(ctx, conn)
}

// Counts returns the row count of every table, keyed by table name.
func (m *Manager) Counts(ctx context.Context, conn Conn) (map[string]int64, error) {
	counts := make(map[string]int64, len(Tables))
	for _, table := range Tables {
		var n int64
		query := fmt.Sprintf("SELECT count(*) FROM %s", pgx.Identifier{table}.Sanitize())
		if err := conn.QueryRow(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count rows of %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
