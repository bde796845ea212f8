// Package store keeps the history of extraction runs and their candidate
// records in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dgallion1/candgest/internal/extraction"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	unit_code     TEXT NOT NULL,
	filename      TEXT NOT NULL,
	content_hash  TEXT NOT NULL,
	output_path   TEXT NOT NULL,
	pages         INTEGER NOT NULL,
	lines         INTEGER NOT NULL,
	dropped       INTEGER NOT NULL,
	record_count  INTEGER NOT NULL,
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_hash ON runs(unit_code, content_hash);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS records (
	run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq           INTEGER NOT NULL,
	unit_code     TEXT NOT NULL,
	body          TEXT NOT NULL,
	type          TEXT NOT NULL,
	sigla         TEXT NOT NULL,
	symbol        TEXT NOT NULL,
	list_name     TEXT NOT NULL,
	order_number  INTEGER NOT NULL,
	name          TEXT NOT NULL,
	party         TEXT NOT NULL,
	independent   INTEGER NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Run is one completed extraction.
type Run struct {
	ID          string    `json:"run_id"`
	UnitCode    string    `json:"unit_code"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash"`
	OutputPath  string    `json:"output_path"`
	Pages       int       `json:"pages"`
	Lines       int       `json:"lines"`
	Dropped     int       `json:"dropped"`
	Records     int       `json:"records"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a run and its records in one transaction.
func (s *Store) SaveRun(ctx context.Context, run Run, records []extraction.Record) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, unit_code, filename, content_hash, output_path, pages, lines, dropped, record_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.UnitCode, run.Filename, run.ContentHash, run.OutputPath,
		run.Pages, run.Lines, run.Dropped, len(records), run.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records
		(run_id, seq, unit_code, body, type, sigla, symbol, list_name, order_number, name, party, independent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare records: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx, run.ID, i,
			r.UnitCode, r.Body, r.Type, r.Sigla, r.Symbol, r.ListName,
			r.Order, r.Name, r.Party, r.Independent)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const runColumns = `id, unit_code, filename, content_hash, output_path, pages, lines, dropped, record_count, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var created int64
	err := row.Scan(&r.ID, &r.UnitCode, &r.Filename, &r.ContentHash, &r.OutputPath,
		&r.Pages, &r.Lines, &r.Dropped, &r.Records, &created)
	if err != nil {
		return Run{}, err
	}
	r.CreatedAt = time.UnixMilli(created).UTC()
	return r, nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first. An empty unitCode lists all
// units; limit <= 0 means 100.
func (s *Store) ListRuns(ctx context.Context, unitCode string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}
	if unitCode != "" {
		query += ` WHERE unit_code = ?`
		args = append(args, unitCode)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Records returns the records of a run in emission order.
func (s *Store) Records(ctx context.Context, runID string) ([]extraction.Record, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT unit_code, body, type, sigla, symbol, list_name,
		order_number, name, party, independent FROM records WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	recs := []extraction.Record{}
	for rows.Next() {
		var r extraction.Record
		if err := rows.Scan(&r.UnitCode, &r.Body, &r.Type, &r.Sigla, &r.Symbol, &r.ListName,
			&r.Order, &r.Name, &r.Party, &r.Independent); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// DeleteRun removes a run and its records.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByHash returns the newest run for unitCode whose rendered content
// hashed to hash.
func (s *Store) FindByHash(ctx context.Context, unitCode, hash string) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs
		WHERE unit_code = ? AND content_hash = ? ORDER BY created_at DESC LIMIT 1`, unitCode, hash)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("find by hash: %w", err)
	}
	return r, true, nil
}
