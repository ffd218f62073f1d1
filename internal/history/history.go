// Package history keeps an SQLite audit trail of completed graveyard
// operations. It is informational only: nothing in rip reads it back to
// decide what to do.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Actions recorded in the history.
const (
	ActionBury      = "bury"
	ActionResurrect = "resurrect"
	ActionPrune     = "prune"
)

// Event is one completed (or failed) item of an operation.
type Event struct {
	ID           int64
	RunID        string
	Action       string
	OriginalPath string
	TrashedPath  string
	Kind         string
	SizeBytes    int64
	At           time.Time
	Error        string
}

// Recorder stores history events.
type Recorder interface {
	Record(ctx context.Context, events ...Event) error
}

// Nop discards every event.
type Nop struct{}

// Record does nothing.
func (Nop) Record(context.Context, ...Event) error { return nil }

// DB manages the SQLite history database.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at dbPath.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// _loc=auto parses DATETIME columns back into time.Time
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL (check permissions on %s): %w", dbPath, err)
	}

	h := &DB{db: db}
	if err = h.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return h, nil
}

func (h *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		action TEXT NOT NULL,
		original_path TEXT NOT NULL,
		trashed_path TEXT NOT NULL,
		kind TEXT NOT NULL,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		at DATETIME NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_events_at ON events(at);
	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id);
	`
	_, err := h.db.Exec(schema)
	return err
}

// Record inserts events in one transaction.
func (h *DB) Record(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO events (run_id, action, original_path, trashed_path, kind, size_bytes, at, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx,
			e.RunID, e.Action, e.OriginalPath, e.TrashedPath, e.Kind, e.SizeBytes, e.At.UTC(), e.Error,
		); err != nil {
			return fmt.Errorf("failed to record %s of %s: %w", e.Action, e.OriginalPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (h *DB) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.QueryContext(ctx, `
	SELECT id, run_id, action, original_path, trashed_path, kind, size_bytes, at, error
	FROM events
	ORDER BY at DESC, id DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RunID, &e.Action, &e.OriginalPath, &e.TrashedPath,
			&e.Kind, &e.SizeBytes, &e.At, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the database.
func (h *DB) Close() error {
	return h.db.Close()
}
