// Package audit records every booking action in a local SQLite file, so
// administrators can reconstruct what happened even when the spreadsheet
// ledger was being rewritten best-effort.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

type Entry struct {
	ID        int64
	UserID    int64
	Action    string // created, rescheduled, canceled, clarification
	When      string // canonical local string, empty for clarifications
	RawText   string // the user's original date expression
	CreatedAt time.Time
}

type Log struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func Open(path string, logger *zerolog.Logger) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect audit db: %w", err)
	}

	l := &Log{db: db, logger: logger}
	if err := l.createTable(); err != nil {
		return nil, fmt.Errorf("create audit table: %w", err)
	}
	logger.Info().Str("path", path).Msg("audit log opened")
	return l, nil
}

func (l *Log) createTable() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS booking_actions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			when_value TEXT NOT NULL DEFAULT '',
			raw_text TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_booking_actions_user ON booking_actions(user_id);
	`)
	return err
}

// Record appends one action. Audit failures are logged and swallowed by
// callers; the trail must never block a booking.
func (l *Log) Record(ctx context.Context, e Entry) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO booking_actions (user_id, action, when_value, raw_text, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Action, e.When, e.RawText, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries, most recent first.
func (l *Log) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, user_id, action, when_value, raw_text, created_at
		 FROM booking_actions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.When, &e.RawText, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (l *Log) Close() error {
	return l.db.Close()
}
