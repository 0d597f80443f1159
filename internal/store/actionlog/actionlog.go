// Package actionlog keeps the operational history next to the JSON snapshot:
// staged actions for budget accounting, and scan cursors.
package actionlog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database used as an append-only action log.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil { return nil, err }
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil { return nil, err }
	db := &DB{sql: d}
	if err := db.migrate(); err != nil { _ = d.Close(); return nil, err }
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS actions (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ts INTEGER NOT NULL,
	  type TEXT NOT NULL,
	  user_id TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_actions_ts ON actions(ts);
	CREATE TABLE IF NOT EXISTS cursors (
	  key TEXT PRIMARY KEY,
	  value TEXT NOT NULL
	);
	`)
	return err
}

// PutAction appends one action (e.g. a staged comment) to the log.
func (d *DB) PutAction(ctx context.Context, ts time.Time, typ, userID string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO actions(ts, type, user_id) VALUES(?,?,?)`, ts.Unix(), typ, userID)
	return err
}

// CountActionsWithin counts actions of a type in [start, end).
func (d *DB) CountActionsWithin(ctx context.Context, start, end time.Time, typ string) (int, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM actions WHERE ts>=? AND ts<? AND type=?`, start.Unix(), end.Unix(), typ)
	var n int
	if err := row.Scan(&n); err != nil { return 0, err }
	return n, nil
}

// Action is one logged action.
type Action struct {
	TS     time.Time
	Type   string
	UserID string
}

// LoadActionsRange returns actions in [start, end), optionally filtered by type.
func (d *DB) LoadActionsRange(ctx context.Context, start, end time.Time, typ string) ([]Action, error) {
	var rows *sql.Rows
	var err error
	if typ == "" {
		rows, err = d.sql.QueryContext(ctx, `SELECT ts, type, user_id FROM actions WHERE ts>=? AND ts<? ORDER BY ts`, start.Unix(), end.Unix())
	} else {
		rows, err = d.sql.QueryContext(ctx, `SELECT ts, type, user_id FROM actions WHERE ts>=? AND ts<? AND type=? ORDER BY ts`, start.Unix(), end.Unix(), typ)
	}
	if err != nil { return nil, err }
	defer rows.Close()
	var out []Action
	for rows.Next() {
		var ts int64
		var typ, user string
		if err := rows.Scan(&ts, &typ, &user); err != nil { return nil, err }
		out = append(out, Action{TS: time.Unix(ts, 0).UTC(), Type: typ, UserID: user})
	}
	return out, rows.Err()
}

// SaveCursor upserts a named cursor value.
func (d *DB) SaveCursor(ctx context.Context, key, value string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO cursors(key, value) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}

// LoadCursor returns the cursor value, or an error when unset.
func (d *DB) LoadCursor(ctx context.Context, key string) (string, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT value FROM cursors WHERE key=?`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) { return "", errors.New("no cursor") }
		return "", err
	}
	return v, nil
}
