package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"tweet_curator/logger"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS history (
	id         TEXT PRIMARY KEY,
	entry_key  TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	status     TEXT NOT NULL,
	body       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at DESC);
`

// SQLite stores entries in a single table; body holds the JSON entry.
type SQLite struct {
	db  *sql.DB
	log *logger.Logger
}

func NewSQLite(ctx context.Context, path string, log *logger.Logger) (*SQLite, error) {
	log = orNop(log)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}
	log.Info("history database ready", "path", path)
	return &SQLite{db: db, log: log}, nil
}

func (s *SQLite) Append(ctx context.Context, e Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO history (id, entry_key, created_at, status, body) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Key, e.CreatedAt.UnixNano(), string(e.Status), string(body))
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM history ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var e Entry
		if err := json.Unmarshal([]byte(body), &e); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) Get(ctx context.Context, id string) (Entry, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM history WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get history: %w", err)
	}
	var e Entry
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		return Entry{}, fmt.Errorf("decode history: %w", err)
	}
	return e, nil
}

func (s *SQLite) Close() error { return s.db.Close() }
