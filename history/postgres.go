package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tweet_curator/logger"
)

// Postgres stores entries in a generation_history table. body must stay JSON,
// not JSONB: result labels have to read back in the order they were written.
type Postgres struct {
	Pool *pgxpool.Pool
	log  *logger.Logger
}

func NewPostgres(ctx context.Context, databaseURL string, log *logger.Logger) (*Postgres, error) {
	log = orNop(log)
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	p := &Postgres{Pool: pool, log: log}
	if err := p.CreateTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("history database connected")
	return p, nil
}

// CreateTables creates the history table if it does not exist.
func (p *Postgres) CreateTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS generation_history (
		id TEXT PRIMARY KEY,
		entry_key VARCHAR(64) NOT NULL,
		status VARCHAR(16) NOT NULL,
		body JSON NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_generation_history_created ON generation_history(created_at DESC);
	`
	if _, err := p.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create generation_history table: %w", err)
	}
	return nil
}

func (p *Postgres) Append(ctx context.Context, e Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	_, err = p.Pool.Exec(ctx,
		`INSERT INTO generation_history (id, entry_key, status, body, created_at) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Key, string(e.Status), string(body), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT body::text FROM generation_history ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := p.Pool.Query(ctx, query, args...)
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

func (p *Postgres) Get(ctx context.Context, id string) (Entry, error) {
	var body string
	err := p.Pool.QueryRow(ctx, `SELECT body::text FROM generation_history WHERE id = $1`, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (p *Postgres) Close() error {
	p.Pool.Close()
	return nil
}
