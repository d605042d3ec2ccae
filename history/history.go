package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tweet_curator/config"
	"tweet_curator/generator"
	"tweet_curator/logger"
	"tweet_curator/models"
)

var ErrNotFound = errors.New("history entry not found")

// keyLayout is ddmmyyyyHHMMSS, the stamp used for saved result files.
const keyLayout = "02012006150405"

// Entry is one generation run as recorded in the log.
type Entry struct {
	ID        string           `json:"id"`
	Key       string           `json:"key"`
	CreatedAt time.Time        `json:"created_at"`
	Status    generator.Status `json:"status"`
	Attempts  int              `json:"attempts"`
	Tags      []string         `json:"tags"`
	Items     []string         `json:"items"`
	Result    generator.Result `json:"result"`
}

// NewEntry stamps a result with a fresh id and key.
func NewEntry(res generator.Result, tags []string, items []models.Item, now time.Time) Entry {
	id := uuid.NewString()
	texts := make([]string, 0, len(items))
	for _, it := range items {
		texts = append(texts, it.Text)
	}
	if tags == nil {
		tags = []string{}
	}
	return Entry{
		ID:        id,
		Key:       now.Format(keyLayout) + "-" + id[:8],
		CreatedAt: now.UTC(),
		Status:    res.Status,
		Attempts:  res.Attempts,
		Tags:      tags,
		Items:     texts,
		Result:    res,
	}
}

// Log is an append-only record of generation results. List returns newest first;
// limit <= 0 means no limit.
type Log interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
	Get(ctx context.Context, id string) (Entry, error)
	Close() error
}

// Open builds the backend named in cfg.
func Open(ctx context.Context, cfg config.HistoryConfig, log *logger.Logger) (Log, error) {
	log = orNop(log).With("component", "history", "backend", cfg.Backend)
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "dir":
		return NewDir(cfg.DSN, log)
	case "sqlite":
		return NewSQLite(ctx, cfg.DSN, log)
	case "postgres":
		return NewPostgres(ctx, cfg.DSN, log)
	case "redis":
		return NewRedis(ctx, cfg.DSN, cfg.Prefix, log)
	default:
		return nil, fmt.Errorf("history backend %s not supported", cfg.Backend)
	}
}

func orNop(log *logger.Logger) *logger.Logger {
	if log == nil {
		return logger.Nop()
	}
	return log
}

func clampLimit(n, limit int) int {
	if limit > 0 && limit < n {
		return limit
	}
	return n
}
