package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"tweet_curator/logger"
)

// Redis keeps entry bodies in a hash (<prefix>:entries) and ids, newest
// first, in a list (<prefix>:ids).
type Redis struct {
	rdb    *goredis.Client
	log    *logger.Logger
	prefix string
}

// NewRedis accepts either a redis:// URL or a bare host:port.
func NewRedis(ctx context.Context, dsn, prefix string, log *logger.Logger) (*Redis, error) {
	log = orNop(log)
	opts := &goredis.Options{Addr: dsn, DialTimeout: 5 * time.Second}
	if strings.HasPrefix(dsn, "redis://") || strings.HasPrefix(dsn, "rediss://") {
		parsed, err := goredis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		opts = parsed
	}
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if prefix == "" {
		prefix = "curator:history"
	}
	return &Redis{rdb: rdb, log: log, prefix: prefix}, nil
}

func (r *Redis) entriesKey() string { return r.prefix + ":entries" }
func (r *Redis) idsKey() string     { return r.prefix + ":ids" }

func (r *Redis) Append(ctx context.Context, e Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	_, err = r.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.HSet(ctx, r.entriesKey(), e.ID, body)
		p.LPush(ctx, r.idsKey(), e.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	return nil
}

func (r *Redis) List(ctx context.Context, limit int) ([]Entry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := r.rdb.LRange(ctx, r.idsKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	vals, err := r.rdb.HMGet(ctx, r.entriesKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	out := make([]Entry, 0, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			r.log.Warn("history id without body", "id", ids[i])
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *Redis) Get(ctx context.Context, id string) (Entry, error) {
	s, err := r.rdb.HGet(ctx, r.entriesKey(), id).Result()
	if errors.Is(err, goredis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("redis get: %w", err)
	}
	var e Entry
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return Entry{}, fmt.Errorf("decode history: %w", err)
	}
	return e, nil
}

func (r *Redis) Close() error { return r.rdb.Close() }
