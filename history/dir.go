package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"tweet_curator/logger"
)

// Dir writes each entry as <key>.json into a directory.
type Dir struct {
	path string
	log  *logger.Logger
	mu   sync.Mutex
}

func NewDir(path string, log *logger.Logger) (*Dir, error) {
	if path == "" {
		return nil, fmt.Errorf("history dir: empty path")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("history dir: %w", err)
	}
	return &Dir{path: path, log: orNop(log)}, nil
}

func (d *Dir) Append(_ context.Context, e Entry) error {
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	file := filepath.Join(d.path, e.Key+".json")
	if err := os.WriteFile(file, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	d.log.Debug("result saved", "file", file)
	return nil
}

func (d *Dir) readAll() ([]Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	files, err := filepath.Glob(filepath.Join(d.path, "*.json"))
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		var e Entry
		if err := json.Unmarshal(b, &e); err != nil {
			d.log.Warn("skipping unreadable history file", "file", f, "error", err)
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (d *Dir) List(_ context.Context, limit int) ([]Entry, error) {
	all, err := d.readAll()
	if err != nil {
		return nil, err
	}
	return all[:clampLimit(len(all), limit)], nil
}

func (d *Dir) Get(_ context.Context, id string) (Entry, error) {
	all, err := d.readAll()
	if err != nil {
		return Entry{}, err
	}
	for _, e := range all {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

func (d *Dir) Close() error { return nil }
