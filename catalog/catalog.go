package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"tweet_curator/logger"
)

const snippetExt = ".txt"

// LoadDir reads every *.txt file in dir into name→content, where name is the
// file name without its extension. A missing directory yields an empty map.
func LoadDir(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != snippetExt {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		out[strings.TrimSuffix(e.Name(), snippetExt)] = string(b)
	}
	return out, nil
}

// Catalog is a named set of reusable snippets (prompts or contexts) backed by a directory.
type Catalog struct {
	name string
	dir  string
	log  *logger.Logger

	mu    sync.RWMutex
	items map[string]string
}

func New(name, dir string, log *logger.Logger) *Catalog {
	if log == nil {
		log = logger.Nop()
	}
	return &Catalog{
		name:  name,
		dir:   dir,
		log:   log.With("catalog", name),
		items: map[string]string{},
	}
}

func (c *Catalog) Name() string { return c.name }
func (c *Catalog) Dir() string  { return c.dir }

// Reload replaces the catalog contents with what is on disk. On error the
// previous contents are kept.
func (c *Catalog) Reload() error {
	if _, err := os.Stat(c.dir); errors.Is(err, os.ErrNotExist) {
		c.log.Warn("catalog directory does not exist", "dir", c.dir)
	}
	items, err := LoadDir(c.dir)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	c.log.Info("catalog loaded", "dir", c.dir, "count", len(items))
	return nil
}

// All returns a copy of the snippets.
func (c *Catalog) All() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.items))
	for k, v := range c.items {
		out[k] = v
	}
	return out
}

func (c *Catalog) Get(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[name]
	return v, ok
}

func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.items))
	for k := range c.items {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
