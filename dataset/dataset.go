package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tweet_curator/logger"
	"tweet_curator/models"
)

// ManualAuthor is the author recorded for items typed in by hand.
const ManualAuthor = "Custom User"

var ErrEmptyText = errors.New("item text is empty")

// Load reads a JSON array of items from path. When path does not exist the
// fallback file is used instead. The returned string is the file actually read.
func Load(path, fallback string) ([]models.Item, string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && fallback != "" && fallback != path {
		path = fallback
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, path, fmt.Errorf("read dataset: %w", err)
	}
	var items []models.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, path, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	for i := range items {
		normalize(&items[i])
	}
	return items, path, nil
}

func normalize(it *models.Item) {
	it.Text = strings.TrimSpace(it.Text)
	if len(it.Date) > 10 {
		it.Date = it.Date[:10]
	}
	if it.UserTags == nil {
		it.UserTags = []string{}
	}
}

// Store keeps the current item set in memory. Manually added items survive a Refresh.
type Store struct {
	path     string
	fallback string
	log      *logger.Logger
	now      func() time.Time

	mu     sync.RWMutex
	items  []models.Item
	manual []models.Item
}

func NewStore(path, fallback string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		path:     path,
		fallback: fallback,
		log:      log.With("component", "dataset"),
		now:      time.Now,
	}
}

// Refresh re-imports the dataset file.
func (s *Store) Refresh() error {
	items, source, err := Load(s.path, s.fallback)
	if err != nil {
		return err
	}
	if source != s.path {
		s.log.Warn("dataset missing, using dummy dataset", "path", s.path, "dummy", source)
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	s.log.Info("dataset imported", "source", source, "count", len(items))
	return nil
}

// All returns manual items first, then imported ones.
func (s *Store) All() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Item, 0, len(s.manual)+len(s.items))
	out = append(out, s.manual...)
	out = append(out, s.items...)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.manual) + len(s.items)
}

// Add records a hand-written item.
func (s *Store) Add(text string) (models.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Item{}, ErrEmptyText
	}
	it := models.Item{
		ID:       uuid.NewString(),
		Author:   ManualAuthor,
		Text:     text,
		Date:     s.now().Format(DayLayout),
		UserTags: []string{},
	}
	s.mu.Lock()
	s.manual = append([]models.Item{it}, s.manual...)
	s.mu.Unlock()
	return it, nil
}
