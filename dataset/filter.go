package dataset

import (
	"sort"
	"strings"

	"github.com/tidwall/match"

	"tweet_curator/models"
)

// DayLayout is the item date format.
const DayLayout = "2006-01-02"

const (
	SortLikes = "likes"
	SortDate  = "date"
	SortUser  = "user"
	SortID    = "id"
)

// Filter narrows and orders the item table. Zero value means everything, likes descending.
type Filter struct {
	Users  []string
	Tags   []string
	Day    string
	Search string
	SortBy string
	Asc    bool
}

// Query returns the items matching f, sorted.
func (s *Store) Query(f Filter) []models.Item {
	return Apply(s.All(), f)
}

// Apply filters and sorts items without modifying the input slice.
func Apply(items []models.Item, f Filter) []models.Item {
	search := newSearcher(f.Search)
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if len(f.Users) > 0 && !contains(f.Users, it.Author) {
			continue
		}
		if len(f.Tags) > 0 && !overlaps(f.Tags, it.UserTags) {
			continue
		}
		if f.Day != "" && it.Date != f.Day {
			continue
		}
		if !search(it.Text) {
			continue
		}
		out = append(out, it)
	}
	sortItems(out, f.SortBy, f.Asc)
	return out
}

// newSearcher matches case-insensitively. Patterns containing * or ? are
// wildcard matched against the whole text; anything else is a substring.
func newSearcher(q string) func(string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	switch {
	case q == "":
		return func(string) bool { return true }
	case match.IsPattern(q):
		return func(text string) bool { return match.Match(strings.ToLower(text), q) }
	default:
		return func(text string) bool { return strings.Contains(strings.ToLower(text), q) }
	}
}

func sortItems(items []models.Item, key string, asc bool) {
	var less func(a, b models.Item) bool
	switch key {
	case SortDate:
		less = func(a, b models.Item) bool { return a.Date < b.Date }
	case SortUser:
		less = func(a, b models.Item) bool { return a.Author < b.Author }
	case SortID:
		less = func(a, b models.Item) bool { return a.ID < b.ID }
	default:
		less = func(a, b models.Item) bool { return a.Likes < b.Likes }
	}
	sort.SliceStable(items, func(i, j int) bool {
		if asc {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func overlaps(want, have []string) bool {
	for _, h := range have {
		if contains(want, h) {
			return true
		}
	}
	return false
}

// Facets lists the distinct users and tags and the most recent day.
type Facets struct {
	Users      []string
	Tags       []string
	LatestDate string
}

func (s *Store) Facets() Facets {
	users := map[string]struct{}{}
	tags := map[string]struct{}{}
	var latest string
	for _, it := range s.All() {
		if it.Author != "" {
			users[it.Author] = struct{}{}
		}
		for _, t := range it.UserTags {
			tags[t] = struct{}{}
		}
		if it.Date > latest {
			latest = it.Date
		}
	}
	return Facets{Users: sortedKeys(users), Tags: sortedKeys(tags), LatestDate: latest}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
