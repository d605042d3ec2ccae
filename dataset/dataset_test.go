package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweet_curator/models"
)

const sampleJSON = `[
 {"id":"1","user":"alice","tweet":"  Shipping our new API today  ","likes":10,"date":"2024-03-01T10:00:00","userTags":["dev"]},
 {"id":"2","user":"bob","tweet":"Coffee first","likes":42,"date":"2024-03-02","userTags":["life","dev"]},
 {"id":"3","user":"carol","tweet":"Hiring a Go engineer","likes":7,"date":"2024-03-02"}
]`

func writeDataset(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadNormalizesItems(t *testing.T) {
	p := writeDataset(t, sampleJSON)

	items, src, err := Load(p, "")
	require.NoError(t, err)
	assert.Equal(t, p, src)
	require.Len(t, items, 3)
	assert.Equal(t, "Shipping our new API today", items[0].Text)
	assert.Equal(t, "2024-03-01", items[0].Date)
	assert.Equal(t, []string{}, items[2].UserTags)
}

func TestLoadFallsBackToDummy(t *testing.T) {
	dummy := writeDataset(t, sampleJSON)

	items, src, err := Load(filepath.Join(t.TempDir(), "missing.json"), dummy)
	require.NoError(t, err)
	assert.Equal(t, dummy, src)
	assert.Len(t, items, 3)
}

func TestLoadBothMissing(t *testing.T) {
	dir := t.TempDir()
	_, _, err := Load(filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(writeDataset(t, sampleJSON), "", nil)
	require.NoError(t, s.Refresh())
	return s
}

func ids(items []models.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestQuery(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"default likes desc", Filter{}, []string{"2", "1", "3"}},
		{"likes asc", Filter{Asc: true}, []string{"3", "1", "2"}},
		{"by user", Filter{Users: []string{"alice", "carol"}}, []string{"1", "3"}},
		{"by tag", Filter{Tags: []string{"life"}}, []string{"2"}},
		{"by day", Filter{Day: "2024-03-02", SortBy: SortUser, Asc: true}, []string{"2", "3"}},
		{"substring ignores case", Filter{Search: "go ENGINEER"}, []string{"3"}},
		{"wildcard", Filter{Search: "*api*"}, []string{"1"}},
		{"wildcard anchored", Filter{Search: "coffee?first"}, []string{"2"}},
		{"sort by id desc", Filter{SortBy: SortID}, []string{"3", "2", "1"}},
		{"no match", Filter{Users: []string{"dave"}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(s.Query(tt.filter)))
		})
	}
}

func TestAddKeepsManualItemsAcrossRefresh(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	_, err := s.Add("   ")
	assert.ErrorIs(t, err, ErrEmptyText)

	it, err := s.Add(" my own tweet ")
	require.NoError(t, err)
	assert.Equal(t, ManualAuthor, it.Author)
	assert.Equal(t, "my own tweet", it.Text)
	assert.Equal(t, "2024-05-06", it.Date)
	assert.Zero(t, it.Likes)
	assert.NotEmpty(t, it.ID)

	require.NoError(t, s.Refresh())
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, it.ID, s.All()[0].ID)
}

func TestFacets(t *testing.T) {
	f := newTestStore(t).Facets()
	assert.Equal(t, []string{"alice", "bob", "carol"}, f.Users)
	assert.Equal(t, []string{"dev", "life"}, f.Tags)
	assert.Equal(t, "2024-03-02", f.LatestDate)
}
