package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawTweet(text string, likes int) string {
	return fmt.Sprintf(`{"date":"2024-03-01T10:00:00+00:00","url":"https://twitter.com/x/status/1",`+
		`"rawContent":%q,"likeCount":%d,"replyCount":1,"retweetCount":2,"quoteCount":0,`+
		`"user":{"username":"x","followersCount":5,"profileImageUrl":"https://img/x.png"}}`, text, likes)
}

func rawDump(users string) []byte {
	return []byte(`{"twitter":{"total_tweets":0,"last_run":null,"users":{` + users + `}}}`)
}

func TestProcessThresholds(t *testing.T) {
	long := strings.Repeat("a", MinTextLength)

	tests := []struct {
		name  string
		text  string
		likes int
		kept  bool
	}{
		{"at both minimums", long, MinLikes, true},
		{"one char short", long[1:], 500, false},
		{"one like short", long, MinLikes - 1, false},
		{"length counts characters", strings.Repeat("é", MinTextLength), MinLikes, true},
		{"multibyte one short", strings.Repeat("é", MinTextLength-1), MinLikes, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawDump(`"alice":{"101":` + rawTweet(tt.text, tt.likes) + `}`)

			items, err := Process(raw, UserTags{"alice": {"dev"}})
			require.NoError(t, err)
			if tt.kept {
				assert.Len(t, items, 1)
			} else {
				assert.Empty(t, items)
			}
		})
	}
}

func TestProcessMapsFields(t *testing.T) {
	text := "Shipping our new API today, thanks to everyone who helped"
	raw := rawDump(`"bob":{"9":` + rawTweet(text, 40) + `,"3":` + rawTweet(text+"!", 12) + `},` +
		`"alice":{"7":` + rawTweet(text, 11) + `}`)

	items, err := Process(raw, UserTags{"bob": {"launch", "dev"}})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, []string{"bob-9", "bob-3", "alice-7"}, []string{items[0].ID, items[1].ID, items[2].ID})
	first := items[0]
	assert.Equal(t, "bob", first.Author)
	assert.Equal(t, text, first.Text)
	assert.Equal(t, 40, first.Likes)
	assert.Equal(t, "2024-03-01", first.Date)
	assert.Equal(t, "https://img/x.png", first.ProfileImage)
	assert.Equal(t, "https://twitter.com/x/status/1", first.URL)
	assert.Equal(t, []string{"launch", "dev"}, first.UserTags)
	assert.Equal(t, []string{}, items[2].UserTags)
}

func TestProcessRejectsMalformedDump(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":      `{"twitter":`,
		"missing users": `{"twitter":{"total_tweets":0}}`,
		"users array":   `{"twitter":{"users":[]}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Process([]byte(raw), nil)
			assert.ErrorIs(t, err, ErrMalformedRaw)
		})
	}
}

func TestProcessFileWritesLoadableDataset(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "raw.json")
	cfg := filepath.Join(dir, "data_config.json")
	out := filepath.Join(dir, "out", "dataset.json")
	require.NoError(t, os.WriteFile(in, rawDump(
		`"alice":{"1":`+rawTweet("Hybrid retrieval beat pure vector search again", 25)+
			`,"2":`+rawTweet("too short", 99)+`}`), 0o644))
	require.NoError(t, os.WriteFile(cfg, []byte(`{"twitter":{"users":{"alice":{"tags":["search"]}}}}`), 0o644))

	n, err := ProcessFile(in, cfg, out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, src, err := Load(out, "")
	require.NoError(t, err)
	assert.Equal(t, out, src)
	require.Len(t, items, 1)
	assert.Equal(t, "alice-1", items[0].ID)
	assert.Equal(t, []string{"search"}, items[0].UserTags)
}

func TestLoadUserTagsMissingFile(t *testing.T) {
	_, err := LoadUserTags(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
