package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweet_curator/config"
	"tweet_curator/generator"
	"tweet_curator/history"
)

func successEntry(t *testing.T) history.Entry {
	t.Helper()
	var res generator.Result
	require.NoError(t, json.Unmarshal([]byte(
		`{"✅ Loading done!":"Here are the results...","✨ Context":"Including context brand",`+
			`"🧠 Launch Day":"We shipped **today**.","🧠 Hiring":"Join us","📝 Prompt":"p","📝 Input":"a, b"}`), &res))
	return history.Entry{
		ID:        "0b5a8f6e-1111-2222-3333-444455556666",
		Key:       "01032024093000-0b5a8f6e",
		CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Status:    res.Status,
		Tags:      []string{"brand"},
		Items:     []string{"first\n tweet", "second"},
		Result:    res,
	}
}

func TestRenderSuccess(t *testing.T) {
	md := Render(successEntry(t))

	assert.True(t, strings.HasPrefix(md, "# Tweet ideas · 01 Mar 2024 09:30\n"))
	assert.Contains(t, md, "context: brand")
	assert.Contains(t, md, "## Launch Day\n\nWe shipped **today**.")
	assert.Contains(t, md, "## Hiring\n\nJoin us")
	assert.Contains(t, md, "- first tweet\n- second\n")
	assert.Less(t, strings.Index(md, "Launch Day"), strings.Index(md, "Hiring"))
}

func TestRenderFailureShowsDetail(t *testing.T) {
	var res generator.Result
	require.NoError(t, json.Unmarshal([]byte(
		`{"⚠️ Error occured":"Something went wrong!","Error":"Was not able to generate new content!","Prompt":"p"}`), &res))
	e := history.Entry{Key: "k", CreatedAt: time.Now(), Status: res.Status, Result: res}

	md := Render(e)
	assert.Contains(t, md, "# Generation failed")
	assert.Contains(t, md, "> Was not able to generate new content!")
	assert.NotContains(t, md, "## ")
}

func TestToHTMLInlinesHeadingsAndLists(t *testing.T) {
	out, err := ToHTML("## Title\n\n1. one\n2. two\n\n- a\n- b\n")
	require.NoError(t, err)

	assert.Contains(t, out, `<p style="font-size:20px;font-weight:700;margin:1em 0 0.6em;">Title</p>`)
	assert.Contains(t, out, "<p>1. one</p><p>2. two</p>")
	assert.Contains(t, out, "<p>• a</p><p>• b</p>")
	assert.NotContains(t, out, "<h2")
	assert.NotContains(t, out, "<ol")
	assert.NotContains(t, out, "<ul")
}

func TestSummaryCountsRunes(t *testing.T) {
	assert.Equal(t, "a b", Summary(" a \n b ", 10))
	assert.Equal(t, "🧠🧠", Summary("🧠🧠🧠", 2))
}

func TestPublishWritesDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs")
	p := New(config.PublishConfig{}, dir, nil, nil)

	path, err := p.Publish(context.Background(), successEntry(t))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "01032024093000-0b5a8f6e.html"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(b)
	assert.Contains(t, doc, "<title>Tweet ideas · 01 Mar 2024 09:30</title>")
	assert.Contains(t, doc, "<strong>today</strong>")
}

func TestPublishDeliversToWebhook(t *testing.T) {
	var got article
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := New(config.PublishConfig{WebhookURL: srv.URL, Author: "Team"}, t.TempDir(), srv.Client(), nil)
	_, err := p.Publish(context.Background(), successEntry(t))
	require.NoError(t, err)

	assert.Equal(t, "01032024093000-0b5a8f6e", got.Key)
	assert.Equal(t, "Team", got.Author)
	assert.Contains(t, got.Content, "Launch Day")
	assert.LessOrEqual(t, len([]rune(got.Digest)), digestLength)
}

func TestPublishWebhookError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := New(config.PublishConfig{WebhookURL: srv.URL}, t.TempDir(), srv.Client(), nil)
	path, err := p.Publish(context.Background(), successEntry(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.FileExists(t, path)
}
