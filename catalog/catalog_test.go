package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func write(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadDirReadsOnlySnippets(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "brand.txt", "Tone: playful.")
	write(t, dir, "product.txt", "We sell search.")
	write(t, dir, "notes.md", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755))

	got, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"brand": "Tone: playful.", "product": "We sell search."}, got)
}

func TestLoadDirMissingIsEmpty(t *testing.T) {
	got, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalogReloadAndCopy(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.txt", "2")
	write(t, dir, "a.txt", "1")

	c := New("contexts", dir, nil)
	require.NoError(t, c.Reload())
	assert.Equal(t, []string{"a", "b"}, c.Names())

	all := c.All()
	all["a"] = "mutated"
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	write(t, dir, "c.txt", "3")
	require.NoError(t, c.Reload())
	assert.Equal(t, 3, c.Len())
}

func TestWatcherReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	c := New("prompts", dir, nil)
	require.NoError(t, c.Reload())

	reloaded := make(chan int, 8)
	w := NewWatcher(c, WithDebounce(20*time.Millisecond), OnReload(func(n int) { reloaded <- n }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never became ready")
	}

	write(t, dir, "launch.txt", "Write launch tweets")
	write(t, dir, "ignored.json", "{}")

	select {
	case n := <-reloaded:
		assert.Equal(t, 1, n)
	case <-time.After(3 * time.Second):
		t.Fatal("catalog was not reloaded")
	}
	v, ok := c.Get("launch")
	assert.True(t, ok)
	assert.Equal(t, "Write launch tweets", v)

	cancel()
	require.NoError(t, <-done)
}
