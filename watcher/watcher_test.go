package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func TestExcludeFilter(t *testing.T) {
	w, err := New(Config{
		Exclude:   []string{"**/.git/**", "*.tmp", "**/vendor/**"},
		Extension: ".graphqxl",
	}, nil)
	require.NoError(t, err)
	defer w.fsw.Close()

	assert.True(t, w.Excluded("/repo/.git/index"))
	assert.True(t, w.Excluded("/repo/schemas/main.graphqxl.tmp"))
	assert.True(t, w.Excluded("/repo/vendor/lib/common.graphqxl"))
	assert.False(t, w.Excluded("/repo/schemas/main.graphqxl"))

	assert.True(t, w.Relevant("/repo/schemas/new.graphqxl"), "documents are relevant before they are imported")
	assert.False(t, w.Relevant("/repo/README.md"))
	assert.False(t, w.Relevant("/repo/vendor/lib/common.graphqxl"))
}

func TestInvalidPattern(t *testing.T) {
	_, err := New(Config{Exclude: []string{"[unclosed"}}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPattern))
}

func TestDefaultDebounce(t *testing.T) {
	w, err := New(Config{}, nil)
	require.NoError(t, err)
	defer w.fsw.Close()
	assert.Equal(t, DefaultDebounce, w.config.Debounce)
}

func TestFailedReloadKeepsWatchSet(t *testing.T) {
	dir := fs.NewDir(t, "watch", fs.WithFile("a.graphqxl", "scalar A"))
	defer dir.Remove()

	fail := false
	w, err := New(Config{}, func(ctx context.Context) ([]string, error) {
		if fail {
			return nil, errors.New("syntax error")
		}
		return []string{dir.Join("a.graphqxl"), "https://example.com/remote.graphqxl"}, nil
	})
	require.NoError(t, err)
	defer w.fsw.Close()

	w.doReload(context.Background())
	assert.ElementsMatch(t, []string{dir.Join("a.graphqxl"), "https://example.com/remote.graphqxl"}, w.Files())
	assert.Equal(t, map[string]bool{dir.Path(): true}, w.dirs)
	assert.True(t, w.Relevant("https://example.com/remote.graphqxl"))

	fail = true
	w.doReload(context.Background())
	assert.Len(t, w.Files(), 2)

	w.setFiles(nil)
	assert.Empty(t, w.dirs, "directories no longer needed are dropped")
}

func TestChangeTriggersReload(t *testing.T) {
	dir := fs.NewDir(t, "watch",
		fs.WithFile("main.graphqxl", `import "types"`),
		fs.WithFile("types.graphqxl", "scalar A"),
	)
	defer dir.Remove()
	root, err := filepath.EvalSymlinks(dir.Path())
	require.NoError(t, err)
	mainFile := filepath.Join(root, "main.graphqxl")
	typesFile := filepath.Join(root, "types.graphqxl")

	var reloads atomic.Int32
	w, err := New(Config{Debounce: 20 * time.Millisecond, Exclude: []string{"*.swp"}}, func(ctx context.Context) ([]string, error) {
		reloads.Add(1)
		return []string{mainFile, typesFile}, nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return len(w.Files()) == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())

	require.NoError(t, os.WriteFile(typesFile, []byte("scalar A\nscalar B"), 0644))
	require.Eventually(t, func() bool { return reloads.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
