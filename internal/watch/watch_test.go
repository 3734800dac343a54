package watch_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vicut/vicut/internal/watch"
)

func TestWatcherDebouncesMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("test"), 0o644))

	w, err := watch.New(watch.Config{Path: path, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("test%d", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a debounced change notification")
	}

	select {
	case <-onChange:
		t.Fatal("expected writes to coalesce into a single notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("test"), 0o644))

	w, err := watch.New(watch.Config{Path: path, DebounceDur: 20 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("noise"), 0o644))

	select {
	case <-onChange:
		t.Fatal("unrelated file write should not trigger a notification")
	case <-time.After(100 * time.Millisecond):
	}

	assert.NotNil(t, onChange)
}
