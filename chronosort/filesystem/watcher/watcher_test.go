package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidyfiles/chronosort/chronosort/filesystem/options"
)

func noopOrganize(ctx context.Context, rootDir string) error {
	return nil
}

func TestRootWatcher_TrailingSlashRootStillMatchesChildren(t *testing.T) {
	tempDir := t.TempDir()

	w, err := NewRootWatcher(tempDir+string(os.PathSeparator), options.DefaultWatchOptions(), noopOrganize)
	require.NoError(t, err)
	defer w.Close()

	event := w.convertEvent(fsnotify.Event{
		Name: filepath.Join(tempDir, "a.txt"),
		Op:   fsnotify.Create,
	})
	require.NotNil(t, event)
	assert.Equal(t, EventCreate, event.Type)
	assert.Equal(t, filepath.Join(tempDir, "a.txt"), event.Path)
}

func TestRootWatcher_IgnoresNestedAndIrrelevantEvents(t *testing.T) {
	tempDir := t.TempDir()

	w, err := NewRootWatcher(tempDir, options.DefaultWatchOptions(), noopOrganize)
	require.NoError(t, err)
	defer w.Close()

	// Events inside the bucket subtree never re-trigger a pass.
	assert.Nil(t, w.convertEvent(fsnotify.Event{
		Name: filepath.Join(tempDir, "2024", "b.txt"),
		Op:   fsnotify.Create,
	}))

	// Removes and chmods of root children are irrelevant too.
	assert.Nil(t, w.convertEvent(fsnotify.Event{
		Name: filepath.Join(tempDir, "c.txt"),
		Op:   fsnotify.Remove,
	}))
	assert.Nil(t, w.convertEvent(fsnotify.Event{
		Name: filepath.Join(tempDir, "d.txt"),
		Op:   fsnotify.Chmod,
	}))
}
