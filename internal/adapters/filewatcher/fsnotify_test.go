package filewatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pizza-alchemy/chatbot-go/internal/domain/ports"
)

func collectEvent(t *testing.T, events <-chan ports.FileEvent) ports.FileEvent {
	t.Helper()
	select {
	case event := <-events:
		return event
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for file event")
		return ports.FileEvent{}
	}
}

func TestWatchEmitsCreate(t *testing.T) {
	dir := t.TempDir()
	watcher, err := NewFSNotifyWatcher(nil)
	require.NoError(t, err)
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := watcher.Watch(ctx, dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "systemPrompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("persona"), 0o644))

	event := collectEvent(t, events)
	assert.Equal(t, path, event.Path)
	assert.Equal(t, ports.FileCreated, event.Operation)
}

func TestWatchIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	watcher, err := NewFSNotifyWatcher([]string{".txt"})
	require.NoError(t, err)
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := watcher.Watch(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644))

	event := collectEvent(t, events)
	assert.Equal(t, filepath.Join(dir, "keep.txt"), event.Path)
}

func TestWatchStopsOnContextCancel(t *testing.T) {
	watcher, err := NewFSNotifyWatcher(nil)
	require.NoError(t, err)
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := watcher.Watch(ctx, t.TempDir())
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("event channel did not close after cancel")
	}
}
