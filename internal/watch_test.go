package internal

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWatcher(t *testing.T) {
	t.Parallel()

	tempDir := createTempDir(t, "watch_test")
	watched := writeFile(t, tempDir, "watched.go", "package p\n")
	other := writeFile(t, tempDir, "other.go", "package p\n")

	changed := make(chan string, 8)
	w, err := NewWatcher(zaptest.NewLogger(t), func(_ context.Context, filename string) {
		changed <- filename
	})
	require.NoError(t, err)
	w.settle = 10 * time.Millisecond
	require.NoError(t, w.Add(watched))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- w.Run(ctx) }()

	// give the watcher a moment to start reading events
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("package q\n"), 0o644))
	require.NoError(t, os.WriteFile(watched, []byte("package q\n"), 0o644))

	select {
	case name := <-changed:
		assert.Equal(t, watched, name)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	for len(changed) > 0 {
		assert.Equal(t, watched, <-changed)
	}
}
