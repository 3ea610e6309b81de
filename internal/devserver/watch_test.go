package devserver

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestWatcher_debouncesRebuilds(t *testing.T) {
	root := t.TempDir()
	views := filepath.Join(root, "views", "home")
	require.NoError(t, os.MkdirAll(views, 0o755))

	w, err := NewWatcher([]string{root}, nil, 100*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	var builds atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(ctx context.Context) error {
			builds.Add(1)
			return nil
		})
	}()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(views, "app.js"), []byte("console.log(1)"), 0o600))
	}

	require.Eventually(t, func() bool { return builds.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, int32(1), builds.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_watchesNewDirectories(t *testing.T) {
	root := t.TempDir()

	w, err := NewWatcher([]string{root}, nil, 50*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	var builds atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Run(ctx, func(ctx context.Context) error {
			builds.Add(1)
			return nil
		})
	}()

	page := filepath.Join(root, "views", "about")
	require.NoError(t, os.MkdirAll(page, 0o755))
	require.Eventually(t, func() bool { return builds.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)

	before := builds.Load()
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(page, "app.js"), []byte("export {}"), 0o600)
		return builds.Load() > before
	}, 5*time.Second, 100*time.Millisecond)
}

func TestWatcher_ignoresOutputDir(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "dist")
	require.NoError(t, os.MkdirAll(out, 0o755))

	w, err := NewWatcher([]string{root}, []string{out}, 50*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	require.True(t, w.ignored(filepath.Join(out, "home.js")))
	require.True(t, w.ignored(out))
	require.False(t, w.ignored(filepath.Join(root, "src", "home.js")))
	require.False(t, w.ignored(filepath.Join(root, "dist-old", "home.js")))
	require.NoError(t, w.watcher.Close())
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		dir, path string
		want      bool
	}{
		{dir: "/a/dist", path: "/a/dist/x.js", want: true},
		{dir: "/a/dist", path: "/a/dist/.cache/x", want: true},
		{dir: "/a/dist", path: "/a/src/x.js", want: false},
		{dir: "/a/dist", path: "/a", want: false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, isWithin(tt.dir, tt.path), tt.path)
	}
}
