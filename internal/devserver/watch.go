package devserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const DefaultDebounce = 300 * time.Millisecond

var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
}

// Watcher triggers a rebuild once changes under the watched dirs settle.
type Watcher struct {
	watcher  *fsnotify.Watcher
	ignore   []string
	debounce time.Duration
	log      zerolog.Logger
}

func NewWatcher(dirs, ignore []string, debounce time.Duration, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{watcher: fsw, ignore: absPaths(ignore), debounce: debounce, log: log}

	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// Run blocks until ctx is cancelled, calling rebuild after each quiet period
// that follows a change. Rebuild errors are logged, not returned.
func (w *Watcher) Run(ctx context.Context, rebuild RebuildFunc) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.log.Warn().Err(err).Str("dir", event.Name).Msg("Failed to watch new directory")
					}
				}
			}

			w.log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Change detected")
			timer.Reset(w.debounce)

		case <-timer.C:
			started := time.Now()
			if err := rebuild(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.log.Error().Err(err).Msg("Rebuild failed")
				continue
			}
			w.log.Info().Dur("duration", time.Since(started)).Msg("Rebuilt")

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("Watcher error")
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return !w.ignored(event.Name)
}

func (w *Watcher) ignored(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range w.ignore {
		if abs == dir || isWithin(dir, abs) {
			return true
		}
	}
	return false
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if _, skip := skipDirs[d.Name()]; skip || w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func absPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			out = append(out, abs)
		}
	}
	return out
}

func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
