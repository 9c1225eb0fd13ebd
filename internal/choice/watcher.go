package choice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period a Watcher waits before reporting.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes to the candidate files of a directory so callers
// can rescan it. Bursts of events collapse into one callback.
type Watcher struct {
	Dir      string
	Suffix   string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watch blocks until ctx ends, calling onChange after each burst of
// create, write, remove or rename events on files ending in Suffix.
// onChange runs on the calling goroutine, one call at a time.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.Dir); err != nil {
		return &DirectoryError{Dir: w.Dir, Err: err}
	}

	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := w.Debounce
	if interval <= 0 {
		interval = DefaultDebounce
	}
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	logger.Debug("watching choice directory", "dir", w.Dir, "suffix", w.Suffix)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("choice directory event", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(interval)
			} else {
				timer.Reset(interval)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("choice directory watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.HasSuffix(name, w.Suffix)
}
