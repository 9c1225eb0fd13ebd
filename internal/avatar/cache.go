// Package avatar implements the on-disk avatar image cache that appearance
// commits invalidate.
package avatar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNoCacheDir = errors.New("avatar: no cache directory configured")

// Cache is a directory of cached avatar images, one file per entry.
type Cache struct {
	Dir    string
	Logger *slog.Logger
}

// ClearAsync empties the cache in the background. The returned channel
// receives the outcome once and is then closed.
//
// From a reader's point of view the clear is atomic: the directory is
// renamed aside in one step before anything is deleted. If ctx is already
// done when the goroutine starts, nothing is touched.
func (c *Cache) ClearAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- c.Clear(ctx)
	}()
	return done
}

// Clear empties the cache synchronously. Clearing a missing or empty cache
// succeeds.
func (c *Cache) Clear(ctx context.Context) error {
	if c.Dir == "" {
		return ErrNoCacheDir
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Directories left behind by an interrupted earlier clear go too.
	defer c.removeStale()

	stale := c.stalePrefix() + uuid.NewString()
	if err := os.Rename(c.Dir, stale); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to clear avatar cache %s: %w", c.Dir, err)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to recreate avatar cache %s: %w", c.Dir, err)
	}
	c.logger().Info("avatar cache cleared", "dir", c.Dir)
	return nil
}

func (c *Cache) stalePrefix() string {
	return filepath.Clean(c.Dir) + ".stale-"
}

// removeStale deletes every renamed-aside copy of the cache. Failures only
// leak disk space and are logged.
func (c *Cache) removeStale() {
	prefix := c.stalePrefix()
	parent := filepath.Dir(prefix)
	entries, err := os.ReadDir(parent)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger().Warn("failed to list stale avatar caches", "error", err, "dir", parent)
		}
		return
	}
	for _, e := range entries {
		path := filepath.Join(parent, e.Name())
		if !e.IsDir() || !strings.HasPrefix(path, prefix) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			c.logger().Warn("failed to remove stale avatar cache", "error", err, "dir", path)
		}
	}
}

// Put stores an image under name.
func (c *Cache) Put(name string, data []byte) error {
	if c.Dir == "" {
		return ErrNoCacheDir
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.Dir, filepath.Base(name)), data, 0o644)
}

// Entries lists cached image names.
func (c *Cache) Entries() ([]string, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Prune deletes images last modified before now-maxAge and returns how many
// were removed.
func (c *Cache) Prune(ctx context.Context, now time.Time, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(c.Dir, e.Name())); err != nil && !os.IsNotExist(err) {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

func (c *Cache) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
