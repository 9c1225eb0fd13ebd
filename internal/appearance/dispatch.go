package appearance

import (
	"context"
	"log/slog"

	"github.com/gitui/appearance/internal/metrics"
)

// AvatarCache is cleared when a commit changes how avatars are fetched.
type AvatarCache interface {
	// ClearAsync starts clearing the cache and returns a channel that
	// delivers the outcome once and is then closed.
	ClearAsync(ctx context.Context) <-chan error
}

// Dispatcher runs the side effects a CommitResult calls for.
type Dispatcher struct {
	Cache   AvatarCache
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Dispatch starts the avatar cache clear when result requires it and returns
// without waiting for it. The returned channel delivers the clear's outcome
// and is then closed; it is closed immediately when there is nothing to do.
// A failed clear is logged and counted but never fails the commit.
func (d *Dispatcher) Dispatch(ctx context.Context, result CommitResult) <-chan error {
	out := make(chan error, 1)
	if !result.CacheInvalidationNeeded {
		close(out)
		return out
	}

	log := d.logger().With("commit", result.ID.String())
	if d.Cache == nil {
		log.Warn("avatar cache invalidation needed but no cache configured")
		close(out)
		return out
	}

	d.Metrics.RecordCacheInvalidation()
	log.Debug("clearing avatar cache")
	cleared := d.Cache.ClearAsync(ctx)

	go func() {
		defer close(out)
		err, ok := <-cleared
		if !ok {
			return
		}
		if err != nil {
			log.Error("failed to clear avatar cache", "error", err)
			d.Metrics.RecordCacheClearFailure()
		}
		out <- err
	}()
	return out
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
