package appearance

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/gitui/appearance/internal/metrics"
)

type fakeCache struct {
	calls   atomic.Int32
	err     error
	release chan struct{}
}

func (f *fakeCache) ClearAsync(ctx context.Context) <-chan error {
	f.calls.Add(1)
	done := make(chan error, 1)
	go func() {
		defer close(done)
		if f.release != nil {
			<-f.release
		}
		done <- f.err
	}()
	return done
}

func TestDispatch_NothingToDo(t *testing.T) {
	cache := &fakeCache{}
	d := &Dispatcher{Cache: cache}

	done := d.Dispatch(context.Background(), CommitResult{ID: uuid.New()})
	_, open := <-done
	assert.False(t, open)
	assert.Equal(t, int32(0), cache.calls.Load())
}

func TestDispatch_ClearsOnceWithoutBlocking(t *testing.T) {
	reg := prometheus.NewRegistry()
	cache := &fakeCache{release: make(chan struct{})}
	d := &Dispatcher{Cache: cache, Metrics: metrics.New(reg)}

	// Dispatch returns while the clear is still blocked.
	done := d.Dispatch(context.Background(), CommitResult{ID: uuid.New(), CacheInvalidationNeeded: true})
	assert.Equal(t, int32(1), cache.calls.Load())

	close(cache.release)
	assert.NoError(t, <-done)
	_, open := <-done
	assert.False(t, open)

	assert.Equal(t, int32(1), cache.calls.Load())
	assert.Equal(t, 1.0, counterValue(t, reg, "appearance_cache_invalidations_total", ""))
	assert.Equal(t, 0.0, counterValue(t, reg, "appearance_cache_clear_failures_total", ""))
}

func TestDispatch_FailureIsReportedNotFatal(t *testing.T) {
	reg := prometheus.NewRegistry()
	clearErr := errors.New("cache locked")
	d := &Dispatcher{Cache: &fakeCache{err: clearErr}, Metrics: metrics.New(reg)}

	err := <-d.Dispatch(context.Background(), CommitResult{CacheInvalidationNeeded: true})
	assert.ErrorIs(t, err, clearErr)
	assert.Equal(t, 1.0, counterValue(t, reg, "appearance_cache_clear_failures_total", ""))
}

func TestDispatch_NoCacheConfigured(t *testing.T) {
	d := &Dispatcher{}
	done := d.Dispatch(context.Background(), CommitResult{CacheInvalidationNeeded: true})
	_, open := <-done
	assert.False(t, open)
}
