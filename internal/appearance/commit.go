package appearance

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gitui/appearance/internal/metrics"
	"github.com/gitui/appearance/internal/option"
	"github.com/gitui/appearance/internal/store"
)

// StringCatalog is rebuilt after the translation option is written.
// Reinitialize must be idempotent.
type StringCatalog interface {
	Reinitialize(translation string)
}

// CommitResult describes a completed commit.
type CommitResult struct {
	// ID correlates the log lines of one commit and its side effects.
	ID uuid.UUID

	// CacheInvalidationNeeded is true when an option whose change
	// invalidates the avatar cache differs from the value stored before
	// the commit.
	CacheInvalidationNeeded bool

	// Changed lists, in catalog order, the options whose stored value the
	// commit changed.
	Changed []option.Key
}

// Committer writes a Snapshot back to the settings store.
type Committer struct {
	Strings StringCatalog
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Commit writes every option of s to st in catalog order and reports whether
// the avatar cache must be cleared.
//
// The values of the watched options are read from st right before writing,
// so a change made to the store by another process since s was loaded is
// taken into account. The string catalog is reinitialized right after the
// translation option is written, whether or not it changed.
//
// A commit is not cancellable: ctx only carries values. A rejected write
// stops the commit with an error matching store.ErrPersistenceFailure;
// earlier writes are not rolled back.
func (c *Committer) Commit(ctx context.Context, s *Snapshot, st store.Store) (result CommitResult, err error) {
	ctx = context.WithoutCancel(ctx)
	result.ID = uuid.New()
	log := c.logger().With("commit", result.ID.String())
	defer func() { c.Metrics.RecordCommit(err) }()

	defs := s.catalog.Definitions()

	before := make(map[option.Key]string, len(defs))
	known := make(map[option.Key]bool, len(defs))
	for _, def := range defs {
		value, ok, err := st.Get(ctx, string(def.Key))
		if err != nil {
			if def.Effect == option.EffectAvatarCache {
				log.Error("failed to read watched option", "key", def.Key, "error", err)
				return result, persistenceError("get", def.Key, err)
			}
			log.Debug("failed to read option before commit", "key", def.Key, "error", err)
			continue
		}
		if !ok {
			value = def.Default
		}
		before[def.Key], known[def.Key] = value, true
	}

	for _, def := range defs {
		if def.Effect != option.EffectAvatarCache {
			continue
		}
		if value, ok := s.fields[def.Key].persisted(); ok && value != before[def.Key] {
			result.CacheInvalidationNeeded = true
			break
		}
	}

	for _, def := range defs {
		value, ok := s.fields[def.Key].persisted()
		if !ok {
			log.Debug("option has no selection, keeping stored value", "key", def.Key)
			continue
		}
		if err := st.Set(ctx, string(def.Key), value); err != nil {
			log.Error("failed to write option", "key", def.Key, "error", err)
			return result, persistenceError("set", def.Key, err)
		}
		if !known[def.Key] || before[def.Key] != value {
			result.Changed = append(result.Changed, def.Key)
		}
		if def.Effect == option.EffectReloadStrings && c.Strings != nil {
			c.Strings.Reinitialize(value)
		}
	}

	log.Info("appearance settings committed",
		"changed", len(result.Changed),
		"cache_invalidation", result.CacheInvalidationNeeded)
	return result, nil
}

func persistenceError(op string, key option.Key, err error) error {
	if errors.Is(err, store.ErrPersistenceFailure) {
		return err
	}
	return &store.PersistenceError{Op: op, Key: string(key), Err: err}
}

func (c *Committer) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
