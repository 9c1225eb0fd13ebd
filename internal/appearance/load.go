package appearance

import (
	"context"
	"log/slog"

	"github.com/gitui/appearance/internal/choice"
	"github.com/gitui/appearance/internal/l10n"
	"github.com/gitui/appearance/internal/metrics"
	"github.com/gitui/appearance/internal/option"
	"github.com/gitui/appearance/internal/store"
)

// TranslationCatalog lists the installed user interface translations.
type TranslationCatalog interface {
	Translations() []string
}

// Loader reads the settings store into a Snapshot.
type Loader struct {
	// Catalog defaults to option.Default().
	Catalog *option.Catalog

	// Dictionaries resolves options whose choices come from the
	// dictionary directory.
	Dictionaries *choice.Resolver

	// Translations supplies the suggestions of the translation option,
	// listed after the built-in English entry.
	Translations TranslationCatalog

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Load builds a Snapshot from st. It never writes to st and never fails:
// missing or malformed values fall back to their defaults, and problems that
// the user should know about are recorded in Snapshot.Warnings.
func (l *Loader) Load(ctx context.Context, st store.Store) *Snapshot {
	s := newSnapshot(l.catalog())
	for _, def := range s.catalog.Definitions() {
		raw, ok, err := st.Get(ctx, string(def.Key))
		if err != nil {
			l.logger().Warn("failed to read option, using default", "key", def.Key, "error", err)
			s.warnings = append(s.warnings, err)
			ok = false
		}
		if !ok {
			raw = def.Default
		}
		s.fields[def.Key] = l.loadField(ctx, s, def, raw)
	}
	return s
}

func (l *Loader) loadField(ctx context.Context, s *Snapshot, def option.Definition, raw string) *field {
	f := &field{def: def, index: NoSelection}

	switch def.Kind {
	case option.Boolean:
		v, err := option.ParseBool(raw)
		if err != nil {
			l.logger().Debug("malformed value replaced by default", "key", def.Key, "error", err)
			v, _ = option.ParseBool(def.Default)
		}
		f.boolean = v

	case option.Integer:
		v, err := option.ParseInt(raw)
		if err == nil && !def.InRange(v) {
			err = &RangeError{Key: def.Key, Value: v, Min: def.Min, Max: def.Max}
		}
		if err != nil {
			l.logger().Debug("malformed value replaced by default", "key", def.Key, "error", err)
			v, _ = option.ParseInt(def.Default)
		}
		f.integer = v

	case option.EnumChoice:
		if i, ok := def.Enum.IndexOf(raw); ok {
			f.index = i
		} else {
			l.logger().Debug("unknown enumeration value left unselected", "key", def.Key, "value", raw)
		}

	case option.FreeText:
		f.text = raw
		if def.Source == option.SourceTranslations {
			f.suggestions = append([]string{l10n.English}, l.translations()...)
		}

	case option.FileBackedChoice:
		c, err := l.resolver(def).ResolvePersisted(ctx, raw)
		f.files = c
		if err != nil {
			l.Metrics.RecordDirectoryScanFailure()
			s.warnings = append(s.warnings, err)
			f.stored = choice.ParseSelection(raw).Persisted()
			f.keepStored = true
		}
	}
	return f
}

func (l *Loader) resolver(def option.Definition) *choice.Resolver {
	if def.Source == option.SourceDictionaries && l.Dictionaries != nil {
		return l.Dictionaries
	}
	return &choice.Resolver{Logger: l.Logger}
}

func (l *Loader) translations() []string {
	if l.Translations == nil {
		return nil
	}
	return l.Translations.Translations()
}

func (l *Loader) catalog() *option.Catalog {
	if l.Catalog != nil {
		return l.Catalog
	}
	return option.Default()
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
