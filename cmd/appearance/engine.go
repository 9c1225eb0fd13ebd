package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"git.sr.ht/~spc/go-log"
	"github.com/briandowns/spinner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/gitui/appearance/internal/appearance"
	"github.com/gitui/appearance/internal/avatar"
	"github.com/gitui/appearance/internal/choice"
	"github.com/gitui/appearance/internal/conf"
	"github.com/gitui/appearance/internal/l10n"
	"github.com/gitui/appearance/internal/metrics"
	"github.com/gitui/appearance/internal/option"
	"github.com/gitui/appearance/internal/store"
)

// engine wires the configured collaborators of an appearance session.
type engine struct {
	cfg          conf.Config
	store        store.Store
	closer       io.Closer
	strings      *l10n.Catalog
	dictionaries *choice.Resolver
	cache        *avatar.Cache
	registry     *prometheus.Registry
	metrics      *metrics.Metrics
	metricsFile  string
}

func openEngine(c *cli.Context) (*engine, error) {
	cfg := configuration
	st, closer, err := openStore(c.Context, cfg)
	if err != nil {
		return nil, cli.Exit(fmt.Errorf("cannot open settings store: %w", err), 1)
	}

	e := &engine{
		cfg:     cfg,
		store:   st,
		closer:  closer,
		strings: l10n.NewCatalog(cfg.TranslationDomain, cfg.LocaleDir),
		cache:   &avatar.Cache{Dir: cfg.AvatarCacheDir},

		registry:    prometheus.NewRegistry(),
		metricsFile: c.String(cliMetricsFile),
	}
	e.metrics = metrics.New(e.registry)
	l10n.SetDefault(e.strings)

	// Speak the user's configured language from the first message on.
	if translation, ok, err := st.Get(c.Context, string(option.Translation)); err == nil && ok {
		e.strings.Reinitialize(translation)
	}

	e.dictionaries = &choice.Resolver{
		Dir:       cfg.DictionaryDir,
		Suffix:    cfg.DictionarySuffix,
		Lister:    choice.NewOSLister(),
		NoneLabel: l10n.T("None"),
	}
	return e, nil
}

func openStore(ctx context.Context, cfg conf.Config) (store.Store, io.Closer, error) {
	switch cfg.Store {
	case conf.StoreTOML, "":
		f, err := store.OpenFile(cfg.SettingsPath, store.TOML)
		return f, nil, err
	case conf.StoreYAML:
		f, err := store.OpenFile(cfg.SettingsPath, store.YAML)
		return f, nil, err
	case conf.StoreSQLite:
		s, err := store.OpenSQLite(ctx, cfg.SettingsPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store %q", cfg.Store)
	}
}

func (e *engine) loader() *appearance.Loader {
	return &appearance.Loader{
		Dictionaries: e.dictionaries,
		Translations: e.strings,
		Metrics:      e.metrics,
	}
}

func (e *engine) open(ctx context.Context) *appearance.Session {
	return appearance.Open(ctx, e.store, appearance.Options{
		Loader:     e.loader(),
		Committer:  &appearance.Committer{Strings: e.strings, Metrics: e.metrics},
		Dispatcher: &appearance.Dispatcher{Cache: e.cache, Metrics: e.metrics},
	})
}

// Close releases the store and writes the metrics text file, if requested.
func (e *engine) Close() error {
	var errs []error
	if e.closer != nil {
		errs = append(errs, e.closer.Close())
	}
	if e.metricsFile != "" {
		if err := prometheus.WriteToTextfile(e.metricsFile, e.registry); err != nil {
			errs = append(errs, fmt.Errorf("cannot write metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// withEngine runs fn with an engine that is closed afterwards.
func withEngine(fn func(c *cli.Context, e *engine) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := openEngine(c)
		if err != nil {
			return err
		}
		defer func() {
			if err := e.Close(); err != nil {
				log.Warnf("%v", err)
			}
		}()
		return fn(c, e)
	}
}

// await waits for done, showing a spinner with msg when stdout is a
// terminal.
func await(done <-chan error, msg string) error {
	if done == nil {
		return nil
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		s := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
		s.Suffix = " " + msg
		s.Start()
		defer s.Stop()
	}
	return <-done
}
