package l10n

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/snapcore/go-gettext"
)

// English is the built-in language. It has no catalog file: selecting it
// leaves strings untranslated.
const English = "English"

// Catalog owns the active translation of one gettext text domain and lists
// the translations installed for it.
type Catalog struct {
	name      string
	localeDir string

	mu     sync.RWMutex
	domain *gettext.TextDomain
	locale gettext.Catalog
	active string
}

// NewCatalog returns a catalog for the text domain name whose message
// catalogs live under localeDir (<localeDir>/<lang>/LC_MESSAGES/<name>.mo).
// It starts in the user's locale.
func NewCatalog(name, localeDir string) *Catalog {
	domain := &gettext.TextDomain{Name: name, LocaleDir: localeDir}
	return &Catalog{
		name:      name,
		localeDir: localeDir,
		domain:    domain,
		locale:    domain.UserLocale(),
	}
}

// Translations lists installed translations by language directory name, in
// lexicographic order. An unreadable locale directory yields no
// translations.
func (c *Catalog) Translations() []string {
	if c.localeDir == "" {
		return nil
	}
	entries, err := os.ReadDir(c.localeDir)
	if err != nil {
		slog.Debug("failed to list translations", "error", err, "dir", c.localeDir)
		return nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		mo := filepath.Join(c.localeDir, entry.Name(), "LC_MESSAGES", c.name+".mo")
		if info, err := os.Stat(mo); err == nil && info.Mode().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Reinitialize switches the active translation. English or an empty name
// selects the untranslated strings. Calling it again with the same name is
// harmless.
func (c *Catalog) Reinitialize(translation string) {
	var locale gettext.Catalog
	if translation == "" || strings.EqualFold(translation, English) {
		locale = c.domain.Locale()
	} else {
		locale = c.domain.Locale(translation)
	}

	c.mu.Lock()
	c.locale = locale
	c.active = translation
	c.mu.Unlock()
	slog.Debug("string catalog reinitialized", "domain", c.name, "translation", translation)
}

// Active returns the translation last passed to Reinitialize.
func (c *Catalog) Active() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

func (c *Catalog) current() gettext.Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locale
}

// T localizes simple strings.
func (c *Catalog) T(str string, vars ...interface{}) string {
	return format(c.current().Gettext(str), vars)
}

// TN localizes strings with plurals.
func (c *Catalog) TN(singular, plural string, n uint32, vars ...interface{}) string {
	return format(c.current().NGettext(singular, plural, n), vars)
}

// TC localizes strings with contexts.
func (c *Catalog) TC(ctx, str string, vars ...interface{}) string {
	return format(c.current().PGettext(ctx, str), vars)
}

func format(translation string, vars []interface{}) string {
	if len(vars) > 0 {
		return fmt.Sprintf(translation, vars...)
	}
	return translation
}

var (
	defaultMu      sync.RWMutex
	defaultCatalog = NewCatalog("appearance", "")
)

// Default returns the process-wide catalog used by T, TN and TC.
func Default() *Catalog {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultCatalog
}

// SetDefault replaces the process-wide catalog.
func SetDefault(c *Catalog) {
	defaultMu.Lock()
	defaultCatalog = c
	defaultMu.Unlock()
}

// T localizes simple strings.
func T(str string, vars ...interface{}) string {
	return Default().T(str, vars...)
}

// TN localizes strings with plurals.
func TN(singular, plural string, n uint32, vars ...interface{}) string {
	return Default().TN(singular, plural, n, vars...)
}

// TC localizes strings with contexts.
func TC(ctx, str string, vars ...interface{}) string {
	return Default().TC(ctx, str, vars...)
}
