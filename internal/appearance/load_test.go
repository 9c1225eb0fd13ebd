package appearance

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitui/appearance/internal/choice"
	"github.com/gitui/appearance/internal/metrics"
	"github.com/gitui/appearance/internal/option"
	"github.com/gitui/appearance/internal/store"
)

type staticTranslations []string

func (s staticTranslations) Translations() []string { return s }

// dictionaries returns a resolver over an in-memory dictionary directory
// holding a <name>.dic file per name.
func dictionaries(t *testing.T, names ...string) (*choice.Resolver, billy.Filesystem) {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("dicts", 0o755))
	for _, name := range names {
		require.NoError(t, util.WriteFile(fs, filepath.Join("dicts", name+".dic"), []byte("x"), 0o644))
	}
	return &choice.Resolver{
		Dir:       "dicts",
		Suffix:    ".dic",
		Lister:    &choice.FSLister{FS: fs},
		NoneLabel: "None",
	}, fs
}

func newLoader(t *testing.T, dicts ...string) *Loader {
	t.Helper()
	r, _ := dictionaries(t, dicts...)
	return &Loader{
		Dictionaries: r,
		Translations: staticTranslations{"de", "fr"},
	}
}

// fullSettings has a valid stored value for every option.
func fullSettings() map[string]string {
	return map[string]string{
		"enableAutoScale":                 "false",
		"truncatePathMethod":              "TrimStart",
		"showRepoCurrentBranch":           "false",
		"showCurrentBranchInVisualStudio": "true",
		"showAuthorAvatarColumn":          "false",
		"showAuthorAvatarInCommitInfo":    "true",
		"avatarImageCacheDays":            "30",
		"avatarProvider":                  "Custom",
		"avatarFallbackType":              "Retro",
		"customAvatarTemplate":            "https://avatars.example.com/{email}",
		"sortByAuthorDate":                "true",
		"refsSortOrder":                   "Ascending",
		"refsSortBy":                      "committerdate",
		"relativeDate":                    "false",
		"translation":                     "de",
		"dictionary":                      "en-US",
	}
}

// faultyStore fails reads or writes of selected keys.
type faultyStore struct {
	*store.Memory
	getErr map[string]error
	setErr map[string]error
	sets   []string
}

func (f *faultyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := f.getErr[key]; err != nil {
		return "", false, err
	}
	return f.Memory.Get(ctx, key)
}

func (f *faultyStore) Set(ctx context.Context, key, value string) error {
	if err := f.setErr[key]; err != nil {
		return err
	}
	f.sets = append(f.sets, key)
	return f.Memory.Set(ctx, key, value)
}

func TestLoad_CopiesStoredValues(t *testing.T) {
	s := newLoader(t, "en-US", "de-DE").Load(context.Background(), store.NewMemory(fullSettings()))
	require.Empty(t, s.Warnings())

	autoScale, err := s.Bool(option.EnableAutoScale)
	require.NoError(t, err)
	assert.False(t, autoScale)

	days, err := s.Int(option.AvatarImageCacheDays)
	require.NoError(t, err)
	assert.Equal(t, 30, days)

	template, err := s.Text(option.CustomAvatarTemplate)
	require.NoError(t, err)
	assert.Equal(t, "https://avatars.example.com/{email}", template)

	truncate, err := s.Choice(option.TruncatePathMethod)
	require.NoError(t, err)
	assert.Equal(t, 2, truncate.Selected)

	dict, err := s.Choice(option.Dictionary)
	require.NoError(t, err)
	assert.Equal(t, []string{"None", "de-DE", "en-US"}, dict.Labels)
	assert.Equal(t, 2, dict.Selected)
}

func TestLoad_MissingValuesUseDefaults(t *testing.T) {
	s := newLoader(t, "en-US").Load(context.Background(), store.NewMemory(nil))

	for _, def := range option.Default().Definitions() {
		v, ok, err := s.Value(def.Key)
		require.NoError(t, err)
		assert.True(t, ok, "%s", def.Key)
		assert.Equal(t, def.Default, v, "%s", def.Key)
	}
}

func TestLoad_MalformedValuesDegradeToDefaults(t *testing.T) {
	st := store.NewMemory(map[string]string{
		"enableAutoScale":      "maybe",
		"relativeDate":         "",
		"avatarImageCacheDays": "a fortnight",
		"sortByAuthorDate":     "TRUE",
	})
	s := newLoader(t).Load(context.Background(), st)

	autoScale, _ := s.Bool(option.EnableAutoScale)
	assert.True(t, autoScale)
	relative, _ := s.Bool(option.RelativeDate)
	assert.True(t, relative)
	sortByAuthor, _ := s.Bool(option.SortByAuthorDate)
	assert.True(t, sortByAuthor)
	days, _ := s.Int(option.AvatarImageCacheDays)
	assert.Equal(t, 13, days)

	assert.Empty(t, s.Warnings(), "malformed values are normalized silently")
}

func TestLoad_OutOfRangeIntegerUsesDefault(t *testing.T) {
	for _, stored := range []string{"0", "-5", "366"} {
		s := newLoader(t).Load(context.Background(), store.NewMemory(map[string]string{"avatarImageCacheDays": stored}))
		days, err := s.Int(option.AvatarImageCacheDays)
		require.NoError(t, err)
		assert.Equal(t, 13, days, "stored %q", stored)
	}
}

func TestLoad_EnumOffersAllMembers(t *testing.T) {
	tests := []struct {
		name     string
		key      option.Key
		stored   string
		members  int
		selected int
	}{
		{name: "known sort order", key: option.RefsSortOrder, stored: "Ascending", members: 2, selected: 0},
		{name: "known sort key", key: option.RefsSortBy, stored: "taggerdate", members: 9, selected: 8},
		{name: "unknown sort key", key: option.RefsSortBy, stored: "version:refname", members: 9, selected: NoSelection},
		{name: "unknown provider", key: option.AvatarProvider, stored: "Libravatar", members: 3, selected: NoSelection},
		{name: "case differs", key: option.AvatarFallbackType, stored: "identicon", members: 7, selected: NoSelection},
		{name: "unknown truncation", key: option.TruncatePathMethod, stored: "Middle", members: 4, selected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newLoader(t).Load(context.Background(), store.NewMemory(map[string]string{string(tt.key): tt.stored}))
			c, err := s.Choice(tt.key)
			require.NoError(t, err)
			assert.Len(t, c.Labels, tt.members)
			assert.Equal(t, tt.selected, c.Selected)
		})
	}
}

func TestLoad_Translations(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		selected int
	}{
		{name: "built in", stored: "English", selected: 0},
		{name: "installed", stored: "fr", selected: 2},
		{name: "not installed", stored: "Klingon", selected: NoSelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newLoader(t).Load(context.Background(), store.NewMemory(map[string]string{"translation": tt.stored}))

			c, err := s.Choice(option.Translation)
			require.NoError(t, err)
			assert.Equal(t, []string{"English", "de", "fr"}, c.Labels)
			assert.Equal(t, tt.selected, c.Selected)

			text, err := s.Text(option.Translation)
			require.NoError(t, err)
			assert.Equal(t, tt.stored, text)
		})
	}
}

func TestLoad_NoTranslationCatalog(t *testing.T) {
	s := (&Loader{}).Load(context.Background(), store.NewMemory(nil))
	c, err := s.Choice(option.Translation)
	require.NoError(t, err)
	assert.Equal(t, []string{"English"}, c.Labels)
	assert.Equal(t, 0, c.Selected)
}

func TestLoad_DictionaryDirectoryUnavailable(t *testing.T) {
	reg := prometheus.NewRegistry()
	loader := &Loader{
		Dictionaries: &choice.Resolver{
			Dir:       "/usr/share/hunspell",
			Suffix:    ".dic",
			NoneLabel: "None",
			Lister: choice.ListerFunc(func(string, string) ([]string, error) {
				return nil, errors.New("permission denied")
			}),
		},
		Metrics: metrics.New(reg),
	}

	s := loader.Load(context.Background(), store.NewMemory(map[string]string{"dictionary": "en-US"}))

	require.Len(t, s.Warnings(), 1)
	assert.ErrorIs(t, s.Warnings()[0], choice.ErrDirectoryUnavailable)

	c, err := s.Choice(option.Dictionary)
	require.NoError(t, err)
	assert.Equal(t, []string{"None", "en-US"}, c.Labels)
	assert.Equal(t, 1, c.Selected)

	assert.Equal(t, 1.0, counterValue(t, reg, "appearance_directory_scan_failures_total", ""))
}

func TestLoad_StoreReadFailure(t *testing.T) {
	st := &faultyStore{
		Memory: store.NewMemory(map[string]string{"relativeDate": "false"}),
		getErr: map[string]error{"relativeDate": errors.New("registry hive locked")},
	}
	s := newLoader(t).Load(context.Background(), st)

	require.Len(t, s.Warnings(), 1)
	relative, err := s.Bool(option.RelativeDate)
	require.NoError(t, err)
	assert.True(t, relative)
	assert.Empty(t, st.sets, "load must not write")
}

func TestLoad_NeverWrites(t *testing.T) {
	st := &faultyStore{Memory: store.NewMemory(map[string]string{
		"truncatePathMethod": "Bogus",
		"dictionary":         "gone",
	})}
	newLoader(t, "en-US").Load(context.Background(), st)

	assert.Empty(t, st.sets)
	assert.Equal(t, map[string]string{"truncatePathMethod": "Bogus", "dictionary": "gone"}, st.Values())
}

// counterValue sums the samples of a counter family, optionally restricted
// to the series whose "result" label equals result.
func counterValue(t *testing.T, reg *prometheus.Registry, name, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var sum float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if result != "" {
				match := false
				for _, l := range m.GetLabel() {
					if l.GetName() == "result" && l.GetValue() == result {
						match = true
					}
				}
				if !match {
					continue
				}
			}
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}
