package l10n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCatalog_Translations(t *testing.T) {
	localeDir := t.TempDir()
	for _, lang := range []string{"fr", "de", "pl"} {
		dir := filepath.Join(localeDir, lang, "LC_MESSAGES")
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	// pl has no catalog for this domain, only for another one.
	for _, file := range []string{"fr/LC_MESSAGES/appearance.mo", "de/LC_MESSAGES/appearance.mo", "pl/LC_MESSAGES/other.mo"} {
		if err := os.WriteFile(filepath.Join(localeDir, file), nil, 0644); err != nil {
			t.Fatalf("failed to write %s: %v", file, err)
		}
	}
	if err := os.WriteFile(filepath.Join(localeDir, "README"), nil, 0644); err != nil {
		t.Fatalf("failed to write README: %v", err)
	}

	c := NewCatalog("appearance", localeDir)
	if diff := cmp.Diff([]string{"de", "fr"}, c.Translations()); diff != "" {
		t.Errorf("Translations() mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog_TranslationsDegradeToEmpty(t *testing.T) {
	tests := []struct {
		name      string
		localeDir string
	}{
		{name: "no locale dir configured", localeDir: ""},
		{name: "missing locale dir", localeDir: filepath.Join(t.TempDir(), "missing")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewCatalog("appearance", tt.localeDir).Translations(); len(got) != 0 {
				t.Errorf("Translations() = %v, want empty", got)
			}
		})
	}
}

func TestCatalog_Reinitialize(t *testing.T) {
	c := NewCatalog("appearance", t.TempDir())

	for _, translation := range []string{English, "xx", English, ""} {
		c.Reinitialize(translation)
		if got := c.Active(); got != translation {
			t.Errorf("Active() = %q, want %q", got, translation)
		}
		if got := c.T("Avatar provider"); got != "Avatar provider" {
			t.Errorf("T() = %q, want untranslated text", got)
		}
	}
}

func TestCatalog_Format(t *testing.T) {
	c := NewCatalog("appearance", t.TempDir())
	c.Reinitialize(English)

	if got := c.T("No dictionary files found in: %s", "/tmp/dicts"); got != "No dictionary files found in: /tmp/dicts" {
		t.Errorf("T() = %q", got)
	}
	if got := c.TC("avatar", "Provider: %s", "Custom"); got != "Provider: Custom" {
		t.Errorf("TC() = %q", got)
	}
}

func TestDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	c := NewCatalog("appearance", t.TempDir())
	SetDefault(c)
	c.Reinitialize(English)
	if got := T("None"); got != "None" {
		t.Errorf("T() = %q, want None", got)
	}
}
