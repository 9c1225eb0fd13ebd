package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(map[string]string{"dictionary": "en-US"})

	if v, ok, err := m.Get(ctx, "dictionary"); err != nil || !ok || v != "en-US" {
		t.Fatalf("Get() = %q, %t, %v", v, ok, err)
	}
	if _, ok, _ := m.Get(ctx, "translation"); ok {
		t.Error("expected missing key")
	}
	if err := m.Set(ctx, "translation", "de"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	want := map[string]string{"dictionary": "en-US", "translation": "de"}
	if diff := cmp.Diff(want, m.Values()); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
}

func TestFile_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		codec Codec
		file  string
	}{
		{name: "toml", codec: TOML, file: "settings.toml"},
		{name: "yaml", codec: YAML, file: "settings.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "nested", tt.file)

			f, err := OpenFile(path, tt.codec)
			if err != nil {
				t.Fatalf("OpenFile() on missing file: %v", err)
			}
			values := map[string]string{
				"enableAutoScale":      "true",
				"avatarImageCacheDays": "13",
				"customAvatarTemplate": "http://x/{hash}",
				"dictionary":           "none",
			}
			for k, v := range values {
				if err := f.Set(ctx, k, v); err != nil {
					t.Fatalf("Set(%s) error: %v", k, err)
				}
			}

			reopened, err := OpenFile(path, tt.codec)
			if err != nil {
				t.Fatalf("OpenFile() error: %v", err)
			}
			got := map[string]string{}
			for k := range values {
				v, ok, err := reopened.Get(ctx, k)
				if err != nil || !ok {
					t.Fatalf("Get(%s) = %q, %t, %v", k, v, ok, err)
				}
				got[k] = v
			}
			if diff := cmp.Diff(values, got); diff != "" {
				t.Errorf("reopened values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFile_HandEditedScalars(t *testing.T) {
	tests := []struct {
		name    string
		codec   Codec
		content string
	}{
		{
			name:  "toml",
			codec: TOML,
			content: `enableAutoScale = false
avatarImageCacheDays = 30
translation = "de"
`,
		},
		{
			name:  "yaml",
			codec: YAML,
			content: `enableAutoScale: false
avatarImageCacheDays: 30
translation: de
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write settings: %v", err)
			}
			f, err := OpenFile(path, tt.codec)
			if err != nil {
				t.Fatalf("OpenFile() error: %v", err)
			}

			want := map[string]string{
				"enableAutoScale":      "false",
				"avatarImageCacheDays": "30",
				"translation":          "de",
			}
			for k, w := range want {
				if v, _, _ := f.Get(context.Background(), k); v != w {
					t.Errorf("Get(%s) = %q, want %q", k, v, w)
				}
			}
		})
	}
}

func TestFile_MalformedFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte("not valid toml ==="), 0644); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
	if _, err := OpenFile(path, TOML); err == nil {
		t.Error("expected error but got none")
	}
}

func TestFile_WriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	f, err := OpenFile(filepath.Join(blocker, "settings.toml"), TOML)
	if err != nil {
		t.Fatalf("OpenFile() error: %v", err)
	}

	// The parent "directory" is a regular file, so every write fails.
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatalf("failed to write blocker: %v", err)
	}

	err = f.Set(context.Background(), "dictionary", "en-US")
	if !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("Set() error = %v, want ErrPersistenceFailure", err)
	}
	var perr *PersistenceError
	if !errors.As(err, &perr) || perr.Key != "dictionary" || perr.Op != "set" {
		t.Errorf("unexpected persistence error: %#v", err)
	}
	if _, ok, _ := f.Get(context.Background(), "dictionary"); ok {
		t.Error("failed Set must not change the in-memory state")
	}
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}

	if _, ok, err := s.Get(ctx, "dictionary"); err != nil || ok {
		t.Fatalf("Get() on empty db = %t, %v", ok, err)
	}
	if err := s.Set(ctx, "dictionary", "en-US"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := s.Set(ctx, "dictionary", "none"); err != nil {
		t.Fatalf("Set() upsert error: %v", err)
	}
	if v, ok, err := s.Get(ctx, "dictionary"); err != nil || !ok || v != "none" {
		t.Errorf("Get() = %q, %t, %v; want none", v, ok, err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := s.Set(ctx, "dictionary", "de-DE"); !errors.Is(err, ErrPersistenceFailure) {
		t.Errorf("Set() after close error = %v, want ErrPersistenceFailure", err)
	}
	if _, _, err := s.Get(ctx, "dictionary"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get() after close error = %v, want ErrClosed", err)
	}
}

func TestImportINI(t *testing.T) {
	data := []byte(`[appearance]
AvatarProvider=Custom
CustomAvatarTemplate=http://x/{hash}
Dictionary=none
`)
	dst := NewMemory(nil)
	n, err := ImportINI(context.Background(), data, dst)
	if err != nil {
		t.Fatalf("ImportINI() error: %v", err)
	}
	if n != 3 {
		t.Errorf("ImportINI() wrote %d keys, want 3", n)
	}

	want := map[string]string{
		"avatarProvider":       "Custom",
		"customAvatarTemplate": "http://x/{hash}",
		"dictionary":           "none",
	}
	if diff := cmp.Diff(want, dst.Values()); diff != "" {
		t.Errorf("imported values mismatch (-want +got):\n%s", diff)
	}
}

func TestImportINIFile_Missing(t *testing.T) {
	_, err := ImportINIFile(context.Background(), filepath.Join(t.TempDir(), "missing.ini"), NewMemory(nil))
	if err == nil {
		t.Error("expected error but got none")
	}
}
