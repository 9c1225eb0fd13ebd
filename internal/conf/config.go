package conf

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func init() {
	sources := &ConfigSource{
		Path:      "/etc/appearance/config.toml",
		DropInDir: "/etc/appearance/config.toml.d/",
	}
	config, err := sources.Read()
	if err != nil {
		dto, parseErr := parseConfigDTO(defaultConfig)
		if parseErr != nil {
			panic(fmt.Sprintf("failed to parse embedded defaults: %v", parseErr))
		}
		config.Update(dto)
	}
	Configuration = config
}

// defaultConfig contains the embedded default configuration file.
// This file is compiled into the binary and serves as the base layer
// of configuration before /etc/appearance/config.toml and drop-in files are applied.
//
//go:embed config.toml
var defaultConfig string

// Configuration is the global immutable state.
var Configuration Config

// StoreKind selects the settings store backend.
type StoreKind string

const (
	StoreTOML   StoreKind = "toml"
	StoreYAML   StoreKind = "yaml"
	StoreSQLite StoreKind = "sqlite"
)

// Config represents the immutable public configuration object.
type Config struct {
	LogLevel slog.Level

	Store        StoreKind
	SettingsPath string

	DictionaryDir    string
	DictionarySuffix string

	LocaleDir         string
	TranslationDomain string

	AvatarCacheDir string

	RescanDebounce time.Duration
}

// Update applies non-nil values from a configDTO.
func (c *Config) Update(dto configDTO) {
	if dto.LogLevel != nil {
		switch *dto.LogLevel {
		case "DEBUG":
			c.LogLevel = slog.LevelDebug
		case "INFO":
			c.LogLevel = slog.LevelInfo
		case "WARN":
			c.LogLevel = slog.LevelWarn
		case "ERROR":
			c.LogLevel = slog.LevelError
		}
	}
	if dto.Store != nil {
		c.Store = StoreKind(*dto.Store)
	}
	if dto.SettingsPath != nil {
		c.SettingsPath = expandHome(*dto.SettingsPath)
	}
	if dto.DictionaryDir != nil {
		c.DictionaryDir = expandHome(*dto.DictionaryDir)
	}
	if dto.DictionarySuffix != nil {
		c.DictionarySuffix = *dto.DictionarySuffix
	}
	if dto.LocaleDir != nil {
		c.LocaleDir = expandHome(*dto.LocaleDir)
	}
	if dto.TranslationDomain != nil {
		c.TranslationDomain = *dto.TranslationDomain
	}
	if dto.AvatarCacheDir != nil {
		c.AvatarCacheDir = expandHome(*dto.AvatarCacheDir)
	}
	if dto.RescanDebounce != nil {
		// parseConfigDTO has already validated the duration.
		if d, err := time.ParseDuration(*dto.RescanDebounce); err == nil {
			c.RescanDebounce = d
		}
	}
}

// ConfigSource orchestrates loading configuration from multiple sources.
// See the Read method.
type ConfigSource struct {
	Path      string
	DropInDir string
}

// Read loads and returns the complete Config by merging all layers:
// 1. Embedded defaults
// 2. Main configuration file
// 3. Drop-in files
func (cs *ConfigSource) Read() (Config, error) {
	resolved := Config{}

	dto, err := parseConfigDTO(defaultConfig)
	if err != nil {
		slog.Error("failed to parse embedded defaults", "error", err)
		return resolved, fmt.Errorf("failed to parse embedded defaults: %w", err)
	}
	resolved.Update(dto)

	data, err := os.ReadFile(cs.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			// Existing but unreadable or malformed files are errors, not
			// something to silently skip.
			return resolved, fmt.Errorf("failed to load %s: %w", cs.Path, err)
		}
	} else {
		mainDTO, err := parseConfigDTO(string(data))
		if err != nil {
			return resolved, fmt.Errorf("failed to parse %s: %w", cs.Path, err)
		}
		resolved.Update(mainDTO)
	}

	dropInDTOs, err := cs.parseDropInFiles()
	if err != nil {
		slog.Error("failed to load drop-in files", "error", err, "dir", cs.DropInDir)
		return resolved, err
	}
	for _, dropInDTO := range dropInDTOs {
		resolved.Update(dropInDTO)
	}

	return resolved, nil
}

type configDTO struct {
	LogLevel          *string `toml:"log-level"`
	Store             *string `toml:"store"`
	SettingsPath      *string `toml:"settings-path"`
	DictionaryDir     *string `toml:"dictionary-dir"`
	DictionarySuffix  *string `toml:"dictionary-suffix"`
	LocaleDir         *string `toml:"locale-dir"`
	TranslationDomain *string `toml:"translation-domain"`
	AvatarCacheDir    *string `toml:"avatar-cache-dir"`
	RescanDebounce    *string `toml:"rescan-debounce"`
}

// parseConfigDTO parses a TOML string into a configDTO and rejects values
// that Update could not apply.
func parseConfigDTO(data string) (configDTO, error) {
	var dto configDTO

	if err := toml.Unmarshal([]byte(data), &dto); err != nil {
		return dto, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if dto.Store != nil {
		switch StoreKind(*dto.Store) {
		case StoreTOML, StoreYAML, StoreSQLite:
		default:
			return dto, fmt.Errorf("unsupported store %q", *dto.Store)
		}
	}
	if dto.RescanDebounce != nil {
		if _, err := time.ParseDuration(*dto.RescanDebounce); err != nil {
			return dto, fmt.Errorf("invalid rescan-debounce: %w", err)
		}
	}

	return dto, nil
}

// expandHome replaces a leading "~/" with the user's home directory. The path
// is left alone when the home directory is unknown.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Debug("cannot expand home directory", "error", err, "path", path)
		return path
	}
	return filepath.Join(home, path[2:])
}

// findDropInFiles finds and returns sorted paths to drop-in configuration files.
// Returns nil if the drop-in directory doesn't exist (not an error).
func (cs *ConfigSource) findDropInFiles() ([]string, error) {
	if _, err := os.Stat(cs.DropInDir); os.IsNotExist(err) {
		return nil, nil
	}

	entries, err := os.ReadDir(cs.DropInDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read drop-in directory %s: %w", cs.DropInDir, err)
	}

	var filenames []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".toml") {
			filenames = append(filenames, filepath.Join(cs.DropInDir, entry.Name()))
		}
	}

	sort.Strings(filenames)

	return filenames, nil
}

// parseDropInFiles loads .toml files.
func (cs *ConfigSource) parseDropInFiles() ([]configDTO, error) {
	paths, err := cs.findDropInFiles()
	if err != nil {
		return nil, err
	}

	var dtos []configDTO
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		dto, err := parseConfigDTO(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		dtos = append(dtos, dto)
	}

	return dtos, nil
}
