// Package option defines the catalog of appearance options: their keys, kinds,
// defaults, enumerations and the side effects a change to them implies.
//
// The catalog is a schema only. Values live in a store (persisted form) or in
// an appearance.Snapshot (editable form); this package provides the codecs
// that translate between the two.
package option

import (
	"errors"
	"fmt"
	"strconv"
)

// Key identifies an option. Keys are stable across sessions and double as the
// persisted setting names.
type Key string

// Option keys.
const (
	EnableAutoScale                 Key = "enableAutoScale"
	TruncatePathMethod              Key = "truncatePathMethod"
	ShowRepoCurrentBranch           Key = "showRepoCurrentBranch"
	ShowCurrentBranchInVisualStudio Key = "showCurrentBranchInVisualStudio"
	ShowAuthorAvatarColumn          Key = "showAuthorAvatarColumn"
	ShowAuthorAvatarInCommitInfo    Key = "showAuthorAvatarInCommitInfo"
	AvatarImageCacheDays            Key = "avatarImageCacheDays"
	AvatarProvider                  Key = "avatarProvider"
	AvatarFallbackType              Key = "avatarFallbackType"
	CustomAvatarTemplate            Key = "customAvatarTemplate"
	SortByAuthorDate                Key = "sortByAuthorDate"
	RefsSortOrder                   Key = "refsSortOrder"
	RefsSortBy                      Key = "refsSortBy"
	RelativeDate                    Key = "relativeDate"
	Translation                     Key = "translation"
	Dictionary                      Key = "dictionary"
)

// Kind is the semantic type of an option.
type Kind uint8

const (
	// Boolean options persist as "true" or "false".
	Boolean Kind = iota
	// Integer options persist in base 10.
	Integer
	// EnumChoice options persist as an enumeration member value.
	EnumChoice
	// FreeText options persist verbatim.
	FreeText
	// FileBackedChoice options select one file from a scanned directory.
	FileBackedChoice
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case Boolean:
		return "boolean"
	case Integer:
		return "integer"
	case EnumChoice:
		return "enum"
	case FreeText:
		return "text"
	case FileBackedChoice:
		return "file"
	default:
		return "unknown"
	}
}

// Effect describes what a change to an option triggers outside the store.
type Effect uint8

const (
	// EffectNone means the option has no collaborator side effect.
	EffectNone Effect = iota
	// EffectAvatarCache marks members of the watched subset: a change to any
	// of them invalidates the avatar image cache.
	EffectAvatarCache
	// EffectReloadStrings means writing the option reinitializes the string
	// catalog, whether or not the value changed.
	EffectReloadStrings
)

// Source names the collaborator that supplies choices for an option whose
// values are discovered at runtime.
type Source uint8

const (
	SourceNone Source = iota
	// SourceDictionaries is the spell-check dictionary directory.
	SourceDictionaries
	// SourceTranslations is the translation catalog. Its entries are only
	// suggestions; the option accepts any text.
	SourceTranslations
)

// Definition describes one option.
type Definition struct {
	Key         Key
	Kind        Kind
	Description string

	// Default is the persisted representation used when the store has no
	// usable value.
	Default string

	// Enum lists the members of an EnumChoice option.
	Enum *Enum

	// Min and Max bound Integer options, inclusive.
	Min, Max int

	Effect Effect
	Source Source

	// VisibleWhen is an optional boolean expression over the persisted values
	// of the other options, e.g. `avatarProvider == "Custom"`.
	VisibleWhen string
}

// Errors returned while decoding persisted values.
var (
	ErrMalformed = errors.New("option: malformed value")
)

// ParseBool decodes a persisted boolean.
func ParseBool(raw string) (bool, error) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", ErrMalformed, raw)
	}
	return v, nil
}

// FormatBool encodes a boolean for the store.
func FormatBool(v bool) string {
	return strconv.FormatBool(v)
}

// ParseInt decodes a persisted integer.
func ParseInt(raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformed, raw)
	}
	return v, nil
}

// FormatInt encodes an integer for the store.
func FormatInt(v int) string {
	return strconv.Itoa(v)
}

// InRange reports whether v satisfies the definition's bounds. A zero Min and
// Max means unbounded.
func (d Definition) InRange(v int) bool {
	if d.Min == 0 && d.Max == 0 {
		return true
	}
	return v >= d.Min && v <= d.Max
}
