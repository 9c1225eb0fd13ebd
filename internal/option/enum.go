package option

import "fmt"

// Member is one row of an enumeration table: the position it is displayed at
// and the value written to the store.
type Member struct {
	Index       int
	Value       string
	Description string
}

// Enum is an explicit bijection between display positions and persisted
// values. Positions never derive from declaration order of a Go constant
// block; changing the table requires bumping Version.
type Enum struct {
	Name    string
	Version int
	Members []Member

	// Fallback is the member value that unknown stored values and
	// out-of-range positions collapse to. Empty means no fallback: such
	// values leave the option without a selection.
	Fallback string
}

func mustEnum(e *Enum) *Enum {
	for i, m := range e.Members {
		if m.Index != i {
			panic(fmt.Sprintf("option: enum %s: member %q has index %d, want %d", e.Name, m.Value, m.Index, i))
		}
	}
	if e.Fallback != "" {
		if _, ok := e.lookup(e.Fallback); !ok {
			panic(fmt.Sprintf("option: enum %s: fallback %q is not a member", e.Name, e.Fallback))
		}
	}
	return e
}

func (e *Enum) lookup(value string) (int, bool) {
	for _, m := range e.Members {
		if m.Value == value {
			return m.Index, true
		}
	}
	return -1, false
}

// IndexOf maps a persisted value to its display position. Unknown values map
// to the fallback member, or report false when the enum has none.
func (e *Enum) IndexOf(value string) (int, bool) {
	if i, ok := e.lookup(value); ok {
		return i, true
	}
	if e.Fallback != "" {
		return e.lookup(e.Fallback)
	}
	return -1, false
}

// ValueAt maps a display position back to its persisted value. Positions
// outside the table map to the fallback member, or report false when the
// enum has none.
func (e *Enum) ValueAt(index int) (string, bool) {
	if index >= 0 && index < len(e.Members) {
		return e.Members[index].Value, true
	}
	if e.Fallback != "" {
		return e.Fallback, true
	}
	return "", false
}

// Values returns the persisted values in display order.
func (e *Enum) Values() []string {
	out := make([]string, len(e.Members))
	for i, m := range e.Members {
		out[i] = m.Value
	}
	return out
}

// Enumerations used by the catalog.
var (
	TruncatePathMethods = mustEnum(&Enum{
		Name:    "TruncatePathMethod",
		Version: 1,
		Members: []Member{
			{Index: 0, Value: "None", Description: "None"},
			{Index: 1, Value: "Compact", Description: "Compact"},
			{Index: 2, Value: "TrimStart", Description: "Trim start"},
			{Index: 3, Value: "FileNameOnly", Description: "Filename only"},
		},
		Fallback: "None",
	})

	GitRefsSortOrders = mustEnum(&Enum{
		Name:    "GitRefsSortOrder",
		Version: 1,
		Members: []Member{
			{Index: 0, Value: "Ascending", Description: "Ascending"},
			{Index: 1, Value: "Descending", Description: "Descending"},
		},
	})

	GitRefsSortBys = mustEnum(&Enum{
		Name:    "GitRefsSortBy",
		Version: 1,
		Members: []Member{
			{Index: 0, Value: "Default", Description: "Default"},
			{Index: 1, Value: "authordate", Description: "Author date"},
			{Index: 2, Value: "committerdate", Description: "Committer date"},
			{Index: 3, Value: "creatordate", Description: "Creator date"},
			{Index: 4, Value: "deltabase", Description: "Delta base"},
			{Index: 5, Value: "objectname", Description: "Object name"},
			{Index: 6, Value: "objectsize", Description: "Object size"},
			{Index: 7, Value: "refname", Description: "Ref name"},
			{Index: 8, Value: "taggerdate", Description: "Tagger date"},
		},
	})

	AvatarProviders = mustEnum(&Enum{
		Name:    "AvatarProvider",
		Version: 1,
		Members: []Member{
			{Index: 0, Value: "Default", Description: "Default"},
			{Index: 1, Value: "Custom", Description: "Custom"},
			{Index: 2, Value: "None", Description: "None"},
		},
	})

	AvatarFallbackTypes = mustEnum(&Enum{
		Name:    "AvatarFallbackType",
		Version: 1,
		Members: []Member{
			{Index: 0, Value: "AuthorInitials", Description: "Author initials"},
			{Index: 1, Value: "Gravatar", Description: "Gravatar"},
			{Index: 2, Value: "Identicon", Description: "Identicon"},
			{Index: 3, Value: "MonsterId", Description: "Monster ID"},
			{Index: 4, Value: "Wavatar", Description: "Wavatar"},
			{Index: 5, Value: "Retro", Description: "Retro"},
			{Index: 6, Value: "Robohash", Description: "Robohash"},
		},
	})
)
