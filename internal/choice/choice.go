// Package choice discovers the valid values of file-backed options by
// scanning a directory, and resolves a persisted selection against them.
//
// A file-backed option always offers a synthetic "no selection" entry first.
// Inside this package and its callers that entry is the zero Selection; the
// literal "none" only appears at the store boundary (ParseSelection and
// Selection.Persisted).
package choice

import (
	"errors"
	"fmt"
	"strings"
)

// NoneValue is the persisted representation of "no selection".
const NoneValue = "none"

var ErrDirectoryUnavailable = errors.New("choice: directory unavailable")

// DirectoryError reports a directory that could not be listed.
type DirectoryError struct {
	Dir string
	Err error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("choice: cannot list %s: %v", e.Dir, e.Err)
}

func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// Is matches ErrDirectoryUnavailable.
func (e *DirectoryError) Is(target error) bool {
	return target == ErrDirectoryUnavailable
}

// Selection is a file-backed option value. The zero value means no selection.
type Selection struct {
	name string
}

// Select returns a selection of the named entry. An empty name is no
// selection.
func Select(name string) Selection {
	return Selection{name: name}
}

// ParseSelection decodes a persisted value. "none" in any case is no
// selection.
func ParseSelection(persisted string) Selection {
	if strings.EqualFold(persisted, NoneValue) {
		return Selection{}
	}
	return Selection{name: persisted}
}

// Name returns the selected entry name and whether there is one.
func (s Selection) Name() (string, bool) {
	return s.name, s.name != ""
}

// IsNone reports whether s is the "no selection" value.
func (s Selection) IsNone() bool {
	return s.name == ""
}

// Persisted returns the store representation of s.
func (s Selection) Persisted() string {
	if s.IsNone() {
		return NoneValue
	}
	return s.name
}

// Entry is one item of a choice list.
type Entry struct {
	Label     string
	Selection Selection
}

// Choices is a resolved choice list. Entries[0] is always the no-selection
// entry and SelectedIndex is always a valid position in Entries.
type Choices struct {
	Entries       []Entry
	SelectedIndex int
}

// NoneOnly returns a list holding only the no-selection entry, selected.
func NoneOnly(noneLabel string) Choices {
	return Choices{Entries: []Entry{{Label: noneLabel}}}
}

func newChoices(noneLabel string, names []string, current Selection) Choices {
	c := Choices{Entries: make([]Entry, 0, len(names)+1)}
	c.Entries = append(c.Entries, Entry{Label: noneLabel})
	for _, name := range names {
		c.Entries = append(c.Entries, Entry{Label: name, Selection: Select(name)})
	}
	c.SelectedIndex = c.IndexOf(current)
	return c
}

// Selected returns the selected entry's value.
func (c Choices) Selected() Selection {
	if c.SelectedIndex <= 0 || c.SelectedIndex >= len(c.Entries) {
		return Selection{}
	}
	return c.Entries[c.SelectedIndex].Selection
}

// IndexOf returns the position of sel, or 0 when it is not listed.
func (c Choices) IndexOf(sel Selection) int {
	if sel.IsNone() {
		return 0
	}
	for i, e := range c.Entries {
		if i > 0 && e.Selection == sel {
			return i
		}
	}
	return 0
}

// Labels returns the entry labels in order.
func (c Choices) Labels() []string {
	out := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Label
	}
	return out
}
