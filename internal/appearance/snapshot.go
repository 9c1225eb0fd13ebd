package appearance

import (
	"context"
	"errors"
	"fmt"

	"github.com/gitui/appearance/internal/choice"
	"github.com/gitui/appearance/internal/option"
)

// Errors returned by Snapshot accessors and edits.
var (
	ErrUnknownOption = errors.New("appearance: unknown option")
	ErrKindMismatch  = errors.New("appearance: wrong kind for option")
	ErrNoSuchChoice  = errors.New("appearance: no such choice")
)

// RangeError reports an integer outside the bounds of its option.
type RangeError struct {
	Key      option.Key
	Value    int
	Min, Max int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("appearance: %s: %d is outside [%d, %d]", e.Key, e.Value, e.Min, e.Max)
}

// NoSelection is the Selected position of a list with nothing selected.
const NoSelection = -1

// Choice is the display form of an option that offers a list of values.
type Choice struct {
	Labels []string
	// Selected is a position in Labels, or NoSelection.
	Selected int
}

type field struct {
	def option.Definition

	boolean bool
	integer int
	text    string

	// index is the display position of an EnumChoice option, or NoSelection.
	index int

	files choice.Choices
	// stored is the persisted value of a file-backed option whose directory
	// could not be scanned. It is written back unchanged unless the user
	// picks another entry.
	stored     string
	keepStored bool

	// suggestions are offered for free-text options with a choice source.
	suggestions []string
}

// Snapshot is the editable in-memory form of every catalog option. It is
// produced by a Loader and consumed by a Committer; it is not safe for
// concurrent use.
type Snapshot struct {
	catalog  *option.Catalog
	fields   map[option.Key]*field
	warnings []error
}

func newSnapshot(catalog *option.Catalog) *Snapshot {
	return &Snapshot{
		catalog: catalog,
		fields:  make(map[option.Key]*field),
	}
}

// Keys returns the option keys in catalog order.
func (s *Snapshot) Keys() []option.Key {
	defs := s.catalog.Definitions()
	keys := make([]option.Key, 0, len(defs))
	for _, d := range defs {
		keys = append(keys, d.Key)
	}
	return keys
}

// Definition returns the catalog entry of key.
func (s *Snapshot) Definition(key option.Key) (option.Definition, error) {
	f, err := s.field(key)
	if err != nil {
		return option.Definition{}, err
	}
	return f.def, nil
}

// Warnings returns the non-fatal problems met while loading, such as an
// unreadable dictionary directory.
func (s *Snapshot) Warnings() []error {
	return append([]error(nil), s.warnings...)
}

func (s *Snapshot) field(key option.Key) (*field, error) {
	f, ok := s.fields[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOption, key)
	}
	return f, nil
}

func (s *Snapshot) fieldOf(key option.Key, kinds ...option.Kind) (*field, error) {
	f, err := s.field(key)
	if err != nil {
		return nil, err
	}
	for _, k := range kinds {
		if f.def.Kind == k {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s is %s", ErrKindMismatch, key, f.def.Kind)
}

// Bool returns the value of a Boolean option.
func (s *Snapshot) Bool(key option.Key) (bool, error) {
	f, err := s.fieldOf(key, option.Boolean)
	if err != nil {
		return false, err
	}
	return f.boolean, nil
}

// SetBool sets a Boolean option.
func (s *Snapshot) SetBool(key option.Key, v bool) error {
	f, err := s.fieldOf(key, option.Boolean)
	if err != nil {
		return err
	}
	f.boolean = v
	return nil
}

// Int returns the value of an Integer option.
func (s *Snapshot) Int(key option.Key) (int, error) {
	f, err := s.fieldOf(key, option.Integer)
	if err != nil {
		return 0, err
	}
	return f.integer, nil
}

// SetInt sets an Integer option. Values outside the option's bounds are
// rejected with a *RangeError.
func (s *Snapshot) SetInt(key option.Key, v int) error {
	f, err := s.fieldOf(key, option.Integer)
	if err != nil {
		return err
	}
	if !f.def.InRange(v) {
		return &RangeError{Key: key, Value: v, Min: f.def.Min, Max: f.def.Max}
	}
	f.integer = v
	return nil
}

// Text returns the value of a FreeText option.
func (s *Snapshot) Text(key option.Key) (string, error) {
	f, err := s.fieldOf(key, option.FreeText)
	if err != nil {
		return "", err
	}
	return f.text, nil
}

// SetText sets a FreeText option. Options with suggestions accept any text.
func (s *Snapshot) SetText(key option.Key, v string) error {
	f, err := s.fieldOf(key, option.FreeText)
	if err != nil {
		return err
	}
	f.text = v
	return nil
}

// Choice returns the list offered for an EnumChoice, FileBackedChoice or
// suggested FreeText option, and the selected position. A free-text value
// that matches no suggestion has no selection. A file-backed option whose
// directory could not be listed ends with its stored name, selected.
func (s *Snapshot) Choice(key option.Key) (Choice, error) {
	f, err := s.fieldOf(key, option.EnumChoice, option.FileBackedChoice, option.FreeText)
	if err != nil {
		return Choice{}, err
	}

	switch f.def.Kind {
	case option.EnumChoice:
		c := Choice{Labels: make([]string, len(f.def.Enum.Members)), Selected: f.index}
		for i, m := range f.def.Enum.Members {
			c.Labels[i] = m.Description
		}
		return c, nil
	case option.FileBackedChoice:
		c := Choice{Labels: f.files.Labels(), Selected: f.files.SelectedIndex}
		if name, ok := f.kept(); ok {
			c.Labels = append(c.Labels, name)
			c.Selected = len(c.Labels) - 1
		}
		return c, nil
	default:
		if f.suggestions == nil {
			return Choice{}, fmt.Errorf("%w: %s offers no choices", ErrKindMismatch, key)
		}
		c := Choice{Labels: append([]string(nil), f.suggestions...), Selected: NoSelection}
		for i, v := range f.suggestions {
			if v == f.text {
				c.Selected = i
				break
			}
		}
		return c, nil
	}
}

// Select picks the entry at position index of the option's Choice list.
func (s *Snapshot) Select(key option.Key, index int) error {
	c, err := s.Choice(key)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(c.Labels) {
		return fmt.Errorf("%w: %s has no entry %d", ErrNoSuchChoice, key, index)
	}

	f := s.fields[key]
	switch f.def.Kind {
	case option.EnumChoice:
		f.index = index
	case option.FileBackedChoice:
		if _, ok := f.kept(); ok && index == len(c.Labels)-1 {
			return nil
		}
		f.files.SelectedIndex = index
		f.keepStored = false
	default:
		f.text = f.suggestions[index]
	}
	return nil
}

// SelectValue picks an entry by its persisted value: an enumeration member,
// a file name (or "none"), or a suggested text.
func (s *Snapshot) SelectValue(key option.Key, value string) error {
	f, err := s.fieldOf(key, option.EnumChoice, option.FileBackedChoice, option.FreeText)
	if err != nil {
		return err
	}

	switch f.def.Kind {
	case option.EnumChoice:
		for _, m := range f.def.Enum.Members {
			if m.Value == value {
				f.index = m.Index
				return nil
			}
		}
		return fmt.Errorf("%w: %q is not a %s", ErrNoSuchChoice, value, f.def.Enum.Name)
	case option.FileBackedChoice:
		if name, ok := f.kept(); ok && name == value {
			return nil
		}
		sel := choice.ParseSelection(value)
		i := f.files.IndexOf(sel)
		if i == 0 && !sel.IsNone() {
			return fmt.Errorf("%w: %s has no entry %q", ErrNoSuchChoice, key, value)
		}
		f.files.SelectedIndex = i
		f.keepStored = false
		return nil
	default:
		f.text = value
		return nil
	}
}

// Set assigns a value given in its persisted form, parsed according to the
// option's kind.
func (s *Snapshot) Set(key option.Key, raw string) error {
	f, err := s.field(key)
	if err != nil {
		return err
	}

	switch f.def.Kind {
	case option.Boolean:
		v, err := option.ParseBool(raw)
		if err != nil {
			return err
		}
		return s.SetBool(key, v)
	case option.Integer:
		v, err := option.ParseInt(raw)
		if err != nil {
			return err
		}
		return s.SetInt(key, v)
	case option.FreeText:
		return s.SetText(key, raw)
	default:
		return s.SelectValue(key, raw)
	}
}

// Value returns the persisted representation key would be committed as. ok
// is false for an enumeration with no selection, which is not written.
func (s *Snapshot) Value(key option.Key) (value string, ok bool, err error) {
	f, err := s.field(key)
	if err != nil {
		return "", false, err
	}
	value, ok = f.persisted()
	return value, ok, nil
}

func (f *field) persisted() (string, bool) {
	switch f.def.Kind {
	case option.Boolean:
		return option.FormatBool(f.boolean), true
	case option.Integer:
		return option.FormatInt(f.integer), true
	case option.EnumChoice:
		return f.def.Enum.ValueAt(f.index)
	case option.FileBackedChoice:
		if f.keepStored {
			return f.stored, true
		}
		return f.files.Selected().Persisted(), true
	default:
		return f.text, true
	}
}

// kept returns the stored file name held while its directory is
// unavailable. A kept "none" is already the first entry and is not
// reported.
func (f *field) kept() (string, bool) {
	if !f.keepStored || choice.ParseSelection(f.stored).IsNone() {
		return "", false
	}
	return f.stored, true
}

func (s *Snapshot) values() map[option.Key]string {
	out := make(map[option.Key]string, len(s.fields))
	for key, f := range s.fields {
		if v, ok := f.persisted(); ok {
			out[key] = v
		}
	}
	return out
}

// Visible reports whether key should be offered for editing given the
// current values of the other options.
func (s *Snapshot) Visible(key option.Key) (bool, error) {
	if _, err := s.field(key); err != nil {
		return false, err
	}
	return s.catalog.Visible(key, s.values())
}

// Rescan refreshes the entries of every file-backed option from disk. The
// current selection is kept when its file still exists and otherwise falls
// back to no selection. When a directory cannot be listed the option keeps
// its current persisted value and the *choice.DirectoryError is returned.
func (s *Snapshot) Rescan(ctx context.Context, r *choice.Resolver) error {
	if r == nil {
		r = &choice.Resolver{}
	}
	var errs []error
	for _, key := range s.Keys() {
		f := s.fields[key]
		if f.def.Kind != option.FileBackedChoice {
			continue
		}

		current, _ := f.persisted()
		c, err := r.ResolvePersisted(ctx, current)
		f.files = c
		if err != nil {
			f.stored, f.keepStored = current, true
			errs = append(errs, err)
			continue
		}
		f.keepStored = false
	}
	return errors.Join(errs...)
}
