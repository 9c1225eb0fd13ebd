package choice

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

var errNoDirectory = errors.New("no directory configured")

// Resolver enumerates the choices of one file-backed option.
type Resolver struct {
	// Dir is the directory to scan and Suffix the file name suffix that
	// marks a candidate, e.g. ".dic". The suffix is stripped to form the
	// display name.
	Dir    string
	Suffix string

	Lister Lister

	// NoneLabel is the display label of the no-selection entry.
	NoneLabel string

	Logger *slog.Logger
}

type listing struct {
	names []string
	err   error
}

// Resolve scans the directory and selects current in the result. A current
// selection that is no longer on disk silently resolves to no selection.
//
// When the directory cannot be listed, or ctx ends before the scan does,
// Resolve returns a *DirectoryError together with a usable list holding only
// the no-selection entry.
func (r *Resolver) Resolve(ctx context.Context, current Selection) (Choices, error) {
	files, err := r.list(ctx)
	if err != nil {
		derr := &DirectoryError{Dir: r.Dir, Err: err}
		r.logger().Warn("choice directory unavailable", "dir", r.Dir, "error", err)
		return NoneOnly(r.NoneLabel), derr
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(file, r.Suffix)
		if name == "" || name == file {
			continue
		}
		names = append(names, name)
	}

	c := newChoices(r.NoneLabel, names, current)
	if name, ok := current.Name(); ok && c.SelectedIndex == 0 {
		r.logger().Debug("stale choice reset to none", "dir", r.Dir, "selection", name)
	}
	return c, nil
}

// ResolvePersisted is Resolve for a value read from the store.
func (r *Resolver) ResolvePersisted(ctx context.Context, persisted string) (Choices, error) {
	return r.Resolve(ctx, ParseSelection(persisted))
}

// Rescan refreshes prev from disk, keeping its selection when the entry
// still exists.
func (r *Resolver) Rescan(ctx context.Context, prev Choices) (Choices, error) {
	return r.Resolve(ctx, prev.Selected())
}

func (r *Resolver) list(ctx context.Context) ([]string, error) {
	if r.Dir == "" {
		return nil, errNoDirectory
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan listing, 1)
	go func() {
		names, err := r.lister().ListFiles(r.Dir, r.Suffix)
		done <- listing{names: names, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.names, res.err
	}
}

func (r *Resolver) lister() Lister {
	if r.Lister != nil {
		return r.Lister
	}
	return NewOSLister()
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
