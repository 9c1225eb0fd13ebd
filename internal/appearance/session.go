// Package appearance synchronizes the appearance options between the
// persisted settings store and an editable Snapshot.
//
// A Loader reads the store into a Snapshot, the user edits it, a Committer
// writes it back and a Dispatcher clears the avatar cache when a commit
// changed how avatars are fetched. A Session ties the three together for a
// single edit cycle.
package appearance

import (
	"context"
	"errors"
	"sync"

	"github.com/gitui/appearance/internal/store"
)

var ErrSessionClosed = errors.New("appearance: session closed")

// Options configures a Session. Nil components are replaced by zero values.
type Options struct {
	Loader     *Loader
	Committer  *Committer
	Dispatcher *Dispatcher
}

// Session is one load, edit and commit cycle against a store. Only one
// session should commit to a store at a time.
type Session struct {
	store      store.Store
	loader     *Loader
	committer  *Committer
	dispatcher *Dispatcher

	mu       sync.Mutex
	snapshot *Snapshot
	closed   bool
}

// Open loads st into a new session.
func Open(ctx context.Context, st store.Store, opts Options) *Session {
	s := &Session{
		store:      st,
		loader:     opts.Loader,
		committer:  opts.Committer,
		dispatcher: opts.Dispatcher,
	}
	if s.loader == nil {
		s.loader = &Loader{}
	}
	if s.committer == nil {
		s.committer = &Committer{}
	}
	if s.dispatcher == nil {
		s.dispatcher = &Dispatcher{}
	}
	s.snapshot = s.loader.Load(ctx, st)
	return s
}

// Snapshot returns the session's editable values.
func (s *Session) Snapshot() *Snapshot {
	return s.snapshot
}

// Rescan refreshes the file-backed choices from disk.
func (s *Session) Rescan(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return s.snapshot.Rescan(ctx, s.loader.Dictionaries)
}

// Commit writes the snapshot and dispatches its side effects. The returned
// channel delivers the avatar cache clear outcome, if any; waiting on it is
// optional. A successful commit closes the session; after a failed one the
// session stays open so the commit can be retried or cancelled.
func (s *Session) Commit(ctx context.Context) (CommitResult, <-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return CommitResult{}, nil, ErrSessionClosed
	}

	result, err := s.committer.Commit(ctx, s.snapshot, s.store)
	if err != nil {
		return result, nil, err
	}
	s.closed = true
	return result, s.dispatcher.Dispatch(ctx, result), nil
}

// Cancel closes the session without writing anything.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	return nil
}
