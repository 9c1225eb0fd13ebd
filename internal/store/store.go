// Package store defines the persisted settings contract the appearance engine
// reads from and writes to, and a few key/value backends implementing it.
//
// Values cross the store boundary in their persisted string form; decoding
// into typed option values is the option package's job.
package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrPersistenceFailure matches any error caused by the underlying
	// storage rejecting a read or write.
	ErrPersistenceFailure = errors.New("store: persistence failure")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store: closed")
)

// Store is a key/value settings store.
type Store interface {
	// Get returns the persisted value of key. ok is false when the key has
	// never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set persists value under key.
	Set(ctx context.Context, key, value string) error
}

// PersistenceError wraps a storage failure for one key.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is matches ErrPersistenceFailure.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistenceFailure
}

func readError(key string, err error) error {
	return &PersistenceError{Op: "get", Key: key, Err: err}
}

func writeError(key string, err error) error {
	return &PersistenceError{Op: "set", Key: key, Err: err}
}
