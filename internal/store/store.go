// Package store persists session records.
//
// A store is an ordered collection of records that is loaded and saved as a
// whole. Appending is a read-modify-write and is not safe to run from two
// appenders at once; callers sharing a store wrap it with Locked.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/verte-zerg/tuispeak/internal/model"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

var (
	// ErrStoreCorrupt reports persisted data that could not be parsed.
	ErrStoreCorrupt = errors.New("session store is corrupt")
	// ErrStoreWrite reports a failed write; the previous store is left intact.
	ErrStoreWrite = errors.New("session store write failed")
)

// Store is an ordered collection of session records.
type Store interface {
	// Append adds rec after every existing record.
	Append(ctx context.Context, rec model.SessionRecord) error
	// LoadAll returns every record, or an empty slice when nothing is stored.
	LoadAll(ctx context.Context) ([]model.SessionRecord, error)
	// ReplaceAll swaps the whole collection for recs.
	ReplaceAll(ctx context.Context, recs []model.SessionRecord) error
	Close() error
}

// Open opens the store backend by name at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return OpenFile(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q (want %s or %s)", backend, BackendJSON, BackendSQLite)
	}
}

type lockedStore struct {
	mu    sync.Mutex
	inner Store
}

// Locked serializes every operation on s behind a mutex.
func Locked(s Store) Store {
	return &lockedStore{inner: s}
}

func (l *lockedStore) Append(ctx context.Context, rec model.SessionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Append(ctx, rec)
}

func (l *lockedStore) LoadAll(ctx context.Context) ([]model.SessionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.LoadAll(ctx)
}

func (l *lockedStore) ReplaceAll(ctx context.Context, recs []model.SessionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.ReplaceAll(ctx, recs)
}

func (l *lockedStore) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Close()
}

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStoreCorrupt, fmt.Sprintf(format, args...))
}

func writeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreWrite, op, err)
}

func validateRecord(rec model.SessionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("record has no id")
	}
	if rec.CreatedAt.IsZero() {
		return fmt.Errorf("record %s has no timestamp", rec.ID)
	}
	return nil
}
