package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")

	// ErrUnknownBackend is returned by Open for an unsupported backend name
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// Store is a key/value store of API responses with per-entry expiration.
type Store interface {
	// GetItem returns the entry for key. A missing or expired entry is
	// returned as a non-hit entry, not as an error.
	GetItem(ctx context.Context, key string) (*Entry, error)

	// Save persists the entry until its expiration.
	Save(ctx context.Context, entry *Entry) error

	// DeleteItem removes the entry for key. Deleting a missing key is not an error.
	DeleteItem(ctx context.Context, key string) error

	// Clear removes every entry owned by the store.
	Clear(ctx context.Context) error
}

// Clock returns the current time. Stores accept one so expiration can be
// driven by tests.
type Clock func() time.Time
