// Package store defines the per-level storage abstraction used by nebulex.
//
// A Store is one backing cache composed into the logical multilevel cache.
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Put for a key (no prepended/
// appended metadata, no re-encoding, no mutation). If a backend performs
// internal transforms (e.g., compression), they MUST be fully reversed so
// that the bytes returned by Get are identical to the bytes provided to Put.
//
// Stores are independently-owned resources: nebulex never assumes a store
// performs its own cross-operation locking. All atomicity guarantees across
// operations come from the cache's transaction manager.
package store

import "context"

// Store is a minimal iterable byte store. Must be safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key, replacing any previous value.
	// An empty (or nil) value is a valid value, not a delete.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Has reports whether key is currently present.
	Has(ctx context.Context, key string) (bool, error)

	// Len returns the number of entries currently held.
	Len(ctx context.Context) (int, error)

	// Keys returns every key currently held. Order is unspecified.
	Keys(ctx context.Context) ([]string, error)

	// Scan calls fn for every (key, value) pair currently held, in
	// unspecified order, stopping at the first error. The multilevel
	// engine is responsible for level ordering; a single store only has
	// to visit each of its own entries once.
	Scan(ctx context.Context, fn func(key string, value []byte) error) error

	// Close releases resources.
	Close(ctx context.Context) error
}
