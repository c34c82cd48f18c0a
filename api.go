package nebulex

import (
	"context"
	"time"

	c "github.com/rich/nebulex/codec"
	st "github.com/rich/nebulex/store"
)

// Model selects how writes and fallback results propagate across levels.
// It is fixed per cache instance at construction time.
type Model int

const (
	// ModelInclusive duplicates all-level writes everywhere and writes
	// fallback-computed values back into every level.
	ModelInclusive Model = iota

	// ModelExclusive treats levels as independent stores: fallback results
	// are returned but never persisted, and values are not relocated
	// between levels on access. Explicit all-level writes are still
	// honored verbatim.
	ModelExclusive
)

// Multilevel composes an ordered stack of level stores into one logical
// cache. Level 1 is consulted first on reads and is the default write
// target; ascending scans always begin at level 1. V is the caller's value
// type; serialization is handled by a pluggable Codec[V].
type Multilevel[V any] interface {
	// Set writes value under key. Default target is level 1; use WithLevel
	// or AllLevels to select otherwise. All-level writes are applied
	// ascending and are NOT atomic across levels: a failure at one level
	// does not undo earlier levels.
	Set(ctx context.Context, key string, value V, opts ...Option) error

	// Get scans levels ascending and returns the first hit. With WithLevel
	// only that level is read. A global miss is (zero, false, nil).
	Get(ctx context.Context, key string, opts ...Option) (V, bool, error)

	// GetEntry is Get returning the full object shape, version token
	// included.
	GetEntry(ctx context.Context, key string, opts ...Option) (*Entry[V], bool, error)

	// Fetch is Get with a miss promoted to KeyNotFoundError.
	Fetch(ctx context.Context, key string, opts ...Option) (V, error)

	// Load is Get with a fallback: on a global miss fallback computes the
	// value and its result is returned. Under ModelInclusive the computed
	// value is also written back to every level; under ModelExclusive it is
	// returned unpersisted.
	Load(ctx context.Context, key string, fallback func(ctx context.Context, key string) (V, error), opts ...Option) (V, error)

	// GetAll resolves each key independently (first hit per key, scanning
	// ascending) and returns the found values plus the keys missing from
	// every level.
	GetAll(ctx context.Context, keys []string) (map[string]V, []string, error)

	// Delete removes key from the first level (ascending) holding it,
	// leaving other levels untouched. WithLevel targets one level;
	// AllLevels removes the key everywhere. Deleting an absent key is a
	// no-op, not an error.
	Delete(ctx context.Context, key string, opts ...Option) error

	// Take reads-then-deletes key from the first level (ascending) that
	// holds it. Repeated Takes drain the key level by level until it is
	// absent everywhere.
	Take(ctx context.Context, key string, opts ...Option) (V, bool, error)

	// TakeEntry is Take returning the full object shape.
	TakeEntry(ctx context.Context, key string, opts ...Option) (*Entry[V], bool, error)

	// Contains reports whether any level holds key, short-circuiting on the
	// first hit.
	Contains(ctx context.Context, key string) (bool, error)

	// Len sums the entry counts of every level. A key present at three
	// levels counts three times.
	Len(ctx context.Context) (int, error)

	// Keys returns the deduplicated union of every level's key set. Order
	// is unspecified.
	Keys(ctx context.Context) ([]string, error)

	// ToMap flattens the cache into key -> value; on conflicts the value
	// from the lowest-numbered level wins.
	ToMap(ctx context.Context) (map[string]V, error)

	// Reduce folds over every distinct key, traversing levels ascending; a
	// key already folded in from a lower level is not revisited at a higher
	// one.
	Reduce(ctx context.Context, init any, fn func(acc any, key string, value V) (any, error)) (any, error)

	// GetAndUpdate applies fn to the current value at each selected level
	// independently (ok=false when absent there), writing Replace results
	// back and deleting on Remove. Default target is level 1. With
	// AllLevels every level sees its own current value; levels need not
	// converge if they started different. Returns the outcome at the first
	// selected level.
	GetAndUpdate(ctx context.Context, key string, fn func(old V, ok bool) Update[V], opts ...Option) (V, bool, error)

	// Update rewrites key at the selected level(s): when present, the
	// stored value becomes fn(current); when absent, init is inserted
	// as-is. Returns the value stored at the first selected level.
	Update(ctx context.Context, key string, init V, fn func(V) V, opts ...Option) (V, error)

	// Transaction runs fn while holding exclusive locks on keys; an empty
	// key set locks the whole cache. Locks are logical-key locks,
	// independent of which level(s) a key lives in. Acquisition retries up
	// to WithRetries times (default from Options) sleeping WithRetryDelay
	// between attempts, then fails with TransactionAbortedError. Nested
	// calls re-enter keys the scope already holds. fn's error is returned
	// unchanged (nil included); locks newly taken by this call are released
	// on every exit path, panics included.
	Transaction(ctx context.Context, keys []string, fn func(ctx context.Context) error, opts ...Option) error

	// Model reports the configured consistency model.
	Model() Model

	// Levels reports the number of configured levels.
	Levels() int

	// Close releases every level store (best effort, errors joined).
	Close(ctx context.Context) error
}

// Options tune the behavior of the multilevel cache.
// Only Levels and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required: ordered level stores, fastest first. Level 1 is Levels[0].
	Levels []st.Store
	// Required: value codec.
	Codec c.Codec[V]

	Namespace string // optional storage-key prefix to isolate caches sharing a backend
	Model     Model  // default ModelInclusive
	Logger    Logger // if nil, NopLogger is used
	Hooks     Hooks  // if nil, NopHooks is used

	TxRetries    int           // transaction lock retries; 0 => 5
	TxRetryDelay time.Duration // pause between lock attempts; 0 => 100ms
}

// New builds a Multilevel cache from opts.
func New[V any](opts Options[V]) (Multilevel[V], error) {
	return newCache[V](opts)
}
