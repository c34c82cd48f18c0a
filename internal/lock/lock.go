// Package lock implements the per-key lock table backing nebulex
// transactions. Keys are logical cache keys, independent of which physical
// level currently stores them. A lock is owned by a holder token and is
// reentrant for that token: the same holder may acquire the same key any
// number of times without blocking itself, and the key is only freed when
// the depth returns to zero.
package lock

import "sync"

type entry struct {
	holder string
	depth  int
}

// Table is a process-wide registry of key locks. One Table is owned by one
// cache instance and torn down with it; all key-state mutation happens under
// a single internal critical section so TryAcquire and Release are atomic
// with respect to each other.
type Table struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewTable() *Table {
	return &Table{entries: make(map[string]*entry)}
}

// TryAcquire attempts to lock key for holder without blocking. It grants
// when the key is free, or when holder already owns it (reentrant, depth
// increments). It returns false when another holder owns the key.
func (t *Table) TryAcquire(key, holder string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		t.entries[key] = &entry{holder: holder, depth: 1}
		return true
	}
	if e.holder != holder {
		return false
	}
	e.depth++
	return true
}

// Release undoes one TryAcquire by holder. The key is freed only when the
// reentrancy depth reaches zero. Releasing a key not held by holder is
// inert: it never frees another holder's lock.
func (t *Table) Release(key, holder string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok || e.holder != holder {
		return
	}
	e.depth--
	if e.depth <= 0 {
		delete(t.entries, key)
	}
}

// HolderOf reports the current owner of key, if any.
func (t *Table) HolderOf(key string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		return "", false
	}
	return e.holder, true
}

// Len returns the number of currently locked keys.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
