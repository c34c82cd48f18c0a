package nebulex

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching. The typed errors below wrap these
// and carry the per-call details.
var (
	ErrNotFound           = errors.New("nebulex: entry not found")
	ErrVersionConflict    = errors.New("nebulex: version conflict")
	ErrTransactionAborted = errors.New("nebulex: transaction aborted")
	ErrInvalidLevel       = errors.New("nebulex: invalid level")
)

// KeyNotFoundError is returned by Fetch when a key is missing from every
// level and no fallback applies.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("nebulex: key %q not found", e.Key)
}

func (e *KeyNotFoundError) Unwrap() error { return ErrNotFound }

// VersionConflictError reports a failed optimistic check: the version token
// supplied via WithVersion no longer matches the stored entry. The entry is
// left untouched.
type VersionConflictError struct {
	Key      string
	Expected uint64
	Actual   uint64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("nebulex: version conflict on %q: expected %d, found %d",
		e.Key, e.Expected, e.Actual)
}

func (e *VersionConflictError) Unwrap() error { return ErrVersionConflict }

// TransactionAbortedError is returned by Transaction when a requested key is
// still locked by another context after the retry budget is exhausted. It is
// terminal: the cache never retries beyond the configured budget.
type TransactionAbortedError struct {
	// Keys is the requested key set; empty for a whole-cache transaction.
	Keys    []string
	Retries int
}

func (e *TransactionAbortedError) Error() string {
	if len(e.Keys) == 0 {
		return fmt.Sprintf("nebulex: transaction aborted: cache lock still held after %d retries", e.Retries)
	}
	return fmt.Sprintf("nebulex: transaction aborted: keys %v still locked after %d retries", e.Keys, e.Retries)
}

func (e *TransactionAbortedError) Unwrap() error { return ErrTransactionAborted }

// InvalidLevelError reports a numeric level selector outside the configured
// range. Levels are 1-based.
type InvalidLevelError struct {
	Level  int
	Levels int
}

func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("nebulex: level %d out of range [1, %d]", e.Level, e.Levels)
}

func (e *InvalidLevelError) Unwrap() error { return ErrInvalidLevel }
