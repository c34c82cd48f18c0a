package nebulex

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// globalLockKey is the reserved key locked by whole-cache transactions
// (empty key set). Keyed transactions never touch it, so whole-cache scopes
// contend only with each other.
const globalLockKey = "\x00nebulex:global"

type txnCtxKey struct{}

// txnScope identifies one calling context across nested transactions. The
// holder token is explicit state threaded through ctx rather than ambient
// goroutine-local inspection, so a scope follows the ctx wherever the caller
// deliberately passes it.
type txnScope struct {
	holder string
}

func scopeFrom(ctx context.Context) (*txnScope, bool) {
	s, ok := ctx.Value(txnCtxKey{}).(*txnScope)
	return s, ok
}

// InTransaction reports whether ctx is inside the dynamic extent of a
// Transaction body, at any nesting depth. It is false before a transaction
// starts and false again once its body has returned.
func InTransaction(ctx context.Context) bool {
	_, ok := scopeFrom(ctx)
	return ok
}

func (c *cache[V]) Transaction(ctx context.Context, keys []string, fn func(ctx context.Context) error, opts ...Option) error {
	o := applyOptions(opts)
	retries := c.txRetries
	if o.hasRetries {
		retries = o.retries
	}
	delay := c.txDelay
	if o.hasDelay {
		delay = o.delay
	}

	eff := effectiveKeys(keys)

	scope, nested := scopeFrom(ctx)
	if !nested {
		scope = &txnScope{holder: uuid.NewString()}
		ctx = context.WithValue(ctx, txnCtxKey{}, scope)
	}

	if err := c.acquire(ctx, eff, scope.holder, retries, delay); err != nil {
		return err
	}
	defer func() {
		// Undoes exactly this call's acquisitions: keys held by an
		// enclosing scope only drop one reentrancy level and stay locked.
		for _, k := range eff {
			c.locks.Release(k, scope.holder)
		}
	}()

	return fn(ctx)
}

// effectiveKeys dedupes and sorts the requested key set so every contender
// acquires in one global order. Empty means whole-cache.
func effectiveKeys(keys []string) []string {
	if len(keys) == 0 {
		return []string{globalLockKey}
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// acquire locks every key for holder, retrying up to retries times after the
// first attempt. Between attempts, and on abort, every lock taken by the
// current attempt is released so a stalled contender never pins a partial
// set against other transactions.
func (c *cache[V]) acquire(ctx context.Context, keys []string, holder string, retries int, delay time.Duration) error {
	granted := make([]string, 0, len(keys))
	for attempt := 0; ; attempt++ {
		granted = granted[:0]
		contended := -1
		for i, k := range keys {
			if !c.locks.TryAcquire(k, holder) {
				contended = i
				break
			}
			granted = append(granted, k)
		}
		if contended < 0 {
			return nil
		}
		for _, k := range granted {
			c.locks.Release(k, holder)
		}
		c.hooks.LockContended(keys[contended], attempt)

		if attempt >= retries {
			c.hooks.TransactionAborted(keys, retries)
			c.log.Warn("transaction aborted", Fields{"keys": requestedKeys(keys), "retries": retries})
			return &TransactionAbortedError{Keys: requestedKeys(keys), Retries: retries}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// requestedKeys strips the whole-cache sentinel for reporting.
func requestedKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == globalLockKey {
			continue
		}
		out = append(out, k)
	}
	return out
}

// WithTransaction runs fn inside a transaction on c and passes its typed
// result through unchanged; zero values (empty string, false, nil) are
// results, not failure signals.
func WithTransaction[V, T any](ctx context.Context, c Multilevel[V], keys []string, fn func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	var out T
	err := c.Transaction(ctx, keys, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	}, opts...)
	return out, err
}
