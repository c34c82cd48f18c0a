package nebulex

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rich/nebulex/codec"
	"github.com/rich/nebulex/internal/lock"
	"github.com/rich/nebulex/internal/util"
	"github.com/rich/nebulex/internal/wire"
	"github.com/rich/nebulex/store"
)

// selector is an operation's default level targeting when the call carries
// no WithLevel/AllLevels option.
type selector int

const (
	selFirst selector = iota // level 1 only
	selAll                   // every level, ascending
)

type cache[V any] struct {
	ns     string
	levels []store.Store
	model  Model
	codec  codec.Codec[V]
	log    Logger
	hooks  Hooks

	locks *lock.Table
	clock atomic.Uint64 // version token source; one token per logical write

	txRetries int
	txDelay   time.Duration
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if len(opts.Levels) == 0 {
		return nil, fmt.Errorf("nebulex: at least one level is required")
	}
	for i, l := range opts.Levels {
		if l == nil {
			return nil, fmt.Errorf("nebulex: level %d is nil", i+1)
		}
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("nebulex: codec is required")
	}

	c := &cache[V]{
		ns:     opts.Namespace,
		levels: opts.Levels,
		model:  opts.Model,
		codec:  opts.Codec,
		locks:  lock.NewTable(),
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.txRetries = coalesce(opts.TxRetries, defaultTxRetries)
	c.txDelay = coalesce(opts.TxRetryDelay, defaultTxRetryDelay)

	return c, nil
}

func (c *cache[V]) Model() Model { return c.model }
func (c *cache[V]) Levels() int  { return len(c.levels) }

func (c *cache[V]) Close(ctx context.Context) error {
	var errs []error
	for i, l := range c.levels {
		if err := l.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("nebulex: close level %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

func (c *cache[V]) storageKey(key string) string { return util.StorageKey(c.ns, key) }

func (c *cache[V]) nextVersion() uint64 { return c.clock.Add(1) }

// allIdx returns every level index ascending.
func (c *cache[V]) allIdx() []int {
	idxs := make([]int, len(c.levels))
	for i := range idxs {
		idxs[i] = i
	}
	return idxs
}

func (c *cache[V]) levelIndex(pos int) (int, error) {
	if pos < 1 || pos > len(c.levels) {
		return 0, &InvalidLevelError{Level: pos, Levels: len(c.levels)}
	}
	return pos - 1, nil
}

// targetLevels resolves a write-style selector: WithLevel(n) => that level,
// AllLevels => every level, unset => def.
func (c *cache[V]) targetLevels(o callOpts, def selector) ([]int, error) {
	if o.all {
		return c.allIdx(), nil
	}
	if o.hasLevel {
		idx, err := c.levelIndex(o.level)
		if err != nil {
			return nil, err
		}
		return []int{idx}, nil
	}
	if def == selAll {
		return c.allIdx(), nil
	}
	return []int{0}, nil
}

// scanLevels resolves a read-style selector: WithLevel(n) narrows the scan
// to one level, otherwise every level ascending.
func (c *cache[V]) scanLevels(o callOpts) ([]int, error) {
	if o.hasLevel && !o.all {
		idx, err := c.levelIndex(o.level)
		if err != nil {
			return nil, err
		}
		return []int{idx}, nil
	}
	return c.allIdx(), nil
}

// readLevel reads and decodes key at one level. Corrupt or undecodable
// entries are deleted and treated as a miss at that level.
func (c *cache[V]) readLevel(ctx context.Context, idx int, key string) (*Entry[V], bool, error) {
	sk := c.storageKey(key)
	raw, ok, err := c.levels[idx].Get(ctx, sk)
	if err != nil || !ok {
		return nil, false, err
	}
	token, payload, err := wire.Decode(raw)
	if err != nil {
		_ = c.levels[idx].Delete(ctx, sk) // self-heal corrupt
		c.hooks.SelfHeal(sk, idx+1, "corrupt")
		return nil, false, nil
	}
	v, err := c.codec.Decode(payload)
	if err != nil {
		_ = c.levels[idx].Delete(ctx, sk) // self-heal
		c.hooks.SelfHeal(sk, idx+1, "value_decode")
		return nil, false, nil
	}
	return &Entry[V]{Key: key, Value: v, Version: token}, true, nil
}

// writeLevels performs one logical write: a single version token, applied to
// idxs ascending. Levels are independent; a failure after the first success
// leaves earlier levels written.
func (c *cache[V]) writeLevels(ctx context.Context, idxs []int, key string, value V) error {
	payload, err := c.codec.Encode(value)
	if err != nil {
		return err
	}
	framed := wire.Encode(c.nextVersion(), payload)
	sk := c.storageKey(key)
	for n, idx := range idxs {
		if err := c.levels[idx].Put(ctx, sk, framed); err != nil {
			if n > 0 {
				c.hooks.PartialWrite(key, idx+1, err)
			}
			return fmt.Errorf("nebulex: put level %d: %w", idx+1, err)
		}
	}
	return nil
}

func (c *cache[V]) Set(ctx context.Context, key string, value V, opts ...Option) error {
	o := applyOptions(opts)
	idxs, err := c.targetLevels(o, selFirst)
	if err != nil {
		return err
	}
	return c.writeLevels(ctx, idxs, key, value)
}

func (c *cache[V]) Get(ctx context.Context, key string, opts ...Option) (V, bool, error) {
	e, ok, err := c.GetEntry(ctx, key, opts...)
	if err != nil || !ok {
		var zero V
		return zero, false, err
	}
	return e.Value, true, nil
}

func (c *cache[V]) GetEntry(ctx context.Context, key string, opts ...Option) (*Entry[V], bool, error) {
	o := applyOptions(opts)
	idxs, err := c.scanLevels(o)
	if err != nil {
		return nil, false, err
	}
	for _, idx := range idxs {
		e, ok, err := c.readLevel(ctx, idx, key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return e, true, nil
		}
	}
	return nil, false, nil
}

func (c *cache[V]) Fetch(ctx context.Context, key string, opts ...Option) (V, error) {
	v, ok, err := c.Get(ctx, key, opts...)
	if err != nil {
		var zero V
		return zero, err
	}
	if !ok {
		var zero V
		return zero, &KeyNotFoundError{Key: key}
	}
	return v, nil
}

func (c *cache[V]) Load(ctx context.Context, key string, fallback func(ctx context.Context, key string) (V, error), opts ...Option) (V, error) {
	var zero V
	if fallback == nil {
		return zero, fmt.Errorf("nebulex: fallback is required")
	}
	v, ok, err := c.Get(ctx, key, opts...)
	if err != nil || ok {
		return v, err
	}

	v, err = fallback(ctx, key)
	if err != nil {
		return zero, err
	}

	writeback := c.model == ModelInclusive
	c.hooks.FallbackComputed(key, writeback)
	if writeback {
		if err := c.writeLevels(ctx, c.allIdx(), key, v); err != nil {
			return v, err
		}
	}
	c.log.Debug("fallback computed", Fields{"key": key, "writeback": writeback})
	return v, nil
}

func (c *cache[V]) GetAll(ctx context.Context, keys []string) (map[string]V, []string, error) {
	out := make(map[string]V, len(keys))
	var missing []string
	for _, k := range keys {
		v, ok, err := c.Get(ctx, k)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			out[k] = v
		} else {
			missing = append(missing, k)
		}
	}
	return out, missing, nil
}

func (c *cache[V]) Delete(ctx context.Context, key string, opts ...Option) error {
	o := applyOptions(opts)
	sk := c.storageKey(key)

	if o.all {
		for i, l := range c.levels {
			if err := l.Delete(ctx, sk); err != nil {
				if i > 0 {
					c.hooks.PartialWrite(key, i+1, err)
				}
				return fmt.Errorf("nebulex: delete level %d: %w", i+1, err)
			}
		}
		return nil
	}

	if o.hasLevel {
		idx, err := c.levelIndex(o.level)
		if err != nil {
			return err
		}
		if err := c.checkVersion(ctx, idx, key, o); err != nil {
			return err
		}
		return c.levels[idx].Delete(ctx, sk)
	}

	// default: the first level (ascending) where the key is present;
	// other levels are left untouched
	for idx := range c.levels {
		has, err := c.levels[idx].Has(ctx, sk)
		if err != nil {
			return err
		}
		if !has {
			continue
		}
		if err := c.checkVersion(ctx, idx, key, o); err != nil {
			return err
		}
		return c.levels[idx].Delete(ctx, sk)
	}
	return nil // absent everywhere; delete is idempotent
}

// checkVersion enforces a WithVersion optimistic check against the entry
// stored at level idx. Absent entries pass (nothing to conflict with).
func (c *cache[V]) checkVersion(ctx context.Context, idx int, key string, o callOpts) error {
	if !o.hasVersion {
		return nil
	}
	raw, ok, err := c.levels[idx].Get(ctx, c.storageKey(key))
	if err != nil || !ok {
		return err
	}
	token, _, err := wire.Decode(raw)
	if err != nil {
		return nil // corrupt entries are healed by the read paths
	}
	if token != o.version {
		return &VersionConflictError{Key: key, Expected: o.version, Actual: token}
	}
	return nil
}

func (c *cache[V]) Take(ctx context.Context, key string, opts ...Option) (V, bool, error) {
	e, ok, err := c.TakeEntry(ctx, key, opts...)
	if err != nil || !ok {
		var zero V
		return zero, false, err
	}
	return e.Value, true, nil
}

func (c *cache[V]) TakeEntry(ctx context.Context, key string, opts ...Option) (*Entry[V], bool, error) {
	o := applyOptions(opts)
	idxs, err := c.scanLevels(o)
	if err != nil {
		return nil, false, err
	}
	for _, idx := range idxs {
		e, ok, err := c.readLevel(ctx, idx, key)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		if o.hasVersion && e.Version != o.version {
			return nil, false, &VersionConflictError{Key: key, Expected: o.version, Actual: e.Version}
		}
		if err := c.levels[idx].Delete(ctx, c.storageKey(key)); err != nil {
			return nil, false, fmt.Errorf("nebulex: take from level %d: %w", idx+1, err)
		}
		return e, true, nil
	}
	return nil, false, nil
}

func (c *cache[V]) Contains(ctx context.Context, key string) (bool, error) {
	sk := c.storageKey(key)
	for _, l := range c.levels {
		has, err := l.Has(ctx, sk)
		if err != nil {
			return false, err
		}
		if has {
			return true, nil
		}
	}
	return false, nil
}

func (c *cache[V]) Len(ctx context.Context) (int, error) {
	total := 0
	for i, l := range c.levels {
		n, err := l.Len(ctx)
		if err != nil {
			return 0, fmt.Errorf("nebulex: len level %d: %w", i+1, err)
		}
		total += n
	}
	return total, nil
}

func (c *cache[V]) Keys(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for i, l := range c.levels {
		keys, err := l.Keys(ctx)
		if err != nil {
			return nil, fmt.Errorf("nebulex: keys level %d: %w", i+1, err)
		}
		for _, sk := range keys {
			key, ok := util.LogicalKey(c.ns, sk)
			if !ok {
				continue // foreign entry in a shared backend
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out, nil
}

// each visits every distinct logical key once, traversing levels ascending;
// a key seen at a lower level shadows the same key at higher ones.
func (c *cache[V]) each(ctx context.Context, fn func(key string, value V) error) error {
	seen := make(map[string]struct{})
	for idx := range c.levels {
		err := c.levels[idx].Scan(ctx, func(sk string, raw []byte) error {
			key, ok := util.LogicalKey(c.ns, sk)
			if !ok {
				return nil
			}
			if _, dup := seen[key]; dup {
				return nil
			}
			_, payload, err := wire.Decode(raw)
			if err != nil {
				return nil // corrupt entries are healed on point reads
			}
			v, err := c.codec.Decode(payload)
			if err != nil {
				return nil
			}
			seen[key] = struct{}{}
			return fn(key, v)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *cache[V]) ToMap(ctx context.Context) (map[string]V, error) {
	out := make(map[string]V)
	err := c.each(ctx, func(key string, value V) error {
		out[key] = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cache[V]) Reduce(ctx context.Context, init any, fn func(acc any, key string, value V) (any, error)) (any, error) {
	acc := init
	err := c.each(ctx, func(key string, value V) error {
		next, err := fn(acc, key, value)
		if err != nil {
			return err
		}
		acc = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (c *cache[V]) GetAndUpdate(ctx context.Context, key string, fn func(old V, ok bool) Update[V], opts ...Option) (V, bool, error) {
	var zero V
	o := applyOptions(opts)
	idxs, err := c.targetLevels(o, selFirst)
	if err != nil {
		return zero, false, err
	}

	var (
		first   V
		firstOK bool
	)
	for n, idx := range idxs {
		e, ok, err := c.readLevel(ctx, idx, key)
		if err != nil {
			return zero, false, err
		}
		var old V
		if ok {
			if o.hasVersion && e.Version != o.version {
				return zero, false, &VersionConflictError{Key: key, Expected: o.version, Actual: e.Version}
			}
			old = e.Value
		}

		upd := fn(old, ok)
		if upd.remove {
			if err := c.levels[idx].Delete(ctx, c.storageKey(key)); err != nil {
				if n > 0 {
					c.hooks.PartialWrite(key, idx+1, err)
				}
				return zero, false, fmt.Errorf("nebulex: update delete level %d: %w", idx+1, err)
			}
			if n == 0 {
				firstOK = false
			}
			continue
		}
		if err := c.writeLevels(ctx, []int{idx}, key, upd.value); err != nil {
			if n > 0 {
				c.hooks.PartialWrite(key, idx+1, err)
			}
			return zero, false, err
		}
		if n == 0 {
			first, firstOK = upd.value, true
		}
	}
	return first, firstOK, nil
}

func (c *cache[V]) Update(ctx context.Context, key string, init V, fn func(V) V, opts ...Option) (V, error) {
	v, _, err := c.GetAndUpdate(ctx, key, func(old V, ok bool) Update[V] {
		if !ok {
			return Replace(init)
		}
		return Replace(fn(old))
	}, opts...)
	return v, err
}
