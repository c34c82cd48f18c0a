package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/rich/nebulex/store"
)

type Store struct {
	c *bc.BigCache
}

var _ store.Store = (*Store)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Store, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	return b, err == nil, err
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	// BigCache has no per-entry TTL; entries age out with the global LifeWindow.
	return s.c.Set(key, value)
}

func (s *Store) Delete(_ context.Context, key string) error {
	err := s.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil // idempotent
	}
	return err
}

func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	return ok, err
}

func (s *Store) Len(_ context.Context) (int, error) {
	return s.c.Len(), nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	keys := make([]string, 0, s.c.Len())
	it := s.c.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			continue // entry removed mid-iteration
		}
		keys = append(keys, info.Key())
	}
	return keys, nil
}

func (s *Store) Scan(_ context.Context, fn func(key string, value []byte) error) error {
	it := s.c.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			continue
		}
		if err := fn(info.Key(), info.Value()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close(_ context.Context) error {
	return s.c.Close()
}
