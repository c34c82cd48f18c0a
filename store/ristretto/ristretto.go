// Package ristretto adapts dgraph's Ristretto to the nebulex level
// contract. Ristretto itself cannot be iterated, so the store keeps a
// concurrent key index next to it, maintained through the eviction callback.
package ristretto

import (
	"context"
	"errors"

	rc "github.com/dgraph-io/ristretto"
	"github.com/zhangyunhao116/skipmap"

	"github.com/rich/nebulex/store"
)

// ErrRejected means ristretto dropped the write under admission pressure.
var ErrRejected = errors.New("ristretto: set rejected under pressure")

// entry keeps the original key next to the bytes: ristretto's eviction
// callback only reports hashed keys, so the index is repaired from the value.
type entry struct {
	key  string
	data []byte
}

type Store struct {
	c     *rc.Cache
	index *skipmap.OrderedMap[string, struct{}]
}

var _ store.Store = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	s := &Store{index: skipmap.New[string, struct{}]()}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
		OnEvict: func(item *rc.Item) {
			if e, ok := item.Value.(entry); ok {
				s.index.Delete(e.key)
			}
		},
	})
	if err != nil {
		return nil, err
	}
	s.c = c
	return s, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	e, ok := v.(entry)
	if !ok {
		// unexpected entry shape; drop it
		s.c.Del(key)
		s.index.Delete(key)
		return nil, false, nil
	}
	return e.data, true, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	s.index.Store(key, struct{}{})
	if !s.c.Set(key, entry{key: key, data: cp}, int64(len(key)+len(cp))) {
		s.index.Delete(key)
		return ErrRejected
	}
	// ristretto applies Sets asynchronously; wait so the level behaves
	// read-your-write like the other stores
	s.c.Wait()
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.c.Del(key)
	s.index.Delete(key)
	return nil
}

func (s *Store) Has(_ context.Context, key string) (bool, error) {
	_, ok := s.c.Get(key)
	return ok, nil
}

func (s *Store) Len(_ context.Context) (int, error) {
	n := 0
	s.index.Range(func(k string, _ struct{}) bool {
		if _, ok := s.c.Get(k); ok {
			n++
		}
		return true
	})
	return n, nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	keys := make([]string, 0, s.index.Len())
	s.index.Range(func(k string, _ struct{}) bool {
		if _, ok := s.c.Get(k); ok {
			keys = append(keys, k)
		}
		return true
	})
	return keys, nil
}

func (s *Store) Scan(_ context.Context, fn func(key string, value []byte) error) error {
	var err error
	s.index.Range(func(k string, _ struct{}) bool {
		v, ok := s.c.Get(k)
		if !ok {
			return true // evicted since indexed
		}
		e, ok := v.(entry)
		if !ok {
			return true
		}
		err = fn(k, e.data)
		return err == nil
	})
	return err
}

func (s *Store) Close(_ context.Context) error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes ristretto's counters for the embedding application
// (not part of the store contract).
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
