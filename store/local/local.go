// Package local provides an in-process level store backed by a concurrent
// skip list. It needs no configuration and is the usual level 1.
package local

import (
	"context"

	"github.com/zhangyunhao116/skipmap"

	"github.com/rich/nebulex/store"
)

type Store struct {
	m *skipmap.OrderedMap[string, []byte]
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{m: skipmap.New[string, []byte]()}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := s.m.Load(key)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	// copy so callers reusing buffers cannot mutate stored bytes
	cp := make([]byte, len(value))
	copy(cp, value)
	s.m.Store(key, cp)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.m.Delete(key)
	return nil
}

func (s *Store) Has(_ context.Context, key string) (bool, error) {
	_, ok := s.m.Load(key)
	return ok, nil
}

func (s *Store) Len(_ context.Context) (int, error) {
	return s.m.Len(), nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	keys := make([]string, 0, s.m.Len())
	s.m.Range(func(k string, _ []byte) bool {
		keys = append(keys, k)
		return true
	})
	return keys, nil
}

func (s *Store) Scan(_ context.Context, fn func(key string, value []byte) error) error {
	var err error
	s.m.Range(func(k string, v []byte) bool {
		err = fn(k, v)
		return err == nil
	})
	return err
}

func (s *Store) Close(context.Context) error { return nil }
