// Package redis adapts a redis keyspace slice to the nebulex level
// contract. Keys live under a configurable prefix; Keys/Scan/Len are backed
// by SCAN so they never block the server.
package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rich/nebulex/store"
)

var ErrNilClient = errors.New("redis store: nil client")

type Store struct {
	rdb         goredis.UniversalClient
	prefix      string
	ttl         time.Duration
	scanCount   int64
	closeClient bool
}

var _ store.Store = (*Store)(nil)

type Config struct {
	Client goredis.UniversalClient
	// Prefix isolates this level inside the redis keyspace; "" => "nebulex".
	Prefix string
	// TTL applies to every entry; 0 = no expiry.
	TTL time.Duration
	// ScanCount is the COUNT hint for SCAN-backed iteration; 0 => 100.
	ScanCount int64
	// CloseClient: set true only if this store exclusively owns the client.
	CloseClient bool
}

func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "nebulex"
	}
	count := cfg.ScanCount
	if count <= 0 {
		count = 100
	}
	return &Store{
		rdb:         cfg.Client,
		prefix:      prefix + ":",
		ttl:         cfg.TTL,
		scanCount:   count,
		closeClient: cfg.CloseClient,
	}, nil
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, s.key(key), value, s.ttl).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}

func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Len(ctx context.Context) (int, error) {
	n := 0
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", s.scanCount).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, iter.Err()
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", s.scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	return keys, iter.Err()
}

func (s *Store) Scan(ctx context.Context, fn func(key string, value []byte) error) error {
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", s.scanCount).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		b, err := s.rdb.Get(ctx, full).Bytes()
		if errors.Is(err, goredis.Nil) {
			continue // expired between SCAN and GET
		}
		if err != nil {
			return err
		}
		if err := fn(strings.TrimPrefix(full, s.prefix), b); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Store) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
