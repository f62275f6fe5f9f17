package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cookoff-scoreboard/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Store is a Redis implementation of app.DurableStore. Every key is
// namespaced under a prefix so several scoreboards can share a database.
// A zero ttl keeps values forever; keys named as durable never expire.
type Store struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	durable map[string]struct{}
}

const defaultPrefix = "scoreboard:"

func NewStore(client *redis.Client, prefix string, ttl time.Duration, durable ...string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	keep := make(map[string]struct{}, len(durable))
	for _, key := range durable {
		keep[key] = struct{}{}
	}
	return &Store{client: client, prefix: prefix, ttl: ttl, durable: keep}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &domain.StorageError{Op: domain.StorageRead, Key: key, Err: fmt.Errorf("redis get: %w", err)}
	}
	return raw, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	ttl := s.ttl
	if _, ok := s.durable[key]; ok {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return &domain.StorageError{Op: domain.StorageWrite, Key: key, Err: fmt.Errorf("redis set: %w", err)}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return &domain.StorageError{Op: domain.StorageDelete, Key: key, Err: fmt.Errorf("redis del: %w", err)}
	}
	return nil
}

func (s *Store) key(key string) string {
	return s.prefix + key
}
