package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// JSONStore keeps JSON-encoded values under a common key prefix.
// Session and one-time code stores are built on top of it.
type JSONStore[T any] struct {
	db     redis.UniversalClient
	prefix string
}

// NewJSONStore creates a store whose keys are prefix+key.
func NewJSONStore[T any](db redis.UniversalClient, prefix string) *JSONStore[T] {
	return &JSONStore[T]{db: db, prefix: prefix}
}

// Get returns ErrKeyNotFound when the key is absent or expired.
func (s *JSONStore[T]) Get(ctx context.Context, key string) (*T, error) {
	raw, err := s.db.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}

// Set stores v with the given ttl. A zero ttl means no expiration.
func (s *JSONStore[T]) Set(ctx context.Context, key string, v *T, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.db.Set(ctx, s.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Update rewrites v keeping the key's remaining ttl.
func (s *JSONStore[T]) Update(ctx context.Context, key string, v *T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	err = s.db.SetArgs(ctx, s.prefix+key, raw, redis.SetArgs{KeepTTL: true, Mode: "XX"}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("redis update %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *JSONStore[T]) Delete(ctx context.Context, key string) error {
	if err := s.db.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
