package session

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/filevault/pkg/redis"
)

// RedisStore keeps sessions as JSON values whose Redis ttl matches ExpiresAt.
type RedisStore struct {
	kv  *redis.JSONStore[Session]
	now func() time.Time
}

// NewRedisStore creates a store with keys "<prefix>session:<token>".
func NewRedisStore(db goredis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{
		kv:  redis.NewJSONStore[Session](db, prefix+"session:"),
		now: time.Now,
	}
}

func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	ttl := s.TTL(r.now())
	if ttl <= 0 {
		return ErrSessionExpired
	}
	return r.kv.Set(ctx, s.Token, s, ttl)
}

func (r *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	s, err := r.kv.Get(ctx, token)
	if errors.Is(err, redis.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.IsExpired(r.now()) {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *RedisStore) Touch(ctx context.Context, token string, at time.Time) error {
	s, err := r.Get(ctx, token)
	if err != nil {
		return err
	}
	s.LastActivityAt = at
	if err := r.kv.Update(ctx, token, s); errors.Is(err, redis.ErrKeyNotFound) {
		return ErrSessionNotFound
	} else if err != nil {
		return err
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	return r.kv.Delete(ctx, token)
}
