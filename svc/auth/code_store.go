package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/filevault/pkg/redis"
)

// ErrCodeNotFound is returned by CodeStore.Get when no code is pending.
var ErrCodeNotFound = errors.New("verification code not found")

// CodeStore keeps one pending code per account.
type CodeStore interface {
	// Save replaces any pending code and resets its attempt counter.
	Save(ctx context.Context, code *Code, ttl time.Duration) error
	Get(ctx context.Context, accountID string) (*Code, error)
	// IncrementAttempts atomically claims one verification attempt and
	// returns the new count. ErrCodeNotFound means nothing is pending.
	IncrementAttempts(ctx context.Context, accountID string) (int, error)
	// Consume removes the pending code and reports whether this call removed it.
	Consume(ctx context.Context, accountID string) (bool, error)
	Delete(ctx context.Context, accountID string) error
}

// incrAttempts bumps the counter only while the code key exists and lets the
// counter expire together with the code.
var incrAttempts = goredis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
local n = redis.call("INCR", KEYS[2])
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 then
	redis.call("PEXPIRE", KEYS[2], ttl)
end
return n
`)

// RedisCodeStore keeps codes as JSON with a native TTL. Attempts live in a
// separate counter key so they can be claimed with a single INCR.
type RedisCodeStore struct {
	db     goredis.UniversalClient
	prefix string
	store  *redis.JSONStore[Code]
}

func NewRedisCodeStore(db goredis.UniversalClient, prefix string) *RedisCodeStore {
	return &RedisCodeStore{
		db:     db,
		prefix: prefix + "otp:",
		store:  redis.NewJSONStore[Code](db, prefix+"otp:"),
	}
}

func (s *RedisCodeStore) attemptsKey(accountID string) string {
	return s.prefix + "attempts:" + accountID
}

func (s *RedisCodeStore) Save(ctx context.Context, code *Code, ttl time.Duration) error {
	if err := s.store.Set(ctx, code.AccountID, code, ttl); err != nil {
		return err
	}
	if err := s.db.Del(ctx, s.attemptsKey(code.AccountID)).Err(); err != nil {
		return fmt.Errorf("redis del attempts: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) Get(ctx context.Context, accountID string) (*Code, error) {
	c, err := s.store.Get(ctx, accountID)
	if errors.Is(err, redis.ErrKeyNotFound) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	n, err := s.db.Get(ctx, s.attemptsKey(accountID)).Int()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("redis get attempts: %w", err)
	}
	c.Attempts = n
	return c, nil
}

func (s *RedisCodeStore) IncrementAttempts(ctx context.Context, accountID string) (int, error) {
	n, err := incrAttempts.Run(ctx, s.db,
		[]string{s.prefix + accountID, s.attemptsKey(accountID)}).Int()
	if err != nil {
		return 0, fmt.Errorf("redis incr attempts: %w", err)
	}
	if n < 0 {
		return 0, ErrCodeNotFound
	}
	return n, nil
}

func (s *RedisCodeStore) Consume(ctx context.Context, accountID string) (bool, error) {
	var del *goredis.IntCmd
	_, err := s.db.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		del = p.Del(ctx, s.prefix+accountID)
		p.Del(ctx, s.attemptsKey(accountID))
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis consume code: %w", err)
	}
	return del.Val() == 1, nil
}

func (s *RedisCodeStore) Delete(ctx context.Context, accountID string) error {
	if err := s.db.Del(ctx, s.prefix+accountID, s.attemptsKey(accountID)).Err(); err != nil {
		return fmt.Errorf("redis del code: %w", err)
	}
	return nil
}

// MemoryCodeStore is a CodeStore for tests. Expiry is left to the service.
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]Code
}

func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{codes: make(map[string]Code)}
}

func (s *MemoryCodeStore) Save(_ context.Context, code *Code, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *code
	c.Attempts = 0
	s.codes[code.AccountID] = c
	return nil
}

func (s *MemoryCodeStore) Get(_ context.Context, accountID string) (*Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[accountID]
	if !ok {
		return nil, ErrCodeNotFound
	}
	return &c, nil
}

func (s *MemoryCodeStore) IncrementAttempts(_ context.Context, accountID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[accountID]
	if !ok {
		return 0, ErrCodeNotFound
	}
	c.Attempts++
	s.codes[accountID] = c
	return c.Attempts, nil
}

func (s *MemoryCodeStore) Consume(_ context.Context, accountID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[accountID]; !ok {
		return false, nil
	}
	delete(s.codes, accountID)
	return true, nil
}

func (s *MemoryCodeStore) Delete(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, accountID)
	return nil
}
