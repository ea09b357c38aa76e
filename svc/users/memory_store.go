package users

import (
	"context"
	"sync"

	"github.com/dmitrymomot/filevault/pkg/sanitizer"
)

// MemoryStore is a Store for tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewMemoryStore(seed ...*User) *MemoryStore {
	s := &MemoryStore{users: make(map[string]*User)}
	for _, u := range seed {
		cp := *u
		s.users[u.ID] = &cp
	}
	return s
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*User, error) {
	return s.find(func(u *User) bool { return u.ID == id })
}

func (s *MemoryStore) FindByIDField(_ context.Context, id string) (*User, error) {
	return s.find(func(u *User) bool { return u.LegacyID != "" && u.LegacyID == id })
}

func (s *MemoryStore) GetByAccountID(_ context.Context, accountID string) (*User, error) {
	return s.find(func(u *User) bool { return u.AccountID == accountID })
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*User, error) {
	email = sanitizer.NormalizeEmail(email)
	return s.find(func(u *User) bool { return u.Email == email })
}

func (s *MemoryStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.ID == u.ID || existing.Email == u.Email || existing.AccountID == u.AccountID {
			return ErrUserExists
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) find(match func(*User) bool) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}
