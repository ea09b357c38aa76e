package files

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a Store for tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]*File
}

func NewMemoryStore(seed ...*File) *MemoryStore {
	s := &MemoryStore{files: make(map[string]*File)}
	for _, f := range seed {
		cp := f.clone()
		cp.normalizeEmails()
		s.files[f.ID] = cp
	}
	return s
}

func (s *MemoryStore) Insert(_ context.Context, f *File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[f.ID] = f.clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[id]
	if !ok {
		return nil, ErrFileNotFound
	}
	return f.clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, f *File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.files[f.ID]
	if !ok {
		return ErrFileNotFound
	}
	if stored.Version != f.Version {
		return ErrVersionConflict
	}
	f.Version++
	s.files[f.ID] = f.clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[id]; !ok {
		return ErrFileNotFound
	}
	delete(s.files, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, q ListQuery) ([]*File, error) {
	search := strings.ToLower(q.Search)
	out := s.filter(func(f *File) bool {
		if f.Marked() {
			return false
		}
		if !f.Owner.Is(q.OwnerID) && !f.HasUser(q.Email) {
			return false
		}
		if len(q.Types) > 0 && !slices.Contains(q.Types, f.Type) {
			return false
		}
		return search == "" || strings.Contains(strings.ToLower(f.Name), search)
	})

	sortFiles(out, q.Sort)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) ListMarkedBefore(_ context.Context, t time.Time) ([]*File, error) {
	return s.filter(func(f *File) bool {
		return f.Marked() && f.DeletedAt.Before(t)
	}), nil
}

func (s *MemoryStore) ListOwnedByID(_ context.Context, ownerID string) ([]*File, error) {
	return s.filter(func(f *File) bool {
		return !f.Marked() && f.Owner.Is(ownerID)
	}), nil
}

func (s *MemoryStore) filter(match func(*File) bool) []*File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*File, 0)
	for _, f := range s.files {
		if match(f) {
			out = append(out, f.clone())
		}
	}
	slices.SortFunc(out, func(a, b *File) int { return strings.Compare(a.ID, b.ID) })
	return out
}

func sortFiles(files []*File, by Sort) {
	if by.Field == "" {
		by = DefaultSort
	}
	slices.SortStableFunc(files, func(a, b *File) int {
		var c int
		switch by.Field {
		case SortByName:
			c = strings.Compare(a.Name, b.Name)
		case SortBySize:
			c = cmp.Compare(a.Size, b.Size)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if by.Desc {
			return -c
		}
		return c
	})
}
