package files_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/svc/files"
	"github.com/dmitrymomot/filevault/svc/users"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) user(args mock.Arguments) (*users.User, error) {
	u, _ := args.Get(0).(*users.User)
	return u, args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*users.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserStore) FindByIDField(ctx context.Context, id string) (*users.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserStore) GetByAccountID(ctx context.Context, accountID string) (*users.User, error) {
	return m.user(m.Called(ctx, accountID))
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockUserStore) Create(ctx context.Context, u *users.User) error {
	return m.Called(ctx, u).Error(0)
}

func TestOwnerNames_Resolve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	legacy := &users.User{ID: "u-legacy", LegacyID: "appwrite-42", Email: "legacy@example.com", FullName: "Legacy Person", AccountID: "acc-legacy"}
	store := users.NewMemoryStore(alice, bob, legacy)

	tests := []struct {
		name   string
		file   *files.File
		viewer *users.User
		want   string
	}{
		{
			name:   "owner email lookup",
			file:   &files.File{OwnerEmail: "alice@example.com", OwnerName: "stale"},
			viewer: bob,
			want:   "Alice Smith",
		},
		{
			name:   "owner id by primary key",
			file:   &files.File{Owner: files.OwnerID("u-bob")},
			viewer: alice,
			want:   "Bob Jones",
		},
		{
			name:   "owner id by legacy id attribute",
			file:   &files.File{Owner: files.OwnerID("appwrite-42")},
			viewer: alice,
			want:   "Legacy Person",
		},
		{
			name:   "owner id by account id",
			file:   &files.File{Owner: files.OwnerID("acc-legacy")},
			viewer: alice,
			want:   "Legacy Person",
		},
		{
			name: "inline owner",
			file: &files.File{Owner: files.OwnerRef{
				Kind: files.OwnerInline,
				ID:   "gone",
				User: &files.InlineOwner{ID: "gone", FullName: "Inline Name"},
			}},
			viewer: alice,
			want:   "Inline Name",
		},
		{
			name:   "cached name",
			file:   &files.File{OwnerEmail: "ghost@example.com", OwnerName: "Ghost Writer"},
			viewer: alice,
			want:   "Ghost Writer",
		},
		{
			name: "shared viewer never gets You",
			file: &files.File{
				OwnerEmail: "ghost@example.com",
				Users:      []string{"ghost@example.com", "alice@example.com"},
			},
			viewer: alice,
			want:   "ghost",
		},
		{
			name: "owner gets You",
			file: &files.File{
				OwnerEmail: "ghost@example.com",
				Users:      []string{"ghost@example.com"},
			},
			viewer: &users.User{ID: "u-ghost", Email: "Ghost@Example.com"},
			want:   "You",
		},
		{
			name:   "stranger gets the local part",
			file:   &files.File{OwnerEmail: "ghost@example.com"},
			viewer: bob,
			want:   "ghost",
		},
		{
			name:   "owner email without a domain",
			file:   &files.File{OwnerEmail: "ghost"},
			viewer: bob,
			want:   "ghost",
		},
		{
			name:   "nothing known",
			file:   &files.File{},
			viewer: bob,
			want:   "Unknown",
		},
		{
			name:   "no viewer",
			file:   &files.File{Owner: files.OwnerID("missing")},
			viewer: nil,
			want:   "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := files.NewOwnerNames(store, 16, time.Minute, logger.Noop())
			assert.Equal(t, tt.want, r.Resolve(ctx, tt.file, tt.viewer))
		})
	}
}

func TestOwnerNames_DegradesOnErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := &MockUserStore{}
	store.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, errors.New("connection refused"))
	store.On("GetByID", mock.Anything, "u-ghost").Return(nil, errors.New("connection refused"))
	store.On("FindByIDField", mock.Anything, "u-ghost").Return(nil, users.ErrUserNotFound)
	store.On("GetByAccountID", mock.Anything, "u-ghost").Return(nil, users.ErrUserNotFound)

	r := files.NewOwnerNames(store, 16, time.Minute, logger.Noop())
	f := &files.File{
		Owner:      files.OwnerID("u-ghost"),
		OwnerEmail: "ghost@example.com",
		Users:      []string{"ghost@example.com", "bob@example.com"},
	}

	assert.Equal(t, "ghost", r.Resolve(ctx, f, bob))
	assert.Equal(t, "You", r.Resolve(ctx, f, &users.User{Email: "ghost@example.com"}))
	store.AssertExpectations(t)
}

func TestOwnerNames_CachesLookups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := &MockUserStore{}
	store.On("GetByEmail", mock.Anything, "alice@example.com").Return(alice, nil).Once()

	r := files.NewOwnerNames(store, 16, time.Minute, logger.Noop())
	f := &files.File{OwnerEmail: "alice@example.com"}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "Alice Smith", r.Resolve(ctx, f, bob))
		}()
	}
	wg.Wait()

	assert.Equal(t, "Alice Smith", r.Resolve(ctx, f, bob))
	store.AssertNumberOfCalls(t, "GetByEmail", 1)

	r.Forget(alice)
	store.On("GetByEmail", mock.Anything, "alice@example.com").Return(&users.User{FullName: "Alice Renamed"}, nil).Once()
	assert.Equal(t, "Alice Renamed", r.Resolve(ctx, f, bob))
}
