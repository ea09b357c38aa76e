package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/pkg/session"
	"github.com/dmitrymomot/filevault/svc/auth"
	"github.com/dmitrymomot/filevault/svc/users"
)

type failingStore struct {
	users.Store
}

func (failingStore) GetByAccountID(context.Context, string) (*users.User, error) {
	return nil, errors.New("connection refused")
}

func withSession(accountID string) context.Context {
	s, _ := session.New(accountID, time.Hour, time.Now())
	return session.WithSession(context.Background(), s)
}

func TestResolver_ResolveCurrentUser(t *testing.T) {
	t.Parallel()

	store := users.NewMemoryStore(&users.User{ID: "u1", Email: "erin@example.com", FullName: "Erin", AccountID: "acc-erin"})
	r := auth.NewResolver(store, nil)

	t.Run("no session", func(t *testing.T) {
		t.Parallel()
		u, err := r.ResolveCurrentUser(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("session with user", func(t *testing.T) {
		t.Parallel()
		u, err := r.ResolveCurrentUser(withSession("acc-erin"))
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "Erin", u.FullName)
	})

	t.Run("session without user", func(t *testing.T) {
		t.Parallel()
		u, err := r.ResolveCurrentUser(withSession("acc-ghost"))
		assert.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("session store failure", func(t *testing.T) {
		t.Parallel()
		ctx := session.WithError(context.Background(), errors.New("redis: connection refused"))
		u, err := r.ResolveCurrentUser(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Nil(t, u)
	})

	t.Run("backend failure", func(t *testing.T) {
		t.Parallel()
		failing := auth.NewResolver(failingStore{}, nil)
		u, err := failing.ResolveCurrentUser(withSession("acc-erin"))
		assert.Error(t, err)
		assert.Nil(t, u)
	})
}

func TestResolver_Middleware(t *testing.T) {
	t.Parallel()

	store := users.NewMemoryStore(&users.User{ID: "u1", Email: "erin@example.com", AccountID: "acc-erin"})
	r := auth.NewResolver(store, nil)

	var got *users.User
	h := r.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
		got = auth.GetUserFromContext(req.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil).WithContext(withSession("acc-erin"))
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)

	got = nil
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Nil(t, got)
}

func TestResolver_Middleware_Unavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		resolver *auth.Resolver
		ctx      context.Context
	}{
		{
			name:     "session store failure",
			resolver: auth.NewResolver(users.NewMemoryStore(), nil),
			ctx:      session.WithError(context.Background(), errors.New("redis: connection refused")),
		},
		{
			name:     "user store failure",
			resolver: auth.NewResolver(failingStore{}, nil),
			ctx:      withSession("acc-erin"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			h := tt.resolver.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				called = true
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files", nil).WithContext(tt.ctx))

			assert.False(t, called)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.JSONEq(t, `{"error":{"code":"service_unavailable","message":"Service temporarily unavailable. Please try again later."}}`, rec.Body.String())
		})
	}
}
