package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/pkg/validator"
	"github.com/dmitrymomot/filevault/svc/users"
)

func TestService_Register(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("creates user with account id", func(t *testing.T) {
		t.Parallel()
		store := users.NewMemoryStore()
		svc := users.NewService(store, users.WithClock(func() time.Time { return now }))

		u, err := svc.Register(context.Background(), "  Alice Smith ", "Alice@Example.com")
		require.NoError(t, err)
		assert.Equal(t, "Alice Smith", u.FullName)
		assert.Equal(t, "alice@example.com", u.Email)
		assert.NotEmpty(t, u.AccountID)
		assert.NotEqual(t, u.ID, u.AccountID)
		assert.Equal(t, users.DefaultAvatar, u.Avatar)
		assert.Equal(t, now, u.CreatedAt)

		got, err := svc.ByAccountID(context.Background(), u.AccountID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		svc := users.NewService(users.NewMemoryStore())
		_, err := svc.Register(context.Background(), "Alice", "alice@example.com")
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), "Other Alice", "ALICE@example.com")
		assert.ErrorIs(t, err, users.ErrUserExists)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc := users.NewService(users.NewMemoryStore())

		tests := []struct {
			name, fullName, email, field string
		}{
			{"name too short", "A", "a@example.com", "fullName"},
			{"name too long", string(make([]rune, 51)), "a@example.com", "fullName"},
			{"bad email", "Alice", "not-an-email", "email"},
		}
		for _, tt := range tests {
			_, err := svc.Register(context.Background(), tt.fullName, tt.email)
			require.Error(t, err, tt.name)
			assert.True(t, validator.ExtractValidationErrors(err).Has(tt.field), tt.name)
		}
	})
}

func TestMemoryStore_Lookups(t *testing.T) {
	t.Parallel()

	store := users.NewMemoryStore(&users.User{
		ID:        "u1",
		LegacyID:  "legacy-1",
		Email:     "bob@example.com",
		FullName:  "Bob",
		AccountID: "acc-1",
	})
	ctx := context.Background()

	byID, err := store.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Bob", byID.FullName)

	byLegacy, err := store.FindByIDField(ctx, "legacy-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", byLegacy.ID)

	byEmail, err := store.GetByEmail(ctx, "BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	_, err = store.GetByAccountID(ctx, "missing")
	assert.ErrorIs(t, err, users.ErrUserNotFound)

	_, err = store.FindByIDField(ctx, "")
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}
