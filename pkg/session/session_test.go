package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/pkg/session"
)

func TestNew(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := session.New("acc-1", time.Hour, now)
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Len(t, s.Token, 43)
	assert.Equal(t, "acc-1", s.AccountID)
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)
	assert.False(t, s.IsExpired(now))
	assert.True(t, s.IsExpired(now.Add(time.Hour)))
	assert.Equal(t, 30*time.Minute, s.TTL(now.Add(30*time.Minute)))
	assert.Zero(t, s.TTL(now.Add(2*time.Hour)))

	other, err := session.New("acc-1", time.Hour, now)
	require.NoError(t, err)
	assert.NotEqual(t, s.Token, other.Token)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := session.NewMemoryStore()

	live, err := session.New("acc", time.Hour, time.Now())
	require.NoError(t, err)
	expired, err := session.New("acc", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	require.NoError(t, store.Create(ctx, live))
	require.NoError(t, store.Create(ctx, expired))

	t.Run("get live", func(t *testing.T) {
		got, err := store.Get(ctx, live.Token)
		require.NoError(t, err)
		assert.Equal(t, live.AccountID, got.AccountID)
	})

	t.Run("expired is not found and evicted", func(t *testing.T) {
		_, err := store.Get(ctx, expired.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("touch", func(t *testing.T) {
		at := time.Now().Add(time.Minute)
		require.NoError(t, store.Touch(ctx, live.Token, at))
		got, err := store.Get(ctx, live.Token)
		require.NoError(t, err)
		assert.True(t, got.LastActivityAt.Equal(at))
		assert.ErrorIs(t, store.Touch(ctx, "nope", at), session.ErrSessionNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, live.Token))
		require.NoError(t, store.Delete(ctx, live.Token))
		_, err := store.Get(ctx, live.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}

func TestContext(t *testing.T) {
	t.Parallel()

	_, ok := session.FromContext(context.Background())
	assert.False(t, ok)

	s := &session.Session{AccountID: "acc"}
	ctx := session.WithSession(context.Background(), s)
	got, ok := session.FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, s, got)

	id, ok := session.AccountIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "acc", id)
}
