//go:build integration

package users_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/filevault/pkg/mongo/mongotest"
	"github.com/dmitrymomot/filevault/svc/users"
)

var container *mongotest.Container

func TestMain(m *testing.M) {
	var err error
	container, err = mongotest.Start(context.Background())
	if err != nil {
		panic(err)
	}
	code := m.Run()
	_ = container.Terminate()
	os.Exit(code)
}

func TestMongoStore(t *testing.T) {
	ctx := context.Background()
	db, err := container.Database(ctx, "users_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Client().Disconnect(context.Background()) })

	store := users.NewMongoStore(db)
	require.NoError(t, store.EnsureIndexes(ctx))

	u := &users.User{ID: uuid.NewString(), Email: "carol@example.com", FullName: "Carol", AccountID: uuid.NewString()}
	require.NoError(t, store.Create(ctx, u))

	t.Run("lookups", func(t *testing.T) {
		got, err := store.GetByEmail(ctx, "Carol@Example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		got, err = store.GetByAccountID(ctx, u.AccountID)
		require.NoError(t, err)
		assert.Equal(t, "Carol", got.FullName)

		got, err = store.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, got.Email)

		_, err = store.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, users.ErrUserNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := &users.User{ID: uuid.NewString(), Email: u.Email, FullName: "Other", AccountID: uuid.NewString()}
		assert.ErrorIs(t, store.Create(ctx, dup), users.ErrUserExists)
	})

	t.Run("legacy id attribute", func(t *testing.T) {
		_, err := db.Collection(users.Collection).InsertOne(ctx, bson.M{
			"_id":        "imported-1",
			"id":         "appwrite-doc-1",
			"email":      "dave@example.com",
			"full_name":  "Dave",
			"account_id": "acc-dave",
		})
		require.NoError(t, err)

		got, err := store.FindByIDField(ctx, "appwrite-doc-1")
		require.NoError(t, err)
		assert.Equal(t, "Dave", got.FullName)
	})
}
