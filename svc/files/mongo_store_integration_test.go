//go:build integration

package files_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/filevault/pkg/mongo/mongotest"
	"github.com/dmitrymomot/filevault/svc/files"
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

func newMongoStore(t *testing.T) *files.MongoStore {
	t.Helper()
	ctx := context.Background()
	db, err := container.Database(ctx, "files_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Client().Disconnect(context.Background()) })

	store := files.NewMongoStore(db)
	require.NoError(t, store.EnsureIndexes(ctx))
	return store
}

func TestMongoStore_VersionedUpdate(t *testing.T) {
	ctx := context.Background()
	store := newMongoStore(t)

	require.NoError(t, store.Insert(ctx, ownedBy(alice, "f1")))

	first, err := store.Get(ctx, "f1")
	require.NoError(t, err)
	second, err := store.Get(ctx, "f1")
	require.NoError(t, err)

	first.Users = append(first.Users, "bob@example.com")
	require.NoError(t, store.Update(ctx, first))
	assert.Equal(t, int64(1), first.Version)

	second.Users = append(second.Users, "carol@example.com")
	require.ErrorIs(t, store.Update(ctx, second), files.ErrVersionConflict)

	got, err := store.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, got.Users)

	missing := ownedBy(alice, "nope")
	require.ErrorIs(t, store.Update(ctx, missing), files.ErrFileNotFound)
}

func TestMongoStore_LegacyDocuments(t *testing.T) {
	ctx := context.Background()
	db, err := container.Database(ctx, "files_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Client().Disconnect(context.Background()) })
	store := files.NewMongoStore(db)

	_, err = db.Collection(files.Collection).InsertOne(ctx, bson.M{
		"_id":        "legacy",
		"name":       "scan.pdf",
		"type":       "Document",
		"size":       "1048576",
		"owner":      bson.M{"_id": "u-alice", "fullName": "Alice Smith"},
		"users":      bson.A{"alice@example.com"},
		"created_at": time.Now().UTC(),
	})
	require.NoError(t, err)

	f, err := store.Get(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, files.OwnerInline, f.Owner.Kind)
	assert.Equal(t, files.Size(1048576), f.Size)
	assert.Equal(t, int64(0), f.Version)

	f.OwnerEmail = "alice@example.com"
	require.NoError(t, store.Update(ctx, f))

	var raw bson.M
	require.NoError(t, db.Collection(files.Collection).FindOne(ctx, bson.M{"_id": "legacy"}).Decode(&raw))
	assert.Equal(t, "u-alice", raw["owner"])
	assert.EqualValues(t, 1, raw["version"])

	owned, err := store.ListOwnedByID(ctx, "u-alice")
	require.NoError(t, err)
	require.Len(t, owned, 1)
}

func TestMongoStore_MixedCaseEmails(t *testing.T) {
	ctx := context.Background()
	db, err := container.Database(ctx, "files_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Client().Disconnect(context.Background()) })
	store := files.NewMongoStore(db)
	require.NoError(t, store.EnsureIndexes(ctx))

	_, err = db.Collection(files.Collection).InsertOne(ctx, bson.M{
		"_id":         "mixed",
		"name":        "notes.txt",
		"type":        "document",
		"owner_email": "Alice.L@Example.com",
		"users":       bson.A{"Alice.L@Example.com", "Bob@Example.com"},
		"created_at":  time.Now().UTC(),
	})
	require.NoError(t, err)

	f, err := store.Get(ctx, "mixed")
	require.NoError(t, err)
	assert.Equal(t, "alice.l@example.com", f.OwnerEmail)
	assert.Equal(t, []string{"alice.l@example.com", "bob@example.com"}, f.Users)

	list, err := store.List(ctx, files.ListQuery{Email: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"mixed"}, ids(list))
}

func TestMongoStore_List(t *testing.T) {
	ctx := context.Background()
	store := newMongoStore(t)

	mk := func(id, name, typ string, size int64, age time.Duration) *files.File {
		f := ownedBy(alice, id)
		f.Name, f.Type, f.Size = name, typ, files.Size(size)
		f.CreatedAt = baseTime.Add(-age)
		return f
	}
	shared := ownedBy(bob, "shared", "alice@example.com")
	shared.Name, shared.CreatedAt = "Budget Report.xlsx", baseTime

	marked := mk("marked", "old report.pdf", "document", 1, 48*time.Hour)
	at := baseTime.Add(-time.Hour)
	marked.DeletedAt = &at

	for _, f := range []*files.File{
		mk("doc", "Annual report.pdf", "document", 300, 3*time.Hour),
		mk("img", "beach.png", "image", 100, 2*time.Hour),
		mk("vid", "clip.mp4", "video", 900, time.Hour),
		shared,
		marked,
		ownedBy(bob, "private"),
	} {
		require.NoError(t, store.Insert(ctx, f))
	}

	q := files.ListQuery{OwnerID: alice.ID, Email: alice.Email}

	list, err := store.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared", "vid", "img", "doc"}, ids(list))

	q.Search = "REPORT"
	q.Sort = files.Sort{Field: files.SortByName}
	list, err = store.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc", "shared"}, ids(list))

	q = files.ListQuery{OwnerID: alice.ID, Email: alice.Email, Types: files.ExpandTypes([]string{"media", "images"}), Sort: files.Sort{Field: files.SortBySize, Desc: true}, Limit: 1}
	list, err = store.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"vid"}, ids(list))

	stale, err := store.ListMarkedBefore(ctx, baseTime)
	require.NoError(t, err)
	assert.Equal(t, []string{"marked"}, ids(stale))

	stale, err = store.ListMarkedBefore(ctx, baseTime.Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, stale)

	require.NoError(t, store.Delete(ctx, "marked"))
	require.ErrorIs(t, store.Delete(ctx, "marked"), files.ErrFileNotFound)
}
