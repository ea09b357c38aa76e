package files

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/dmitrymomot/filevault/pkg/mongo"
)

// Collection is the files collection name.
const Collection = "files"

// emailCollation matches access list entries regardless of case, so
// documents written with mixed-case emails still show up in listings.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection)}
}

// EnsureIndexes creates the indexes used by listings and the purge sweep.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	return mongox.EnsureIndexes(ctx, s.coll,
		mongo.IndexModel{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "created_at", Value: -1}}},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "users", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("users_ci_created_at").SetCollation(emailCollation),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "deleted_at", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	)
}

func (s *MongoStore) Insert(ctx context.Context, f *File) error {
	if _, err := s.coll.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*File, error) {
	var f File
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	f.normalizeEmails()
	return &f, nil
}

func (s *MongoStore) Update(ctx context.Context, f *File) error {
	filter := bson.M{"_id": f.ID, "version": f.Version}
	if f.Version == 0 {
		// documents written before versioning have no version field
		filter = bson.M{"_id": f.ID, "$or": bson.A{
			bson.M{"version": 0},
			bson.M{"version": bson.M{"$exists": false}},
		}}
	}

	next := *f
	next.Version = f.Version + 1
	res, err := s.coll.ReplaceOne(ctx, filter, &next)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := s.coll.CountDocuments(ctx, bson.M{"_id": f.ID})
		if err != nil {
			return fmt.Errorf("update file: %w", err)
		}
		if n == 0 {
			return ErrFileNotFound
		}
		return ErrVersionConflict
	}
	f.Version = next.Version
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrFileNotFound
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, q ListQuery) ([]*File, error) {
	visible := bson.A{}
	if q.OwnerID != "" {
		visible = append(visible, bson.M{"owner": q.OwnerID})
	}
	if q.Email != "" {
		visible = append(visible, bson.M{"users": q.Email})
	}
	if len(visible) == 0 {
		return []*File{}, nil
	}

	filter := bson.M{"$or": visible, "deleted_at": nil}
	if len(q.Types) > 0 {
		filter["type"] = bson.M{"$in": q.Types}
	}
	if q.Search != "" {
		filter["name"] = bson.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
	}

	by := q.Sort
	if by.Field == "" {
		by = DefaultSort
	}
	dir := 1
	if by.Desc {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: string(by.Field), Value: dir}, {Key: "_id", Value: 1}}).
		SetCollation(emailCollation)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return s.find(ctx, filter, opts)
}

func (s *MongoStore) ListMarkedBefore(ctx context.Context, t time.Time) ([]*File, error) {
	return s.find(ctx, bson.M{"deleted_at": bson.M{"$ne": nil, "$lt": t}}, options.Find())
}

func (s *MongoStore) ListOwnedByID(ctx context.Context, ownerID string) ([]*File, error) {
	return s.find(ctx, bson.M{"owner": ownerID, "deleted_at": nil}, options.Find())
}

func (s *MongoStore) find(ctx context.Context, filter any, opts *options.FindOptionsBuilder) ([]*File, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	out := make([]*File, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	for _, f := range out {
		f.normalizeEmails()
	}
	return out, nil
}
