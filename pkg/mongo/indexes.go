package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// EnsureIndexes creates the given indexes on coll. CreateMany is idempotent
// for identical definitions, so it is safe to call at every start.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection, models ...mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return errors.Join(ErrIndexSetupFailed, fmt.Errorf("collection %s: %w", coll.Name(), err))
	}
	return nil
}
