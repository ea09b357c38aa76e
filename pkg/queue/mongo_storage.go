package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/dmitrymomot/filevault/pkg/mongo"
)

const (
	TasksCollection    = "tasks"
	DeadTaskCollection = "tasks_dlq"
)

// MongoStorage keeps tasks in MongoDB. Claims are single-document
// FindOneAndUpdate calls, so concurrent workers never share a task.
type MongoStorage struct {
	tasks *mongo.Collection
	dlq   *mongo.Collection
	now   func() time.Time
}

// NewMongoStorage creates a MongoStorage on db.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{
		tasks: db.Collection(TasksCollection),
		dlq:   db.Collection(DeadTaskCollection),
		now:   time.Now,
	}
}

// EnsureIndexes creates the claim and lookup indexes.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	return mongox.EnsureIndexes(ctx, s.tasks,
		mongo.IndexModel{Keys: bson.D{
			{Key: "queue", Value: 1},
			{Key: "status", Value: 1},
			{Key: "priority", Value: -1},
			{Key: "scheduled_at", Value: 1},
		}},
		mongo.IndexModel{Keys: bson.D{{Key: "task_name", Value: 1}, {Key: "status", Value: 1}}},
	)
}

func (s *MongoStorage) CreateTask(ctx context.Context, task *Task) error {
	if _, err := s.tasks.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *MongoStorage) GetPendingTaskByName(ctx context.Context, taskName string) (*Task, error) {
	var t Task
	err := s.tasks.FindOne(ctx, bson.M{"task_name": taskName, "status": TaskStatusPending}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find pending task: %w", err)
	}
	return &t, nil
}

func (s *MongoStorage) ClaimTask(ctx context.Context, workerID string, queues []string, lockDuration time.Duration) (*Task, error) {
	now := s.now()
	filter := bson.M{
		"queue": bson.M{"$in": queues},
		"$or": bson.A{
			bson.M{"status": TaskStatusPending, "scheduled_at": bson.M{"$lte": now}},
			bson.M{"status": TaskStatusProcessing, "locked_until": bson.M{"$lt": now}},
		},
	}
	update := bson.M{"$set": bson.M{
		"status":       TaskStatusProcessing,
		"locked_by":    workerID,
		"locked_until": now.Add(lockDuration),
	}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "priority", Value: -1}, {Key: "scheduled_at", Value: 1}}).
		SetReturnDocument(options.After)

	var t Task
	err := s.tasks.FindOneAndUpdate(ctx, filter, update, opts).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoTaskToClaim
	}
	if err != nil {
		return nil, fmt.Errorf("claim task: %w", err)
	}
	return &t, nil
}

func (s *MongoStorage) CompleteTask(ctx context.Context, taskID string) error {
	res, err := s.tasks.UpdateByID(ctx, taskID, bson.M{
		"$set":   bson.M{"status": TaskStatusCompleted, "processed_at": s.now()},
		"$unset": bson.M{"locked_by": "", "locked_until": ""},
	})
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *MongoStorage) FailTask(ctx context.Context, taskID string, errorMsg string) error {
	var t Task
	if err := s.tasks.FindOne(ctx, bson.M{"_id": taskID}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("load task: %w", err)
	}

	now := s.now()
	retries := t.RetryCount + 1
	set := bson.M{"retry_count": retries, "error": errorMsg}
	if retries > t.MaxRetries {
		set["status"] = TaskStatusFailed
		set["processed_at"] = now
	} else {
		set["status"] = TaskStatusPending
		set["scheduled_at"] = now.Add(retryBackoff(retries))
	}

	if _, err := s.tasks.UpdateByID(ctx, taskID, bson.M{
		"$set":   set,
		"$unset": bson.M{"locked_by": "", "locked_until": ""},
	}); err != nil {
		return fmt.Errorf("fail task: %w", err)
	}
	return nil
}

func (s *MongoStorage) MoveToDLQ(ctx context.Context, taskID string) error {
	var t Task
	if err := s.tasks.FindOne(ctx, bson.M{"_id": taskID}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("load task: %w", err)
	}
	if _, err := s.dlq.InsertOne(ctx, deadTaskFrom(&t, s.now())); err != nil && !mongox.IsDuplicateKey(err) {
		return fmt.Errorf("insert dead task: %w", err)
	}
	if _, err := s.tasks.DeleteOne(ctx, bson.M{"_id": taskID}); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
