package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/pkg/queue"
)

func TestMemoryStorage_ClaimTask(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	newStorage := func() *queue.MemoryStorage {
		s := queue.NewMemoryStorage()
		s.SetClock(func() time.Time { return now })
		return s
	}
	task := func(id string, p queue.Priority, at time.Time) *queue.Task {
		return &queue.Task{ID: id, Queue: "q", TaskName: "n", Status: queue.TaskStatusPending, Priority: p, ScheduledAt: at, MaxRetries: 1}
	}

	t.Run("priority then schedule order", func(t *testing.T) {
		t.Parallel()
		s := newStorage()
		ctx := context.Background()
		require.NoError(t, s.CreateTask(ctx, task("low", queue.PriorityLow, now.Add(-time.Hour))))
		require.NoError(t, s.CreateTask(ctx, task("high-late", queue.PriorityHigh, now.Add(-time.Minute))))
		require.NoError(t, s.CreateTask(ctx, task("high-early", queue.PriorityHigh, now.Add(-time.Hour))))
		require.NoError(t, s.CreateTask(ctx, task("future", queue.PriorityMax, now.Add(time.Hour))))

		var order []string
		for range 3 {
			got, err := s.ClaimTask(ctx, "w", []string{"q"}, time.Minute)
			require.NoError(t, err)
			order = append(order, got.ID)
		}
		assert.Equal(t, []string{"high-early", "high-late", "low"}, order)

		_, err := s.ClaimTask(ctx, "w", []string{"q"}, time.Minute)
		assert.ErrorIs(t, err, queue.ErrNoTaskToClaim)
	})

	t.Run("other queues are ignored", func(t *testing.T) {
		t.Parallel()
		s := newStorage()
		require.NoError(t, s.CreateTask(context.Background(), task("a", queue.PriorityDefault, now)))
		_, err := s.ClaimTask(context.Background(), "w", []string{"other"}, time.Minute)
		assert.ErrorIs(t, err, queue.ErrNoTaskToClaim)
	})

	t.Run("expired lock is reclaimable", func(t *testing.T) {
		t.Parallel()
		s := queue.NewMemoryStorage()
		clock := now
		s.SetClock(func() time.Time { return clock })
		ctx := context.Background()
		require.NoError(t, s.CreateTask(ctx, task("a", queue.PriorityDefault, now)))

		first, err := s.ClaimTask(ctx, "w1", []string{"q"}, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "w1", first.LockedBy)

		_, err = s.ClaimTask(ctx, "w2", []string{"q"}, time.Minute)
		assert.ErrorIs(t, err, queue.ErrNoTaskToClaim)

		clock = now.Add(2 * time.Minute)
		second, err := s.ClaimTask(ctx, "w2", []string{"q"}, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "a", second.ID)
		assert.Equal(t, "w2", second.LockedBy)
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()
		s := newStorage()
		ctx := context.Background()
		assert.ErrorIs(t, s.CompleteTask(ctx, "nope"), queue.ErrTaskNotFound)
		assert.ErrorIs(t, s.FailTask(ctx, "nope", "x"), queue.ErrTaskNotFound)
		assert.ErrorIs(t, s.MoveToDLQ(ctx, "nope"), queue.ErrTaskNotFound)
		_, err := s.GetPendingTaskByName(ctx, "nope")
		assert.ErrorIs(t, err, queue.ErrTaskNotFound)
	})
}
