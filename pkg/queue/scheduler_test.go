package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/pkg/logger"
	"github.com/dmitrymomot/filevault/pkg/queue"
)

func TestScheduler(t *testing.T) {
	t.Parallel()

	t.Run("no tasks", func(t *testing.T) {
		t.Parallel()
		s, err := queue.NewScheduler(queue.NewMemoryStorage(), queue.WithSchedulerLogger(logger.Noop()))
		require.NoError(t, err)
		assert.ErrorIs(t, s.Start(context.Background()), queue.ErrSchedulerNotConfigured)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		t.Parallel()
		s, err := queue.NewScheduler(queue.NewMemoryStorage(), queue.WithSchedulerLogger(logger.Noop()))
		require.NoError(t, err)
		require.NoError(t, s.AddTask("sweep", queue.EveryInterval(15*time.Minute)))
		assert.ErrorIs(t, s.AddTask("sweep", queue.EveryInterval(15*time.Minute)), queue.ErrTaskAlreadyRegistered)
	})

	t.Run("keeps a single pending instance", func(t *testing.T) {
		t.Parallel()
		storage := queue.NewMemoryStorage()
		s, err := queue.NewScheduler(storage, queue.WithSchedulerLogger(logger.Noop()))
		require.NoError(t, err)
		require.NoError(t, s.AddTask("sweep", queue.EveryInterval(15*time.Minute), queue.WithTaskQueue("files")))

		s.CheckTasks(context.Background())
		s.CheckTasks(context.Background())

		pending := storage.Tasks(queue.TaskStatusPending)
		require.Len(t, pending, 1)
		assert.Equal(t, "sweep", pending[0].TaskName)
		assert.Equal(t, "files", pending[0].Queue)
		assert.Equal(t, queue.TaskTypePeriodic, pending[0].TaskType)
		assert.Empty(t, pending[0].Payload)
	})

	t.Run("periodic handler runs scheduled task", func(t *testing.T) {
		t.Parallel()
		storage := queue.NewMemoryStorage()
		s, err := queue.NewScheduler(storage, queue.WithSchedulerLogger(logger.Noop()))
		require.NoError(t, err)
		require.NoError(t, s.AddTask("sweep", queue.EveryInterval(time.Minute)))
		s.CheckTasks(context.Background())

		storage.SetClock(func() time.Time { return time.Now().Add(2 * time.Minute) })

		ran := false
		w := newWorker(t, storage, queue.NewPeriodicTaskHandler("sweep", func(context.Context) error {
			ran = true
			return nil
		}))
		claimed, err := w.ProcessNext(context.Background())
		require.NoError(t, err)
		assert.True(t, claimed)
		assert.True(t, ran)
	})
}

func TestSchedules(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		schedule queue.Schedule
		want     time.Time
	}{
		{"interval", queue.EveryInterval(10 * time.Minute), from.Add(10 * time.Minute)},
		{"non-positive interval", queue.EveryInterval(0), from.Add(time.Minute)},
		{"daily later today", queue.DailyAt(16, 0), time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)},
		{"daily tomorrow", queue.DailyAt(9, 15), time.Date(2025, 3, 11, 9, 15, 0, 0, time.UTC)},
		{"daily same instant rolls over", queue.DailyAt(14, 30), time.Date(2025, 3, 11, 14, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.schedule.Next(from))
		})
	}
}
