package files

import (
	"context"
	"time"

	"github.com/dmitrymomot/filevault/pkg/queue"
)

// SweepTaskName is the periodic task that re-schedules stale purges.
const SweepTaskName = "files.sweep"

// PurgeFile removes a file marked for deletion.
type PurgeFile struct {
	FileID string `json:"file_id"`
}

// TaskHandlers returns the queue handlers of the file service.
func (s *Service) TaskHandlers() []queue.Handler {
	return []queue.Handler{
		queue.NewTaskHandler[PurgeFile](func(ctx context.Context, t PurgeFile) error {
			return s.Purge(ctx, t.FileID)
		}),
		queue.NewPeriodicTaskHandler(SweepTaskName, s.Sweep),
	}
}

// ScheduleSweep registers the sweep with the scheduler. A non-positive
// interval uses the configured one.
func (s *Service) ScheduleSweep(scheduler *queue.Scheduler, every time.Duration) error {
	if every <= 0 {
		every = s.cfg.SweepInterval
	}
	return scheduler.AddTask(SweepTaskName, queue.EveryInterval(every), queue.WithTaskPriority(queue.PriorityLow))
}
