package queue

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStorage is an in-process repository for tests and single-node development.
type MemoryStorage struct {
	mu    sync.Mutex
	tasks map[string]*Task
	dlq   map[string]*DeadTask
	now   func() time.Time
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks: make(map[string]*Task),
		dlq:   make(map[string]*DeadTask),
		now:   time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (s *MemoryStorage) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *MemoryStorage) CreateTask(_ context.Context, task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *task
	s.tasks[task.ID] = &cp
	return nil
}

func (s *MemoryStorage) GetPendingTaskByName(_ context.Context, taskName string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.TaskName == taskName && t.Status == TaskStatusPending {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrTaskNotFound
}

// ClaimTask picks the highest priority due task, then the earliest scheduled.
// Processing tasks whose lock expired are claimable again.
func (s *MemoryStorage) ClaimTask(_ context.Context, workerID string, queues []string, lockDuration time.Duration) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var best *Task
	for _, t := range s.tasks {
		if !slices.Contains(queues, t.Queue) || !claimable(t, now) {
			continue
		}
		if best == nil ||
			t.Priority > best.Priority ||
			(t.Priority == best.Priority && t.ScheduledAt.Before(best.ScheduledAt)) {
			best = t
		}
	}
	if best == nil {
		return nil, ErrNoTaskToClaim
	}

	lockedUntil := now.Add(lockDuration)
	best.Status = TaskStatusProcessing
	best.LockedBy = workerID
	best.LockedUntil = &lockedUntil

	cp := *best
	return &cp, nil
}

func claimable(t *Task, now time.Time) bool {
	switch t.Status {
	case TaskStatusPending:
		return !t.ScheduledAt.After(now)
	case TaskStatusProcessing:
		return t.LockedUntil != nil && t.LockedUntil.Before(now)
	default:
		return false
	}
}

func (s *MemoryStorage) CompleteTask(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	now := s.now()
	t.Status = TaskStatusCompleted
	t.ProcessedAt = &now
	t.LockedBy = ""
	t.LockedUntil = nil
	return nil
}

func (s *MemoryStorage) FailTask(_ context.Context, taskID string, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	now := s.now()
	t.RetryCount++
	t.Error = errorMsg
	t.LockedBy = ""
	t.LockedUntil = nil
	if t.RetryCount > t.MaxRetries {
		t.Status = TaskStatusFailed
		t.ProcessedAt = &now
		return nil
	}
	t.Status = TaskStatusPending
	t.ScheduledAt = now.Add(retryBackoff(t.RetryCount))
	return nil
}

func (s *MemoryStorage) MoveToDLQ(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	s.dlq[taskID] = deadTaskFrom(t, s.now())
	delete(s.tasks, taskID)
	return nil
}

// Task returns a copy of the stored task.
func (s *MemoryStorage) Task(taskID string) (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}

// Tasks returns copies of all live tasks with the given status.
func (s *MemoryStorage) Tasks(status TaskStatus) []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.Status == status {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}

// DeadTasks returns copies of the dead letter entries.
func (s *MemoryStorage) DeadTasks() []*DeadTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*DeadTask, 0, len(s.dlq))
	for _, d := range s.dlq {
		cp := *d
		out = append(out, &cp)
	}
	return out
}
