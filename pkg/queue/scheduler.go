package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/filevault/pkg/logger"
)

// SchedulerRepository is the storage side of periodic scheduling.
type SchedulerRepository interface {
	CreateTask(ctx context.Context, task *Task) error
	// GetPendingTaskByName returns ErrTaskNotFound when no pending task has that name.
	GetPendingTaskByName(ctx context.Context, taskName string) (*Task, error)
}

// Scheduler keeps one pending, payload-less task per registered periodic
// job. The pending task is the schedule's only state: once a worker claims
// it, the next check enqueues the following run.
type Scheduler struct {
	repo     SchedulerRepository
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu   sync.RWMutex
	jobs map[string]periodicJob
}

type periodicJob struct {
	schedule   Schedule
	queue      string
	priority   Priority
	maxRetries int8
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithCheckInterval sets how often pending jobs are checked, 30s by default.
func WithCheckInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// SchedulerTaskOption configures a registered periodic job.
type SchedulerTaskOption func(*periodicJob)

func WithTaskQueue(queue string) SchedulerTaskOption {
	return func(j *periodicJob) {
		if queue != "" {
			j.queue = queue
		}
	}
}

func WithTaskPriority(p Priority) SchedulerTaskOption {
	return func(j *periodicJob) {
		if p.Valid() {
			j.priority = p
		}
	}
}

func WithTaskMaxRetries(n int8) SchedulerTaskOption {
	return func(j *periodicJob) {
		if n >= 0 {
			j.maxRetries = n
		}
	}
}

func NewScheduler(repo SchedulerRepository, opts ...SchedulerOption) (*Scheduler, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}
	s := &Scheduler{
		repo:     repo,
		interval: 30 * time.Second,
		logger:   slog.Default(),
		now:      time.Now,
		jobs:     make(map[string]periodicJob),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("queue.scheduler"))
	return s, nil
}

// AddTask registers a periodic job. Workers handle it with a
// NewPeriodicTaskHandler of the same name.
func (s *Scheduler) AddTask(name string, schedule Schedule, opts ...SchedulerTaskOption) error {
	job := periodicJob{
		schedule:   schedule,
		queue:      DefaultQueueName,
		priority:   PriorityDefault,
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(&job)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("%w: %s", ErrTaskAlreadyRegistered, name)
	}
	s.jobs[name] = job

	s.logger.Info("registered periodic task",
		slog.String("task_name", name),
		slog.String("schedule", schedule.String()))
	return nil
}

// Start checks jobs immediately and then every check interval until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.RLock()
	empty := len(s.jobs) == 0
	s.mu.RUnlock()
	if empty {
		return ErrSchedulerNotConfigured
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		s.CheckTasks(ctx)
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

// Run returns a function for errgroup.
func (s *Scheduler) Run(ctx context.Context) func() error {
	return func() error { return s.Start(ctx) }
}

// CheckTasks enqueues the next run of every job without a pending task.
func (s *Scheduler) CheckTasks(ctx context.Context) {
	s.mu.RLock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)

	for _, name := range names {
		if err := s.ensurePending(ctx, name); err != nil {
			s.logger.Error("failed to schedule task",
				slog.String("task_name", name),
				logger.Error(err))
		}
	}
}

func (s *Scheduler) ensurePending(ctx context.Context, name string) error {
	s.mu.RLock()
	job := s.jobs[name]
	s.mu.RUnlock()

	_, err := s.repo.GetPendingTaskByName(ctx, name)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, ErrTaskNotFound):
		return fmt.Errorf("look up pending %s: %w", name, err)
	}

	now := s.now()
	next := job.schedule.Next(now)
	if err := s.repo.CreateTask(ctx, &Task{
		ID:          uuid.NewString(),
		Queue:       job.queue,
		TaskType:    TaskTypePeriodic,
		TaskName:    name,
		Status:      TaskStatusPending,
		Priority:    job.priority,
		MaxRetries:  job.maxRetries,
		ScheduledAt: next,
		CreatedAt:   now,
	}); err != nil {
		return fmt.Errorf("create periodic task %s: %w", name, err)
	}

	s.logger.Debug("created periodic task",
		slog.String("task_name", name),
		slog.Time("scheduled_for", next))
	return nil
}
