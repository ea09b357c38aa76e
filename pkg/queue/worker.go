package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/filevault/pkg/logger"
)

// WorkerRepository is the storage side of task processing.
type WorkerRepository interface {
	// ClaimTask locks the next due task for workerID. Returns ErrNoTaskToClaim when idle.
	ClaimTask(ctx context.Context, workerID string, queues []string, lockDuration time.Duration) (*Task, error)
	CompleteTask(ctx context.Context, taskID string) error
	// FailTask records errorMsg and either reschedules the task or marks it failed.
	FailTask(ctx context.Context, taskID string, errorMsg string) error
	MoveToDLQ(ctx context.Context, taskID string) error
}

// Worker runs a fixed number of pollers. Each poller claims a task, runs its
// handler and claims again until the queue is empty, then sleeps for one
// poll interval.
type Worker struct {
	repo     WorkerRepository
	id       string
	queues   []string
	poll     time.Duration
	lock     time.Duration
	pollers  int
	logger   *slog.Logger
	handlers map[string]Handler

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// WorkerOption configures a Worker. Zero and negative values keep the default.
type WorkerOption func(*Worker)

// WithQueues sets the queues the worker claims from.
func WithQueues(queues ...string) WorkerOption {
	return func(w *Worker) {
		if len(queues) > 0 {
			w.queues = queues
		}
	}
}

func WithPollInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.poll = d
		}
	}
}

// WithLockTimeout bounds how long a claimed task stays invisible to other workers.
func WithLockTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.lock = d
		}
	}
}

func WithMaxConcurrentTasks(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.pollers = n
		}
	}
}

func WithWorkerLogger(l *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithWorkerConfig applies the values of cfg.
func WithWorkerConfig(cfg Config) WorkerOption {
	return func(w *Worker) {
		WithPollInterval(cfg.PollInterval)(w)
		WithLockTimeout(cfg.LockTimeout)(w)
		WithMaxConcurrentTasks(cfg.MaxConcurrentTasks)(w)
	}
}

// NewWorker creates a worker. Handlers must be registered before Start.
func NewWorker(repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	w := &Worker{
		repo:     repo,
		id:       uuid.NewString(),
		queues:   []string{DefaultQueueName},
		poll:     2 * time.Second,
		lock:     5 * time.Minute,
		pollers:  1,
		logger:   slog.Default(),
		handlers: make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(logger.Component("queue.worker"), slog.String("worker_id", w.id))
	return w, nil
}

// RegisterHandlers adds handlers keyed by their Name.
func (w *Worker) RegisterHandlers(handlers ...Handler) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, h := range handlers {
		if h == nil {
			continue
		}
		if _, dup := w.handlers[h.Name()]; dup {
			return fmt.Errorf("%w: %s", ErrTaskAlreadyRegistered, h.Name())
		}
		w.handlers[h.Name()] = h
	}
	return nil
}

// Start launches the pollers in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.cancel != nil:
		return ErrWorkerAlreadyStarted
	case len(w.handlers) == 0:
		return ErrNoHandlers
	}

	ctx, w.cancel = context.WithCancel(ctx)
	for range w.pollers {
		w.wg.Add(1)
		go w.pollLoop(ctx)
	}

	w.logger.Info("worker started", slog.Any("queues", w.queues), slog.Int("pollers", w.pollers))
	return nil
}

// Stop cancels the pollers and waits for in-flight tasks.
func (w *Worker) Stop() error {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return ErrWorkerNotStarted
	}
	cancel()
	w.wg.Wait()

	w.logger.Info("worker stopped")
	return nil
}

// Run returns a function for errgroup: it starts the worker and stops it
// once ctx is done.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return w.Stop()
	}
}

func (w *Worker) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	timer := time.NewTimer(w.poll)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		for ctx.Err() == nil {
			claimed, err := w.ProcessNext(ctx)
			if err != nil {
				w.logger.Error("failed to process task", logger.Error(err))
			}
			if !claimed || err != nil {
				break
			}
		}
		timer.Reset(w.poll)
	}
}

// ProcessNext claims and handles a single task and reports whether one was
// claimed. Tests and one-shot tools use it to drive the worker directly.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	task, err := w.repo.ClaimTask(ctx, w.id, w.queues, w.lock)
	if errors.Is(err, ErrNoTaskToClaim) || (err == nil && task == nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("claim task: %w", err)
	}

	w.mu.Lock()
	h, ok := w.handlers[task.TaskName]
	w.mu.Unlock()

	start := time.Now()
	if !ok {
		err = fmt.Errorf("%w: %s", ErrHandlerNotFound, task.TaskName)
	} else {
		err = w.execute(ctx, h, task)
	}

	// Bookkeeping must land even if the worker is shutting down.
	return true, w.settle(context.WithoutCancel(ctx), task, err, time.Since(start))
}

// settle records the outcome of task. Unknown task names fail without retry
// accounting; handler errors past MaxRetries go to the dead letter queue.
func (w *Worker) settle(ctx context.Context, task *Task, runErr error, took time.Duration) error {
	log := w.logger.With(logger.TaskID(task.ID), slog.String("task_name", task.TaskName))

	if runErr == nil {
		if err := w.repo.CompleteTask(ctx, task.ID); err != nil {
			return fmt.Errorf("complete task %s: %w", task.ID, err)
		}
		log.Debug("task completed", logger.Duration(took))
		return nil
	}

	if err := w.repo.FailTask(ctx, task.ID, runErr.Error()); err != nil {
		return fmt.Errorf("fail task %s: %w", task.ID, err)
	}
	if errors.Is(runErr, ErrHandlerNotFound) {
		log.Warn("no handler for task")
		return nil
	}

	log.Warn("task failed",
		logger.Error(runErr),
		logger.RetryCount(int(task.RetryCount)+1),
		logger.Duration(took))
	if task.RetryCount+1 <= task.MaxRetries {
		return nil
	}
	if err := w.repo.MoveToDLQ(ctx, task.ID); err != nil {
		return fmt.Errorf("move task %s to DLQ: %w", task.ID, err)
	}
	log.Error("task moved to dead letter queue", logger.Error(runErr))
	return nil
}

func (w *Worker) execute(ctx context.Context, h Handler, task *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
			w.logger.Error("task handler panic",
				logger.TaskID(task.ID),
				slog.String("stack", string(debug.Stack())))
		}
	}()
	return h.Handle(ctx, task.Payload)
}
