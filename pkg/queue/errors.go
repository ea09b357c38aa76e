package queue

import "errors"

var (
	ErrRepositoryNil          = errors.New("repository cannot be nil")
	ErrPayloadNil             = errors.New("payload cannot be nil")
	ErrInvalidPriority        = errors.New("priority must be between 0 and 100")
	ErrHandlerNotFound        = errors.New("no handler registered for task type")
	ErrNoHandlers             = errors.New("no task handlers registered")
	ErrTaskAlreadyRegistered  = errors.New("task already registered")
	ErrSchedulerNotConfigured = errors.New("scheduler has no registered tasks")
	ErrWorkerAlreadyStarted   = errors.New("worker already started")
	ErrWorkerNotStarted       = errors.New("worker not started")

	// ErrNoTaskToClaim is returned by ClaimTask when nothing is due. Not a failure.
	ErrNoTaskToClaim = errors.New("no task to claim")
	// ErrTaskNotFound is returned for unknown task ids and by GetPendingTaskByName.
	ErrTaskNotFound = errors.New("task not found")
)
