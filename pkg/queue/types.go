package queue

import "time"

// DefaultQueueName is used when no queue is specified.
const DefaultQueueName = "default"

// TaskType distinguishes enqueued tasks from scheduler-created ones.
type TaskType string

const (
	TaskTypeOneTime  TaskType = "one-time"
	TaskTypePeriodic TaskType = "periodic"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Priority ranges from 0 to 100; higher runs first.
type Priority int8

const (
	PriorityMin     Priority = 0
	PriorityLow     Priority = 25
	PriorityMedium  Priority = 50
	PriorityHigh    Priority = 75
	PriorityMax     Priority = 100
	PriorityDefault Priority = PriorityMedium
)

// Valid checks if the priority is within range.
func (p Priority) Valid() bool {
	return p >= PriorityMin && p <= PriorityMax
}

// Task is a unit of work stored in the queue.
type Task struct {
	ID          string     `json:"id" bson:"_id"`
	Queue       string     `json:"queue" bson:"queue"`
	TaskType    TaskType   `json:"task_type" bson:"task_type"`
	TaskName    string     `json:"task_name" bson:"task_name"`
	Payload     []byte     `json:"payload,omitempty" bson:"payload,omitempty"`
	Status      TaskStatus `json:"status" bson:"status"`
	Priority    Priority   `json:"priority" bson:"priority"`
	RetryCount  int8       `json:"retry_count" bson:"retry_count"`
	MaxRetries  int8       `json:"max_retries" bson:"max_retries"`
	ScheduledAt time.Time  `json:"scheduled_at" bson:"scheduled_at"`
	LockedUntil *time.Time `json:"locked_until,omitempty" bson:"locked_until,omitempty"`
	LockedBy    string     `json:"locked_by,omitempty" bson:"locked_by,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
	Error       string     `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}

// DeadTask is a task that exhausted its retries, kept for inspection.
type DeadTask struct {
	ID         string    `json:"id" bson:"_id"`
	Queue      string    `json:"queue" bson:"queue"`
	TaskType   TaskType  `json:"task_type" bson:"task_type"`
	TaskName   string    `json:"task_name" bson:"task_name"`
	Payload    []byte    `json:"payload,omitempty" bson:"payload,omitempty"`
	Priority   Priority  `json:"priority" bson:"priority"`
	Error      string    `json:"error" bson:"error"`
	RetryCount int8      `json:"retry_count" bson:"retry_count"`
	FailedAt   time.Time `json:"failed_at" bson:"failed_at"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

func deadTaskFrom(t *Task, now time.Time) *DeadTask {
	return &DeadTask{
		ID:         t.ID,
		Queue:      t.Queue,
		TaskType:   t.TaskType,
		TaskName:   t.TaskName,
		Payload:    t.Payload,
		Priority:   t.Priority,
		Error:      t.Error,
		RetryCount: t.RetryCount,
		FailedAt:   now,
		CreatedAt:  t.CreatedAt,
	}
}

// retryBackoff is the delay before attempt n+1 after n failures.
func retryBackoff(failures int8) time.Duration {
	return time.Duration(failures) * time.Duration(failures) * 5 * time.Second
}
