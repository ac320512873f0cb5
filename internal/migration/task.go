// Package migration promotes approved properties into the production
// catalog through an asynchronous task queue.
package migration

import "time"

// TaskStatus is the lifecycle state of one migration attempt.
type TaskStatus string

const (
	TaskQueued     TaskStatus = "queued"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Terminal reports whether the task reached an end state. Terminal tasks
// are never mutated again; a failed migration is retried by creating a
// new task, not by reviving the old one.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Task is one promotion attempt for one property. At most one
// non-terminal task exists per property at any time; that is enforced at
// enqueue time and is what keeps two workers from migrating the same
// property into two destination records.
type Task struct {
	ID           string     `bson:"_id" json:"id"`
	PropertyID   string     `bson:"property_id" json:"propertyId"`
	Status       TaskStatus `bson:"status" json:"status"`
	Progress     int        `bson:"progress" json:"progress"`
	ErrorMessage string     `bson:"error_message,omitempty" json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"createdAt"`
	StartedAt    *time.Time `bson:"started_at,omitempty" json:"startedAt,omitempty"`
	CompletedAt  *time.Time `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}
