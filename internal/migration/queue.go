package migration

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when a task id resolves to nothing.
var ErrTaskNotFound = errors.New("migration task not found")

// ErrNotFailed rejects a requeue of a task that is not in the failed state.
var ErrNotFailed = errors.New("only failed tasks can be requeued")

// ErrTaskActive rejects a requeue while the property already has a
// non-terminal task.
var ErrTaskActive = errors.New("property already has an active migration task")

// Queue is the persistence contract for migration tasks. Enqueue is
// idempotent per property: it reports false instead of creating a second
// non-terminal task. Claim hands the oldest queued task to a worker.
type Queue interface {
	Enqueue(ctx context.Context, propertyID string) (bool, error)
	Claim(ctx context.Context) (*Task, error)
	SetProgress(ctx context.Context, taskID string, progress int) error
	Complete(ctx context.Context, taskID string) error
	Fail(ctx context.Context, taskID, message string) error
	Get(ctx context.Context, taskID string) (*Task, error)
	List(ctx context.Context, status TaskStatus) ([]*Task, error)
	Requeue(ctx context.Context, taskID string) (*Task, error)
}

// MemoryQueue is an in-memory Queue backing tests and --dry-run runs.
type MemoryQueue struct {
	mu    sync.Mutex
	tasks map[string]*Task
	seq   int64
}

// NewMemoryQueue returns an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{tasks: make(map[string]*Task)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, propertyID string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, t := range q.tasks {
		if t.PropertyID == propertyID && !t.Status.Terminal() {
			return false, nil
		}
	}

	q.seq++
	task := &Task{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		Status:     TaskQueued,
		CreatedAt:  time.Now().UTC().Add(time.Duration(q.seq)), // strictly ordered for oldest-first claims
	}
	q.tasks[task.ID] = task
	return true, nil
}

func (q *MemoryQueue) Claim(ctx context.Context) (*Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var oldest *Task
	for _, t := range q.tasks {
		if t.Status != TaskQueued {
			continue
		}
		if oldest == nil || t.CreatedAt.Before(oldest.CreatedAt) {
			oldest = t
		}
	}
	if oldest == nil {
		return nil, nil
	}

	now := time.Now().UTC()
	oldest.Status = TaskProcessing
	oldest.StartedAt = &now
	c := *oldest
	return &c, nil
}

func (q *MemoryQueue) SetProgress(ctx context.Context, taskID string, progress int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	t.Progress = progress
	return nil
}

func (q *MemoryQueue) Complete(ctx context.Context, taskID string) error {
	return q.finish(taskID, TaskCompleted, "")
}

func (q *MemoryQueue) Fail(ctx context.Context, taskID, message string) error {
	return q.finish(taskID, TaskFailed, message)
}

func (q *MemoryQueue) finish(taskID string, status TaskStatus, message string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	now := time.Now().UTC()
	t.Status = status
	t.CompletedAt = &now
	t.ErrorMessage = message
	if status == TaskCompleted {
		t.Progress = 100
	}
	return nil
}

func (q *MemoryQueue) Get(ctx context.Context, taskID string) (*Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.tasks[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	c := *t
	return &c, nil
}

func (q *MemoryQueue) List(ctx context.Context, status TaskStatus) ([]*Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []*Task
	for _, t := range q.tasks {
		if status != "" && t.Status != status {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (q *MemoryQueue) Requeue(ctx context.Context, taskID string) (*Task, error) {
	q.mu.Lock()
	old, ok := q.tasks[taskID]
	if !ok {
		q.mu.Unlock()
		return nil, ErrTaskNotFound
	}
	if old.Status != TaskFailed {
		q.mu.Unlock()
		return nil, ErrNotFailed
	}
	propertyID := old.PropertyID
	q.mu.Unlock()

	created, err := q.Enqueue(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrTaskActive
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, t := range q.tasks {
		if t.PropertyID == propertyID && t.Status == TaskQueued {
			c := *t
			return &c, nil
		}
	}
	return nil, ErrTaskNotFound
}
