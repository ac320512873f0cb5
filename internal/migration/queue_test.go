package migration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueIsIdempotentPerProperty(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	created, err := q.Enqueue(ctx, "prop-1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = q.Enqueue(ctx, "prop-1")
	require.NoError(t, err)
	assert.False(t, created)

	tasks, err := q.List(ctx, TaskQueued)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestClaimOldestFirst(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	for _, id := range []string{"prop-1", "prop-2", "prop-3"} {
		_, err := q.Enqueue(ctx, id)
		require.NoError(t, err)
	}

	first, err := q.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "prop-1", first.PropertyID)
	assert.Equal(t, TaskProcessing, first.Status)
	require.NotNil(t, first.StartedAt)

	second, err := q.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "prop-2", second.PropertyID)
}

func TestClaimEmptyQueue(t *testing.T) {
	task, err := NewMemoryQueue().Claim(context.Background())
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestCompleteFinalizesTask(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	_, err := q.Enqueue(ctx, "prop-1")
	require.NoError(t, err)
	task, err := q.Claim(ctx)
	require.NoError(t, err)

	require.NoError(t, q.SetProgress(ctx, task.ID, 70))
	require.NoError(t, q.Complete(ctx, task.ID))

	done, err := q.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskCompleted, done.Status)
	assert.Equal(t, 100, done.Progress)
	require.NotNil(t, done.CompletedAt)

	// a terminal task no longer blocks a fresh enqueue
	created, err := q.Enqueue(ctx, "prop-1")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestFailRecordsMessage(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	_, err := q.Enqueue(ctx, "prop-1")
	require.NoError(t, err)
	task, err := q.Claim(ctx)
	require.NoError(t, err)

	require.NoError(t, q.Fail(ctx, task.ID, "destination write: timeout"))

	failed, err := q.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskFailed, failed.Status)
	assert.Equal(t, "destination write: timeout", failed.ErrorMessage)
}

func TestRequeueFailedTask(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	_, err := q.Enqueue(ctx, "prop-1")
	require.NoError(t, err)
	task, err := q.Claim(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Fail(ctx, task.ID, "boom"))

	fresh, err := q.Requeue(ctx, task.ID)
	require.NoError(t, err)
	assert.NotEqual(t, task.ID, fresh.ID)
	assert.Equal(t, "prop-1", fresh.PropertyID)
	assert.Equal(t, TaskQueued, fresh.Status)

	// the failed task stays in the log untouched
	old, err := q.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, TaskFailed, old.Status)
}

func TestRequeueRejectsNonFailedTask(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	_, err := q.Enqueue(ctx, "prop-1")
	require.NoError(t, err)
	tasks, err := q.List(ctx, TaskQueued)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	_, err = q.Requeue(ctx, tasks[0].ID)
	assert.ErrorIs(t, err, ErrNotFailed)
}

func TestRequeueRejectsWhenPropertyHasActiveTask(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	_, err := q.Enqueue(ctx, "prop-1")
	require.NoError(t, err)
	task, err := q.Claim(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Fail(ctx, task.ID, "boom"))

	// a second task is already in flight for the property
	_, err = q.Enqueue(ctx, "prop-1")
	require.NoError(t, err)

	_, err = q.Requeue(ctx, task.ID)
	assert.ErrorIs(t, err, ErrTaskActive)
}

func TestRequeueUnknownTask(t *testing.T) {
	_, err := NewMemoryQueue().Requeue(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue()

	_, err := q.Enqueue(ctx, "prop-1")
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, "prop-2")
	require.NoError(t, err)
	task, err := q.Claim(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Complete(ctx, task.ID))

	queued, err := q.List(ctx, TaskQueued)
	require.NoError(t, err)
	assert.Len(t, queued, 1)

	completed, err := q.List(ctx, TaskCompleted)
	require.NoError(t, err)
	assert.Len(t, completed, 1)

	all, err := q.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
