package migration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpcardozx/nova-ipe-sub022/internal/catalog"
)

// fakeDestination is a destination catalog with a switchable failure mode.
type fakeDestination struct {
	err     error
	upserts int
}

func (d *fakeDestination) UpsertEntry(ctx context.Context, p *catalog.Property) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.upserts++
	return fmt.Sprintf("dest-%d", p.SourceID), nil
}

type workerFixture struct {
	svc    *catalog.Service
	store  *catalog.MemoryStore
	queue  *MemoryQueue
	dest   *fakeDestination
	worker *Worker
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store := catalog.NewMemoryStore()
	queue := NewMemoryQueue()
	svc := catalog.NewService(store, queue, log)
	dest := &fakeDestination{}
	return &workerFixture{
		svc:    svc,
		store:  store,
		queue:  queue,
		dest:   dest,
		worker: NewWorker(queue, svc, dest, log, time.Millisecond),
	}
}

// approvedProperty seeds one pending record and approves it, which also
// enqueues its migration task.
func (f *workerFixture) approvedProperty(t *testing.T, sourceID int64) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.store.Upsert(ctx, &catalog.Property{
		SourceID: sourceID,
		Payload:  map[string]string{"field_313": "Casa"},
	}))
	p, err := f.store.GetBySourceID(ctx, sourceID)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, p.ID, catalog.ReviewInput{Status: catalog.StatusApproved, ReviewedBy: "ana"})
	require.NoError(t, err)
	return p.ID
}

func TestWorkerMigratesApprovedProperty(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)
	id := f.approvedProperty(t, 42)

	processed, err := f.worker.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	p, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusMigrated, p.Status)
	assert.Equal(t, "dest-42", p.DestinationID)
	require.NotNil(t, p.MigratedAt)

	tasks, err := f.queue.List(ctx, TaskCompleted)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 100, tasks[0].Progress)
	assert.Equal(t, 1, f.dest.upserts)
}

func TestWorkerEmptyQueue(t *testing.T) {
	f := newWorkerFixture(t)

	processed, err := f.worker.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestWorkerDestinationFailureLeavesPropertyApproved(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)
	id := f.approvedProperty(t, 42)
	f.dest.err = errors.New("connection refused")

	processed, err := f.worker.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	p, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusApproved, p.Status)
	assert.Empty(t, p.DestinationID)

	tasks, err := f.queue.List(ctx, TaskFailed)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Contains(t, tasks[0].ErrorMessage, "connection refused")
}

func TestWorkerRetryAfterRequeue(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)
	id := f.approvedProperty(t, 42)

	f.dest.err = errors.New("timeout")
	_, err := f.worker.ProcessNext(ctx)
	require.NoError(t, err)

	failed, err := f.queue.List(ctx, TaskFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)

	_, err = f.queue.Requeue(ctx, failed[0].ID)
	require.NoError(t, err)

	f.dest.err = nil
	_, err = f.worker.ProcessNext(ctx)
	require.NoError(t, err)

	p, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusMigrated, p.Status)
}

func TestWorkerFailsTaskForUnapprovedProperty(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	require.NoError(t, f.store.Upsert(ctx, &catalog.Property{SourceID: 42}))
	p, err := f.store.GetBySourceID(ctx, 42)
	require.NoError(t, err)

	// a task enqueued outside the approval path must not migrate a
	// property that is still pending
	_, err = f.queue.Enqueue(ctx, p.ID)
	require.NoError(t, err)

	processed, err := f.worker.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	stale, err := f.store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusPending, stale.Status)

	failed, err := f.queue.List(ctx, TaskFailed)
	require.NoError(t, err)
	assert.Len(t, failed, 1)
}

func TestWorkerFailsTaskForMissingProperty(t *testing.T) {
	ctx := context.Background()
	f := newWorkerFixture(t)

	_, err := f.queue.Enqueue(ctx, "ghost")
	require.NoError(t, err)

	processed, err := f.worker.ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	failed, err := f.queue.List(ctx, TaskFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].ErrorMessage, "load property")
}

func TestWorkerRunStopsOnContextCancel(t *testing.T) {
	f := newWorkerFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.worker.Run(ctx, 2)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop after cancellation")
	}
}
