package catalog_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpcardozx/nova-ipe-sub022/internal/catalog"
	"github.com/jpcardozx/nova-ipe-sub022/internal/migration"
)

func newTestService(t *testing.T) (*catalog.Service, *catalog.MemoryStore, *migration.MemoryQueue) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	store := catalog.NewMemoryStore()
	queue := migration.NewMemoryQueue()
	return catalog.NewService(store, queue, log), store, queue
}

func seedProperty(t *testing.T, store *catalog.MemoryStore, sourceID int64) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, &catalog.Property{
		SourceID:   sourceID,
		Payload:    map[string]string{"field_313": "Casa de teste"},
		PhotoCount: 2,
	}))
	p, err := store.GetBySourceID(ctx, sourceID)
	require.NoError(t, err)
	require.Equal(t, catalog.StatusPending, p.Status)
	return p.ID
}

func TestApproveEnqueuesMigrationTask(t *testing.T) {
	ctx := context.Background()
	svc, store, queue := newTestService(t)
	id := seedProperty(t, store, 42)

	p, err := svc.UpdateStatus(ctx, id, catalog.ReviewInput{
		Status:     catalog.StatusApproved,
		ReviewedBy: "ana",
		Notes:      "fotos conferidas",
	})
	require.NoError(t, err)

	assert.Equal(t, catalog.StatusApproved, p.Status)
	assert.Equal(t, "ana", p.ReviewedBy)
	assert.Equal(t, "fotos conferidas", p.Notes)
	require.NotNil(t, p.ReviewedAt)

	tasks, err := queue.List(ctx, migration.TaskQueued)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].PropertyID)
}

func TestReapprovalDoesNotDuplicateTask(t *testing.T) {
	ctx := context.Background()
	svc, store, queue := newTestService(t)
	id := seedProperty(t, store, 42)

	_, err := svc.UpdateStatus(ctx, id, catalog.ReviewInput{Status: catalog.StatusApproved, ReviewedBy: "ana"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, id, catalog.ReviewInput{Status: catalog.StatusApproved, ReviewedBy: "bia"})
	require.NoError(t, err)

	tasks, err := queue.List(ctx, migration.TaskQueued)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	p, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "bia", p.ReviewedBy)
}

func TestReviewFlowThroughReviewing(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	id := seedProperty(t, store, 42)

	p, err := svc.UpdateStatus(ctx, id, catalog.ReviewInput{Status: catalog.StatusReviewing, ReviewedBy: "ana"})
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusReviewing, p.Status)

	p, err = svc.UpdateStatus(ctx, id, catalog.ReviewInput{Status: catalog.StatusRejected, ReviewedBy: "ana", Notes: "duplicada"})
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusRejected, p.Status)
}

func TestIllegalTransitionsRejected(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	id := seedProperty(t, store, 42)

	// review callers can never request migrated directly
	_, err := svc.UpdateStatus(ctx, id, catalog.ReviewInput{Status: catalog.StatusMigrated})
	var illegal *catalog.IllegalTransitionError
	assert.ErrorAs(t, err, &illegal)

	_, err = svc.UpdateStatus(ctx, id, catalog.ReviewInput{Status: catalog.StatusRejected, ReviewedBy: "ana"})
	require.NoError(t, err)

	// rejected is terminal
	_, err = svc.UpdateStatus(ctx, id, catalog.ReviewInput{Status: catalog.StatusApproved})
	assert.ErrorAs(t, err, &illegal)

	p, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusRejected, p.Status)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	id := seedProperty(t, store, 42)

	_, err := svc.UpdateStatus(ctx, id, catalog.ReviewInput{Status: "archived"})
	assert.ErrorIs(t, err, catalog.ErrInvalidStatus)
}

func TestUpdateStatusUnknownProperty(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.UpdateStatus(context.Background(), "missing", catalog.ReviewInput{Status: catalog.StatusApproved})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestMarkMigrated(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	id := seedProperty(t, store, 42)

	_, err := svc.UpdateStatus(ctx, id, catalog.ReviewInput{Status: catalog.StatusApproved, ReviewedBy: "ana"})
	require.NoError(t, err)

	p, err := svc.MarkMigrated(ctx, id, "dest-123")
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusMigrated, p.Status)
	assert.Equal(t, "dest-123", p.DestinationID)
	require.NotNil(t, p.MigratedAt)

	// audit trail from the review is preserved
	assert.Equal(t, "ana", p.ReviewedBy)
}

func TestMarkMigratedRequiresApproved(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	id := seedProperty(t, store, 42)

	_, err := svc.MarkMigrated(ctx, id, "dest-123")
	assert.ErrorIs(t, err, catalog.ErrConflict)

	p, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusPending, p.Status)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	ids := make([]string, 0, 4)
	for i := int64(1); i <= 4; i++ {
		ids = append(ids, seedProperty(t, store, i))
	}

	_, err := svc.UpdateStatus(ctx, ids[1], catalog.ReviewInput{Status: catalog.StatusApproved, ReviewedBy: "ana"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, ids[2], catalog.ReviewInput{Status: catalog.StatusRejected, ReviewedBy: "ana"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, ids[3], catalog.ReviewInput{Status: catalog.StatusApproved, ReviewedBy: "ana"})
	require.NoError(t, err)
	_, err = svc.MarkMigrated(ctx, ids[3], "dest-9")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus.Pending)
	assert.Equal(t, int64(1), stats.ByStatus.Approved)
	assert.Equal(t, int64(1), stats.ByStatus.Rejected)
	assert.Equal(t, int64(1), stats.ByStatus.Migrated)
	assert.Equal(t, int64(2), stats.Remaining)
	assert.InDelta(t, 50.0, stats.ProgressPercent, 0.001)
	assert.Equal(t, int64(4), stats.WithPhotos)
}

func TestStatsEmptyStore(t *testing.T) {
	svc, _, _ := newTestService(t)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total)
	assert.Equal(t, 0.0, stats.ProgressPercent)
}
