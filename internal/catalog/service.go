package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Enqueuer is the slice of the migration task queue the review service
// needs: an idempotent enqueue that reports whether a new task was
// actually created.
type Enqueuer interface {
	Enqueue(ctx context.Context, propertyID string) (bool, error)
}

// ReviewInput carries a status change request from the review UI.
type ReviewInput struct {
	Status     Status
	ReviewedBy string
	Notes      string
}

// Service drives the review state machine over a ReviewStore and wires
// the approval side effect into the migration task queue.
type Service struct {
	store ReviewStore
	queue Enqueuer
	log   *logrus.Logger
}

// NewService returns a review service.
func NewService(store ReviewStore, queue Enqueuer, log *logrus.Logger) *Service {
	return &Service{store: store, queue: queue, log: log}
}

// Store exposes the underlying review store for read paths.
func (s *Service) Store() ReviewStore {
	return s.store
}

// UpdateStatus validates and applies one review transition. Illegal
// transitions are rejected without touching the record. Entering
// approved enqueues a migration task unless a non-terminal one already
// exists for the property.
func (s *Service) UpdateStatus(ctx context.Context, id string, in ReviewInput) (*Property, error) {
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}

	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// migrated is owned by the task queue; review callers cannot request it.
	if in.Status == StatusMigrated || !p.Status.CanTransition(in.Status) {
		return nil, &IllegalTransitionError{From: p.Status, To: in.Status}
	}

	now := time.Now().UTC()
	change := StatusChange{
		From:       p.Status,
		To:         in.Status,
		ReviewedBy: in.ReviewedBy,
		ReviewedAt: &now,
		Notes:      in.Notes,
	}

	updated, err := s.store.ApplyStatus(ctx, id, change)
	if err != nil {
		return nil, err
	}

	if in.Status == StatusApproved {
		created, err := s.queue.Enqueue(ctx, id)
		if err != nil {
			return updated, fmt.Errorf("property approved but enqueue failed: %w", err)
		}
		if created {
			s.log.WithFields(logrus.Fields{"property": id, "wp_id": updated.SourceID}).
				Info("Migration task queued")
		} else {
			s.log.WithField("property", id).Debug("Migration task already in flight, enqueue skipped")
		}
	}

	return updated, nil
}

// MarkMigrated finalizes a successful migration: approved -> migrated
// with the destination identifier recorded. Only the task queue calls
// this.
func (s *Service) MarkMigrated(ctx context.Context, id, destinationID string) (*Property, error) {
	now := time.Now().UTC()
	change := StatusChange{
		From:          StatusApproved,
		To:            StatusMigrated,
		MigratedAt:    &now,
		DestinationID: destinationID,
	}
	return s.store.ApplyStatus(ctx, id, change)
}

// StatusBreakdown is the per-status slice of the stats projection.
type StatusBreakdown struct {
	Pending   int64 `json:"pending"`
	Reviewing int64 `json:"reviewing"`
	Approved  int64 `json:"approved"`
	Migrated  int64 `json:"migrated"`
	Rejected  int64 `json:"rejected"`
}

// Stats is the read-only projection consumed by dashboards. Remaining
// counts records still awaiting a terminal outcome; progress is the share
// that already reached one.
type Stats struct {
	Total           int64           `json:"total"`
	ByStatus        StatusBreakdown `json:"byStatus"`
	Remaining       int64           `json:"remaining"`
	ProgressPercent float64         `json:"progressPercent"`
	WithPhotos      int64           `json:"withPhotos"`
	WithoutPhotos   int64           `json:"withoutPhotos"`
}

// Stats computes the projection from store counts.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		Total: counts.Total,
		ByStatus: StatusBreakdown{
			Pending:   counts.ByStatus[StatusPending],
			Reviewing: counts.ByStatus[StatusReviewing],
			Approved:  counts.ByStatus[StatusApproved],
			Migrated:  counts.ByStatus[StatusMigrated],
			Rejected:  counts.ByStatus[StatusRejected],
		},
		WithPhotos:    counts.WithPhotos,
		WithoutPhotos: counts.WithoutPhotos,
	}
	st.Remaining = st.ByStatus.Pending + st.ByStatus.Reviewing + st.ByStatus.Approved
	if st.Total > 0 {
		st.ProgressPercent = float64(st.Total-st.Remaining) / float64(st.Total) * 100
	}
	return st, nil
}
