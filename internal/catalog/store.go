package catalog

import (
	"context"
	"time"
)

// ListFilter narrows and pages a property listing.
type ListFilter struct {
	Status Status
	Page   int
	Limit  int
}

// StatusChange is the full set of fields a status update may touch. The
// store applies it conditionally on the record still being in From, so an
// update either fully succeeds or leaves the record untouched.
type StatusChange struct {
	From          Status
	To            Status
	ReviewedBy    string
	ReviewedAt    *time.Time
	Notes         string
	MigratedAt    *time.Time
	DestinationID string
}

// Counts is the raw material of the stats projection.
type Counts struct {
	Total         int64
	ByStatus      map[Status]int64
	WithPhotos    int64
	WithoutPhotos int64
}

// ReviewStore is the persistence contract for canonical properties.
// Upsert keys on the source id so re-imports never duplicate a record;
// ApplyStatus is a per-property compare-and-swap on the current status.
type ReviewStore interface {
	Upsert(ctx context.Context, p *Property) error
	Get(ctx context.Context, id string) (*Property, error)
	GetBySourceID(ctx context.Context, sourceID int64) (*Property, error)
	List(ctx context.Context, f ListFilter) ([]*Property, int64, error)
	ApplyStatus(ctx context.Context, id string, change StatusChange) (*Property, error)
	Counts(ctx context.Context) (*Counts, error)
}
