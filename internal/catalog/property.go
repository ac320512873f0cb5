// Package catalog holds the staged review store: canonical property
// records, their review state machine, and the stats projection consumed
// by dashboards.
package catalog

import "time"

// Status is the review state of a canonical property.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReviewing Status = "reviewing"
	StatusApproved  Status = "approved"
	StatusMigrated  Status = "migrated"
	StatusRejected  Status = "rejected"
)

// transitions is the explicit transition table. The approved self-loop
// makes re-approval legal: audit fields update again and the queue-side
// enqueue stays idempotent. migrated is reachable only through the task
// queue's MarkMigrated path, never through UpdateStatus.
var transitions = map[Status][]Status{
	StatusPending:   {StatusReviewing, StatusApproved, StatusRejected},
	StatusReviewing: {StatusApproved, StatusRejected},
	StatusApproved:  {StatusApproved, StatusMigrated},
	StatusMigrated:  {},
	StatusRejected:  {},
}

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether s -> to is in the transition table.
func (s Status) CanTransition(to Status) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Property is the durable record written to the review store, one per
// distinct source id. Rejection is a terminal status, not a removal;
// records are never deleted.
type Property struct {
	ID            string            `bson:"_id" json:"id"`
	SourceID      int64             `bson:"wp_id" json:"sourceId"`
	Payload       map[string]string `bson:"payload" json:"payload"`
	Status        Status            `bson:"status" json:"status"`
	PhotoCount    int               `bson:"photo_count" json:"photoCount"`
	PhotoURLs     []string          `bson:"photo_urls,omitempty" json:"photoUrls,omitempty"`
	ThumbnailURL  string            `bson:"thumbnail_url,omitempty" json:"thumbnailUrl,omitempty"`
	ReviewedBy    string            `bson:"reviewed_by,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time        `bson:"reviewed_at,omitempty" json:"reviewedAt,omitempty"`
	Notes         string            `bson:"notes,omitempty" json:"notes,omitempty"`
	MigratedAt    *time.Time        `bson:"migrated_at,omitempty" json:"migratedAt,omitempty"`
	DestinationID string            `bson:"destination_id,omitempty" json:"destinationId,omitempty"`
	CreatedAt     time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time         `bson:"updated_at" json:"updatedAt"`
}
