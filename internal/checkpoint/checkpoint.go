// Package checkpoint tracks durable import progress so a multi-hour run
// can be interrupted and resumed without loss or duplication.
package checkpoint

import (
	"fmt"
	"time"
)

// ImportError is one append-only entry of the checkpoint error log.
type ImportError struct {
	SourceID  int64     `bson:"source_id" json:"sourceId"`
	Reason    string    `bson:"reason" json:"reason"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Checkpoint is the unit of crash recovery for one import run. It is an
// explicitly passed value with a single-writer contract: exactly one
// orchestrator owns it between Load and the final CommitBatch, and the
// Version counter lets stores detect a second writer.
type Checkpoint struct {
	LastProcessedID  int64         `bson:"last_processed_id" json:"lastProcessedId"`
	TotalProcessed   int           `bson:"total_processed" json:"totalProcessed"`
	TotalFailed      int           `bson:"total_failed" json:"totalFailed"`
	Errors           []ImportError `bson:"errors" json:"errors"`
	CompletedBatches []string      `bson:"completed_batches" json:"completedBatches"`
	StartedAt        time.Time     `bson:"started_at" json:"startedAt"`
	LastUpdatedAt    time.Time     `bson:"last_updated_at" json:"lastUpdatedAt"`
	Version          int64         `bson:"version" json:"version"`
}

// New returns a fresh checkpoint for a run starting now.
func New() *Checkpoint {
	now := time.Now().UTC()
	return &Checkpoint{
		Errors:           []ImportError{},
		CompletedBatches: []string{},
		StartedAt:        now,
		LastUpdatedAt:    now,
	}
}

// BatchID derives the identifier of a batch from its source-id range.
// The same rows always produce the same identifier, which is what makes
// batch replay detection deterministic.
func BatchID(minID, maxID int64) string {
	return fmt.Sprintf("%d-%d", minID, maxID)
}

// BatchDone reports whether a batch identifier was already committed.
func (c *Checkpoint) BatchDone(id string) bool {
	for _, b := range c.CompletedBatches {
		if b == id {
			return true
		}
	}
	return false
}

// CompleteBatch records a fully attempted batch: the identifier joins the
// completed set (at most once), the high-water mark advances, and the
// processed counter grows by the batch's successful rows.
func (c *Checkpoint) CompleteBatch(id string, maxID int64, processed int) {
	if !c.BatchDone(id) {
		c.CompletedBatches = append(c.CompletedBatches, id)
	}
	if maxID > c.LastProcessedID {
		c.LastProcessedID = maxID
	}
	c.TotalProcessed += processed
}

// RecordError appends to the error log and bumps the failure counter.
func (c *Checkpoint) RecordError(sourceID int64, reason string) {
	c.TotalFailed++
	c.Errors = append(c.Errors, ImportError{
		SourceID:  sourceID,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
}
