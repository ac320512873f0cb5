package checkpoint

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const checkpointCollection = "wordpress_import_checkpoints"

// MongoStore keeps the checkpoint as a single document per import run.
// Commits compare-and-swap on the version counter, so a second writer
// fails with ErrStale instead of silently interleaving.
type MongoStore struct {
	coll  *mongo.Collection
	runID string
}

// NewMongoStore returns a Mongo-backed checkpoint store for the given
// import run identifier.
func NewMongoStore(db *mongo.Database, runID string) *MongoStore {
	if runID == "" {
		runID = "wpl-import"
	}
	return &MongoStore{coll: db.Collection(checkpointCollection), runID: runID}
}

type checkpointDoc struct {
	ID         string `bson:"_id"`
	Checkpoint `bson:",inline"`
}

func (s *MongoStore) Load(ctx context.Context) (*Checkpoint, error) {
	var doc checkpointDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": s.runID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint '%s': %w", s.runID, err)
	}
	cp := doc.Checkpoint
	return &cp, nil
}

func (s *MongoStore) CommitBatch(ctx context.Context, cp *Checkpoint) error {
	loaded := cp.Version
	cp.Version++
	cp.LastUpdatedAt = nowUTC()

	doc := checkpointDoc{ID: s.runID, Checkpoint: *cp}
	res, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": s.runID, "version": loaded},
		doc,
		options.Replace().SetUpsert(loaded == 0),
	)
	if mongo.IsDuplicateKeyError(err) {
		return ErrStale
	}
	if err != nil {
		return fmt.Errorf("commit checkpoint '%s': %w", s.runID, err)
	}
	if loaded > 0 && res.MatchedCount == 0 {
		return ErrStale
	}
	return nil
}

func (s *MongoStore) Reset(ctx context.Context) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.runID})
	if err != nil {
		return fmt.Errorf("reset checkpoint '%s': %w", s.runID, err)
	}
	return nil
}
