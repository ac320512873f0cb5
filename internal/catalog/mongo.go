package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const propertiesCollection = "wordpress_properties"

// MongoStore is the MongoDB-backed ReviewStore used by the real pipeline.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore returns a store over the wordpress_properties collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(propertiesCollection)}
}

// Upsert writes the normalized fields keyed by wp_id. Identity, pending
// status and created_at only apply on first insert, so re-imports refresh
// payload and photos without disturbing review state.
func (s *MongoStore) Upsert(ctx context.Context, p *Property) error {
	now := time.Now().UTC()
	filter := bson.M{"wp_id": p.SourceID}
	update := bson.M{
		"$set": bson.M{
			"payload":       p.Payload,
			"photo_count":   p.PhotoCount,
			"photo_urls":    p.PhotoURLs,
			"thumbnail_url": p.ThumbnailURL,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"wp_id":      p.SourceID,
			"status":     StatusPending,
			"created_at": now,
		},
	}

	_, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert property %d: %w", p.SourceID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Property, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) GetBySourceID(ctx context.Context, sourceID int64) (*Property, error) {
	return s.findOne(ctx, bson.M{"wp_id": sourceID})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*Property, error) {
	var p Property
	err := s.coll.FindOne(ctx, filter).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find property: %w", err)
	}
	return &p, nil
}

func (s *MongoStore) List(ctx context.Context, f ListFilter) ([]*Property, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count properties: %w", err)
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 30
	}

	opts := options.Find().
		SetSort(bson.M{"wp_id": 1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list properties: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*Property
	for cursor.Next(ctx) {
		var p Property
		if err := cursor.Decode(&p); err != nil {
			return nil, 0, fmt.Errorf("decode property: %w", err)
		}
		out = append(out, &p)
	}
	return out, total, cursor.Err()
}

// ApplyStatus is a FindOneAndUpdate conditioned on the current status, so
// the update is atomic per property: it either fully lands or the record
// stays exactly as it was.
func (s *MongoStore) ApplyStatus(ctx context.Context, id string, change StatusChange) (*Property, error) {
	set := bson.M{
		"status":     change.To,
		"updated_at": time.Now().UTC(),
	}
	if change.ReviewedAt != nil {
		set["reviewed_by"] = change.ReviewedBy
		set["reviewed_at"] = change.ReviewedAt
		set["notes"] = change.Notes
	}
	if change.MigratedAt != nil {
		set["migrated_at"] = change.MigratedAt
		set["destination_id"] = change.DestinationID
	}

	var updated Property
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": change.From},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)

	if errors.Is(err, mongo.ErrNoDocuments) {
		// Distinguish a missing record from a lost race.
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update status of %s: %w", id, err)
	}
	return &updated, nil
}

func (s *MongoStore) Counts(ctx context.Context) (*Counts, error) {
	opts := options.Find().SetProjection(bson.M{"status": 1, "photo_count": 1})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("load status counts: %w", err)
	}
	defer cursor.Close(ctx)

	counts := &Counts{ByStatus: make(map[Status]int64)}
	for cursor.Next(ctx) {
		var row struct {
			Status     Status `bson:"status"`
			PhotoCount int    `bson:"photo_count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode status row: %w", err)
		}
		counts.Total++
		counts.ByStatus[row.Status]++
		if row.PhotoCount > 0 {
			counts.WithPhotos++
		} else {
			counts.WithoutPhotos++
		}
	}
	return counts, cursor.Err()
}
