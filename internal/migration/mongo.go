package migration

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

const tasksCollection = "wordpress_migration_tasks"

// MongoQueue is the MongoDB-backed task queue. Claims go through
// FindOneAndUpdate so each queued task is handed to exactly one worker.
type MongoQueue struct {
	coll *mongo.Collection
}

// NewMongoQueue returns a queue over the wordpress_migration_tasks
// collection.
func NewMongoQueue(db *mongo.Database) *MongoQueue {
	return &MongoQueue{coll: db.Collection(tasksCollection)}
}

// EnsureIndexes creates the partial unique index that enforces the
// one-non-terminal-task-per-property invariant at the storage layer.
func (q *MongoQueue) EnsureIndexes(ctx context.Context) error {
	_, err := q.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "property_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"status": bson.M{"$in": bson.A{TaskQueued, TaskProcessing}},
			}),
	})
	if err != nil {
		return fmt.Errorf("create task index: %w", err)
	}
	return nil
}

func (q *MongoQueue) Enqueue(ctx context.Context, propertyID string) (bool, error) {
	count, err := q.coll.CountDocuments(ctx, bson.M{
		"property_id": propertyID,
		"status":      bson.M{"$in": bson.A{TaskQueued, TaskProcessing}},
	})
	if err != nil {
		return false, fmt.Errorf("check in-flight tasks for %s: %w", propertyID, err)
	}
	if count > 0 {
		return false, nil
	}

	task := Task{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		Status:     TaskQueued,
		CreatedAt:  time.Now().UTC(),
	}
	_, err = q.coll.InsertOne(ctx, task)
	if mongo.IsDuplicateKeyError(err) {
		// Lost an enqueue race; the other task covers this property.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("enqueue task for %s: %w", propertyID, err)
	}
	return true, nil
}

func (q *MongoQueue) Claim(ctx context.Context) (*Task, error) {
	now := time.Now().UTC()
	var task Task
	err := q.coll.FindOneAndUpdate(ctx,
		bson.M{"status": TaskQueued},
		bson.M{"$set": bson.M{"status": TaskProcessing, "started_at": now}},
		options.FindOneAndUpdate().
			SetSort(bson.M{"created_at": 1}).
			SetReturnDocument(options.After),
	).Decode(&task)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim task: %w", err)
	}
	return &task, nil
}

func (q *MongoQueue) SetProgress(ctx context.Context, taskID string, progress int) error {
	res, err := q.coll.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{"$set": bson.M{"progress": progress}},
	)
	if err != nil {
		return fmt.Errorf("set task progress: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (q *MongoQueue) Complete(ctx context.Context, taskID string) error {
	return q.finish(ctx, taskID, TaskCompleted, "", 100)
}

func (q *MongoQueue) Fail(ctx context.Context, taskID, message string) error {
	return q.finish(ctx, taskID, TaskFailed, message, -1)
}

func (q *MongoQueue) finish(ctx context.Context, taskID string, status TaskStatus, message string, progress int) error {
	set := bson.M{
		"status":       status,
		"completed_at": time.Now().UTC(),
	}
	if message != "" {
		set["error_message"] = message
	}
	if progress >= 0 {
		set["progress"] = progress
	}

	res, err := q.coll.UpdateOne(ctx, bson.M{"_id": taskID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("finish task %s: %w", taskID, err)
	}
	if res.MatchedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (q *MongoQueue) Get(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	err := q.coll.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task %s: %w", taskID, err)
	}
	return &task, nil
}

func (q *MongoQueue) List(ctx context.Context, status TaskStatus) ([]*Task, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := q.coll.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*Task
	for cursor.Next(ctx) {
		var t Task
		if err := cursor.Decode(&t); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		out = append(out, &t)
	}
	return out, cursor.Err()
}

// Requeue creates a fresh queued task for the property of a failed task.
// The failed task itself is never mutated.
func (q *MongoQueue) Requeue(ctx context.Context, taskID string) (*Task, error) {
	old, err := q.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if old.Status != TaskFailed {
		return nil, ErrNotFailed
	}

	created, err := q.Enqueue(ctx, old.PropertyID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrTaskActive
	}

	var task Task
	err = q.coll.FindOne(ctx,
		bson.M{"property_id": old.PropertyID, "status": TaskQueued},
	).Decode(&task)
	if err != nil {
		return nil, fmt.Errorf("load requeued task: %w", err)
	}
	return &task, nil
}
