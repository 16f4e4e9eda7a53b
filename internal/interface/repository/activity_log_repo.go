package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
	"txapp-service/pkg/logger"
)

const activityCollection = "activity_log"

// activityDocument stores the event as JSON since decimal amounts have no bson codec
type activityDocument struct {
	EventID    string    `bson:"eventId"`
	Seq        int64     `bson:"seq"`
	Type       string    `bson:"type"`
	Entity     string    `bson:"entity"`
	ShiftID    uint      `bson:"shiftId"`
	Payload    string    `bson:"payload"`
	OccurredAt time.Time `bson:"occurredAt"`
	InsertedAt time.Time `bson:"insertedAt"`
}

// MongoActivityLogRepository implements ActivityLogRepository on a capped collection
type MongoActivityLogRepository struct {
	collection *mongo.Collection
	counters   *mongoCounters
	now        func() time.Time
}

// NewMongoActivityLogRepository creates the capped activity collection when missing
func NewMongoActivityLogRepository(ctx context.Context, db *mongo.Database, maxDocuments int64, log logger.Logger) repository.ActivityLogRepository {
	if maxDocuments <= 0 {
		maxDocuments = 10000
	}
	opts := options.CreateCollection().
		SetCapped(true).
		SetSizeInBytes(maxDocuments * 4096).
		SetMaxDocuments(maxDocuments)
	if err := db.CreateCollection(ctx, activityCollection, opts); err != nil {
		var cmdErr mongo.CommandError
		// NamespaceExists
		if !(errors.As(err, &cmdErr) && cmdErr.Code == 48) {
			log.Warn("Failed to create activity collection", "error", err)
		}
	}

	collection := db.Collection(activityCollection)
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"seq": 1},
		Options: options.Index().SetUnique(true),
	})

	return &MongoActivityLogRepository{
		collection: collection,
		counters:   newMongoCounters(db),
		now:        time.Now,
	}
}

// Append assigns the next sequence number and stores the event
func (r *MongoActivityLogRepository) Append(ctx context.Context, event *entity.ChangeEvent) error {
	seq, err := r.counters.next(ctx, activityCollection)
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}
	event.Seq = seq

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	_, err = r.collection.InsertOne(ctx, activityDocument{
		EventID:    event.ID,
		Seq:        seq,
		Type:       string(event.Type),
		Entity:     string(event.Entity),
		ShiftID:    event.ShiftID,
		Payload:    string(payload),
		OccurredAt: event.OccurredAt,
		InsertedAt: r.now(),
	})
	return err
}

// Recent returns the latest events, newest first
func (r *MongoActivityLogRepository) Recent(ctx context.Context, limit int) ([]*entity.ChangeEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

// After returns the events following seq, oldest first, without stepping
// over a sequence number that may still be in flight
func (r *MongoActivityLogRepository) After(ctx context.Context, seq int64, limit int) ([]*entity.ChangeEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: 1}}).
		SetLimit(int64(limit))
	docs, err := r.load(ctx, bson.M{"seq": bson.M{"$gt": seq}}, opts)
	if err != nil {
		return nil, err
	}

	stamps := make([]seqStamp, len(docs))
	for i, doc := range docs {
		stamps[i] = seqStamp{seq: doc.Seq, insertedAt: doc.InsertedAt}
	}
	return decodeActivity(docs[:readableRun(seq, stamps, r.now(), seqGrace)])
}

func (r *MongoActivityLogRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*entity.ChangeEvent, error) {
	docs, err := r.load(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeActivity(docs)
}

func (r *MongoActivityLogRepository) load(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]activityDocument, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []activityDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func decodeActivity(docs []activityDocument) ([]*entity.ChangeEvent, error) {
	events := make([]*entity.ChangeEvent, 0, len(docs))
	for _, doc := range docs {
		var event entity.ChangeEvent
		if err := json.Unmarshal([]byte(doc.Payload), &event); err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", doc.Seq, err)
		}
		event.Seq = doc.Seq
		events = append(events, &event)
	}
	return events, nil
}
