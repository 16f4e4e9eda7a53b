package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
)

const notificationCollection = "vehicle_change_notifications"

type notificationDocument struct {
	entity.VehicleChangeNotification `bson:",inline"`
	InsertedAt                       time.Time `bson:"insertedAt"`
}

// MongoNotificationRepository implements NotificationRepository with consumer offsets
type MongoNotificationRepository struct {
	notifications *mongo.Collection
	offsets       *mongo.Collection
	counters      *mongoCounters
	now           func() time.Time
}

// NewMongoNotificationRepository creates a new notification repository
func NewMongoNotificationRepository(ctx context.Context, db *mongo.Database) repository.NotificationRepository {
	notifications := db.Collection(notificationCollection)
	notifications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.M{"seq": 1},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.M{"driverId": 1},
		},
	})

	return &MongoNotificationRepository{
		notifications: notifications,
		offsets:       db.Collection("consumer_offsets"),
		counters:      newMongoCounters(db),
		now:           time.Now,
	}
}

// Save assigns the next sequence number and stores the notification
func (r *MongoNotificationRepository) Save(ctx context.Context, n *entity.VehicleChangeNotification) error {
	seq, err := r.counters.next(ctx, notificationCollection)
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}
	n.Seq = seq
	_, err = r.notifications.InsertOne(ctx, notificationDocument{
		VehicleChangeNotification: *n,
		InsertedAt:                r.now(),
	})
	return err
}

// ListAfter returns the notifications following seq, oldest first.
// It stops short of a sequence number that may still be in flight.
func (r *MongoNotificationRepository) ListAfter(ctx context.Context, seq int64, limit int) ([]*entity.VehicleChangeNotification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.notifications.Find(ctx, bson.M{"seq": bson.M{"$gt": seq}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []notificationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	stamps := make([]seqStamp, len(docs))
	for i, doc := range docs {
		stamps[i] = seqStamp{seq: doc.Seq, insertedAt: doc.InsertedAt}
	}
	docs = docs[:readableRun(seq, stamps, r.now(), seqGrace)]

	out := make([]*entity.VehicleChangeNotification, 0, len(docs))
	for i := range docs {
		n := docs[i].VehicleChangeNotification
		out = append(out, &n)
	}
	return out, nil
}

// GetOffset returns the last sequence number acknowledged by consumer
func (r *MongoNotificationRepository) GetOffset(ctx context.Context, consumer string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.offsets.FindOne(ctx, bson.M{"_id": consumer}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

// CommitOffset moves the consumer offset forward; it never goes back
func (r *MongoNotificationRepository) CommitOffset(ctx context.Context, consumer string, seq int64) error {
	_, err := r.offsets.UpdateOne(
		ctx,
		bson.M{"_id": consumer},
		bson.M{"$max": bson.M{"seq": seq}},
		options.Update().SetUpsert(true),
	)
	return err
}
