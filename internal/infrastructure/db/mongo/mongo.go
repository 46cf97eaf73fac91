package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

const (
	collectionPatients = "patients"
	collectionStaff    = "staff"
	collectionMeetings = "meetings"
	collectionCounters = "counters"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the unique slot index and the lookup indexes used by
// cascading deletes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "doctor_id", Value: 1}, {Key: "appointment_at", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("doctor_slot_unique"),
		},
		{Keys: bson.D{{Key: "patient_id", Value: 1}}},
	}

	if _, err := db.Collection(collectionMeetings).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create meeting indexes: %w", err)
	}
	return nil
}

// sequence hands out monotonically increasing int64 ids per collection, so
// documents keep the numeric identifiers exposed by the API.
type sequence struct {
	counters *mongo.Collection
	name     string
}

func newSequence(db *mongo.Database, name string) sequence {
	return sequence{counters: db.Collection(collectionCounters), name: name}
}

func (s sequence) next(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": s.name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", s.name, err)
	}
	return doc.Seq, nil
}

type deleter interface {
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// deleteWithMeetings removes the meetings referencing id through ref before
// the owner document, so a failed sweep leaves the owner in place and the
// delete can be retried without stranding meetings.
func deleteWithMeetings(ctx context.Context, owners, meetings deleter, id int64, ref string, notFound error) error {
	if _, err := meetings.DeleteMany(ctx, bson.M{ref: id}); err != nil {
		return fmt.Errorf("delete meetings by %s %d: %w", ref, id, err)
	}
	res, err := owners.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return notFound
	}
	return nil
}
