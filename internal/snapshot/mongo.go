package snapshot

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSaver implements Saver against a Mongo collection, upserting on the
// document id. Caller is responsible for creating the collection (and client)
// and passing it in.
type MongoSaver struct {
	col *mongo.Collection
}

func NewMongoSaver(col *mongo.Collection) *MongoSaver {
	return &MongoSaver{col: col}
}

func (m *MongoSaver) Save(ctx context.Context, s *Snapshot) error {
	filter := bson.M{"_id": s.ID}
	opts := options.Update().SetUpsert(true)
	if _, err := m.col.UpdateOne(ctx, filter, bson.M{"$set": s}, opts); err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.ID, err)
	}
	return nil
}

// Load returns nil when no snapshot exists for id.
func (m *MongoSaver) Load(ctx context.Context, id string) (*Snapshot, error) {
	var s Snapshot
	if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (m *MongoSaver) LoadAll(ctx context.Context) ([]*Snapshot, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*Snapshot
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
