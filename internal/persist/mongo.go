package persist

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type snapshot struct {
	ID      string `bson:"_id"`
	Payload []byte `bson:"payload"`
}

// MongoStore keeps one document per key holding the JSON-encoded full set.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongo(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

func (s *MongoStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var doc snapshot
	if err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, false, nil
		}
		return nil, false, err
	}
	return doc.Payload, true, nil
}

func (s *MongoStore) Save(ctx context.Context, key string, payload []byte) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": key}, snapshot{ID: key, Payload: payload}, opts)
	return err
}
