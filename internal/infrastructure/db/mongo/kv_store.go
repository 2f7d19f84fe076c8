package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fincatec/domain-store/internal/core/ports"
)

var (
	_ ports.KVStore = (*KVStore)(nil)
	_ ports.Pinger  = (*KVStore)(nil)
)

// KVStore keeps one document per collection key in a single Mongo collection.
type KVStore struct {
	coll *mongo.Collection
}

// NewKVStore stores documents in db.<collection>.
func NewKVStore(db *mongo.Database, collection string) *KVStore {
	return &KVStore{coll: db.Collection(collection)}
}

type blobDocument struct {
	Key       string `bson:"_id"`
	Value     string `bson:"value"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (s *KVStore) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var doc blobDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find %s: %w", key, err)
	}
	return []byte(doc.Value), true, nil
}

// Write replaces the document for key, creating it if needed.
func (s *KVStore) Write(ctx context.Context, key string, value []byte) error {
	doc := newBlobDocument(key, value, time.Now())
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

func newBlobDocument(key string, value []byte, now time.Time) blobDocument {
	return blobDocument{Key: key, Value: string(value), UpdatedAt: now.Unix()}
}
