// Package mongo stores collection blobs as documents of one Mongo collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultDatabase   = "fincatec"
	defaultCollection = "kv_store"
	appName           = "fincatec"
)

// ErrMissingURI is returned by Open when no connection string is configured.
var ErrMissingURI = errors.New("mongo: uri is required")

// Config selects the server, database and collection that hold the blobs.
type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Database == "" {
		c.Database = defaultDatabase
	}
	if c.Collection == "" {
		c.Collection = defaultCollection
	}
	return c
}

// Open connects to Mongo, pings the primary and returns a KVStore on
// cfg.Database.cfg.Collection. The client is disconnected when the ping fails.
func Open(ctx context.Context, cfg Config) (*KVStore, error) {
	if cfg.URI == "" {
		return nil, ErrMissingURI
	}
	cfg = cfg.withDefaults()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI).SetAppName(appName))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return NewKVStore(client.Database(cfg.Database), cfg.Collection), nil
}

// Close disconnects the client behind s.
func (s *KVStore) Close(ctx context.Context) error {
	return s.coll.Database().Client().Disconnect(ctx)
}
