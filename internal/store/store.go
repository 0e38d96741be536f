package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// Store wraps the MongoDB collections backing the storefront. There are no
// multi-document transactions here; every operation is a single-document
// round trip and cross-document consistency is handled by the service layer.
type Store struct {
	client   *mongo.Client
	products *mongo.Collection
	archived *mongo.Collection
	users    *mongo.Collection
}

// NewStore connects to MongoDB and binds the storefront collections
func NewStore(uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)

	return &Store{
		client:   client,
		products: db.Collection("products"),
		archived: db.Collection("archived_products"),
		users:    db.Collection("users"),
	}, nil
}

// Close disconnects from MongoDB
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
