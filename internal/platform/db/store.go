// Package db provides the document store used by every resource collection.
package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	// ErrNotFound is returned by FindOne when no document matches.
	ErrNotFound = errors.New("platform/db: document not found")
	// ErrDuplicateKey is returned when an insert violates a unique index.
	ErrDuplicateKey = errors.New("platform/db: duplicate key")
)

// InsertResult mirrors the store's insert acknowledgement.
type InsertResult struct {
	Acknowledged bool `json:"acknowledged"`
	InsertedID   any  `json:"insertedId"`
}

// UpdateResult mirrors the store's update acknowledgement.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedCount int64 `json:"upsertedCount"`
	UpsertedID    any   `json:"upsertedId"`
}

// DeleteResult mirrors the store's delete acknowledgement.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Collection is a single document collection. Filters are equality matches.
// Implementations must be safe for concurrent use.
type Collection interface {
	Find(ctx context.Context, filter bson.M) ([]bson.M, error)
	FindOne(ctx context.Context, filter bson.M) (bson.M, error)
	InsertOne(ctx context.Context, doc bson.M) (InsertResult, error)
	// UpdateOne applies fields as a merge-patch to the first matching document.
	UpdateOne(ctx context.Context, filter bson.M, fields bson.M) (UpdateResult, error)
	DeleteOne(ctx context.Context, filter bson.M) (DeleteResult, error)
	EstimatedCount(ctx context.Context) (int64, error)
	EnsureUniqueIndex(ctx context.Context, field string) error
}

// Store hands out collections and reports connectivity.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// IDFilter builds a filter matching the document with the given hex id.
func IDFilter(hex string) (bson.M, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": id}, nil
}
