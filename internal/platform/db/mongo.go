package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore implements Store over a MongoDB database.
type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewMongo connects to MongoDB using the Stable API and pings the deployment.
func NewMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).SetStrict(true).SetDeprecationErrors(true)
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(serverAPI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("platform/db: connect: %w", err)
	}
	store := &MongoStore{client: client, database: client.Database(database)}
	if err := store.Ping(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	return store, nil
}

// Collection returns the named collection.
func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{coll: s.database.Collection(name)}
}

// Ping runs the ping command against the admin database.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return fmt.Errorf("platform/db: ping: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Find(ctx context.Context, filter bson.M) ([]bson.M, error) {
	cursor, err := c.coll.Find(ctx, nonNil(filter))
	if err != nil {
		return nil, fmt.Errorf("platform/db: find %s: %w", c.coll.Name(), err)
	}
	docs := make([]bson.M, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("platform/db: decode %s: %w", c.coll.Name(), err)
	}
	return docs, nil
}

func (c *mongoCollection) FindOne(ctx context.Context, filter bson.M) (bson.M, error) {
	var doc bson.M
	if err := c.coll.FindOne(ctx, nonNil(filter)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("platform/db: find one %s: %w", c.coll.Name(), err)
	}
	return doc, nil
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc bson.M) (InsertResult, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return InsertResult{}, ErrDuplicateKey
		}
		return InsertResult{}, fmt.Errorf("platform/db: insert %s: %w", c.coll.Name(), err)
	}
	return InsertResult{Acknowledged: res.Acknowledged, InsertedID: res.InsertedID}, nil
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter bson.M, fields bson.M) (UpdateResult, error) {
	res, err := c.coll.UpdateOne(ctx, nonNil(filter), bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return UpdateResult{}, ErrDuplicateKey
		}
		return UpdateResult{}, fmt.Errorf("platform/db: update %s: %w", c.coll.Name(), err)
	}
	return UpdateResult{
		Acknowledged:  res.Acknowledged,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}, nil
}

func (c *mongoCollection) DeleteOne(ctx context.Context, filter bson.M) (DeleteResult, error) {
	res, err := c.coll.DeleteOne(ctx, nonNil(filter))
	if err != nil {
		return DeleteResult{}, fmt.Errorf("platform/db: delete %s: %w", c.coll.Name(), err)
	}
	return DeleteResult{Acknowledged: res.Acknowledged, DeletedCount: res.DeletedCount}, nil
}

func (c *mongoCollection) EstimatedCount(ctx context.Context) (int64, error) {
	n, err := c.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("platform/db: count %s: %w", c.coll.Name(), err)
	}
	return n, nil
}

func (c *mongoCollection) EnsureUniqueIndex(ctx context.Context, field string) error {
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("platform/db: unique index %s.%s: %w", c.coll.Name(), field, err)
	}
	return nil
}

func nonNil(filter bson.M) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return filter
}

var _ Store = (*MongoStore)(nil)
