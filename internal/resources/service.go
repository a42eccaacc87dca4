package resources

import (
	"context"
	"errors"
	"maps"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cpi-it-club/club-api/internal/platform/db"
	"github.com/cpi-it-club/club-api/internal/platform/httpx"
)

// Service is the store adapter for one resource kind. Errors it returns are
// already classified for httpx.RespondError.
type Service struct {
	kind Kind
	coll db.Collection
}

// NewService binds kind to its collection in store.
func NewService(store db.Store, kind Kind) *Service {
	return &Service{kind: kind, coll: store.Collection(kind.Collection)}
}

// Kind returns the resource kind served.
func (s *Service) Kind() Kind {
	return s.kind
}

// List returns every document in store order; never nil.
func (s *Service) List(ctx context.Context) ([]bson.M, error) {
	return s.Find(ctx, bson.M{})
}

// Find returns every document matching filter; never nil.
func (s *Service) Find(ctx context.Context, filter bson.M) ([]bson.M, error) {
	docs, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []bson.M{}
	}
	return docs, nil
}

// Get returns the document with the given hex id.
func (s *Service) Get(ctx context.Context, id string) (bson.M, error) {
	filter, err := db.IDFilter(id)
	if err != nil {
		return nil, s.kind.invalidID(err)
	}
	return s.FindOne(ctx, filter)
}

// FindOne returns the single document matching filter or a NotFound error.
func (s *Service) FindOne(ctx context.Context, filter bson.M) (bson.M, error) {
	doc, err := s.coll.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, s.kind.notFound()
		}
		return nil, err
	}
	return doc, nil
}

// Insert appends doc with a store-assigned id. Any caller supplied _id is dropped.
func (s *Service) Insert(ctx context.Context, doc bson.M) (db.InsertResult, error) {
	if doc == nil {
		return db.InsertResult{}, httpx.BadRequest("Request body is required", nil)
	}
	doc = withoutID(doc)
	if s.kind.Validate != nil {
		if err := s.kind.Validate(doc); err != nil {
			return db.InsertResult{}, err
		}
	}
	return s.coll.InsertOne(ctx, doc)
}

// Update merge-patches the document with the given hex id.
func (s *Service) Update(ctx context.Context, id string, patch bson.M) (db.UpdateResult, error) {
	filter, err := db.IDFilter(id)
	if err != nil {
		return db.UpdateResult{}, s.kind.invalidID(err)
	}
	return s.UpdateWhere(ctx, filter, patch)
}

// UpdateWhere merge-patches the first document matching filter. A zero
// modified count with a match means the document already held these values.
func (s *Service) UpdateWhere(ctx context.Context, filter, patch bson.M) (db.UpdateResult, error) {
	patch = withoutID(patch)
	if len(patch) == 0 {
		return db.UpdateResult{}, httpx.BadRequest("No fields to update", nil)
	}
	if s.kind.ValidatePatch != nil {
		if err := s.kind.ValidatePatch(patch); err != nil {
			return db.UpdateResult{}, err
		}
	}
	res, err := s.coll.UpdateOne(ctx, filter, patch)
	if err != nil {
		return db.UpdateResult{}, err
	}
	if res.MatchedCount == 0 {
		return res, s.kind.notFound()
	}
	return res, nil
}

// Delete removes the document with the given hex id.
func (s *Service) Delete(ctx context.Context, id string) (db.DeleteResult, error) {
	filter, err := db.IDFilter(id)
	if err != nil {
		return db.DeleteResult{}, s.kind.invalidID(err)
	}
	return s.DeleteWhere(ctx, filter)
}

// DeleteWhere removes at most one document matching filter; nothing removed is NotFound.
func (s *Service) DeleteWhere(ctx context.Context, filter bson.M) (db.DeleteResult, error) {
	res, err := s.coll.DeleteOne(ctx, filter)
	if err != nil {
		return db.DeleteResult{}, err
	}
	if res.DeletedCount == 0 {
		return res, s.kind.notFound()
	}
	return res, nil
}

// Count returns the approximate number of documents.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.coll.EstimatedCount(ctx)
}

func withoutID(doc bson.M) bson.M {
	if _, ok := doc["_id"]; !ok {
		return doc
	}
	out := maps.Clone(doc)
	delete(out, "_id")
	return out
}
