// Package assignments stores member assignment submissions and their grades.
package assignments

import (
	"context"
	"maps"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cpi-it-club/club-api/internal/platform/db"
	"github.com/cpi-it-club/club-api/internal/platform/httpx"
	"github.com/cpi-it-club/club-api/internal/resources"
)

// Service wraps the generic assignment collection with submission rules.
type Service struct {
	docs *resources.Service
}

// NewService builds Service instance.
func NewService(store db.Store) *Service {
	return &Service{docs: resources.NewService(store, resources.Assignments)}
}

// Submit stores a submission. The owner defaults to submitter and a mark
// can only be set by grading.
func (s *Service) Submit(ctx context.Context, submitter string, doc bson.M) (db.InsertResult, error) {
	record := maps.Clone(doc)
	if record == nil {
		record = bson.M{}
	}
	delete(record, "mark")
	if email, _ := record["email"].(string); email == "" {
		record["email"] = submitter
	}
	return s.docs.Insert(ctx, record)
}

// List returns every submission.
func (s *Service) List(ctx context.Context) ([]bson.M, error) {
	return s.docs.List(ctx)
}

// ByEmail returns the submissions owned by email.
func (s *Service) ByEmail(ctx context.Context, email string) ([]bson.M, error) {
	return s.docs.Find(ctx, bson.M{"email": email})
}

// Grade records mark on the submission with the given hex id.
func (s *Service) Grade(ctx context.Context, id string, mark any) (db.UpdateResult, error) {
	if mark == nil {
		return db.UpdateResult{}, httpx.BadRequest("Mark is required", nil)
	}
	return s.docs.Update(ctx, id, bson.M{"mark": mark})
}

// Delete removes the submission with the given hex id.
func (s *Service) Delete(ctx context.Context, id string) (db.DeleteResult, error) {
	return s.docs.Delete(ctx, id)
}
