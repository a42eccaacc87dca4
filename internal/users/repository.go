package users

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cpi-it-club/club-api/internal/platform/db"
	"github.com/cpi-it-club/club-api/internal/resources"
)

// Repository provides document store backed persistence.
type Repository struct {
	docs *resources.Service
	coll db.Collection
}

// NewRepository constructs a repository.
func NewRepository(store db.Store) *Repository {
	return &Repository{
		docs: resources.NewService(store, resources.Users),
		coll: store.Collection(resources.Users.Collection),
	}
}

// EnsureIndexes creates the unique email index.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	return r.coll.EnsureUniqueIndex(ctx, "email")
}

// List returns every user.
func (r *Repository) List(ctx context.Context) ([]bson.M, error) {
	return r.docs.List(ctx)
}

// ByEmail returns the user with the given email.
func (r *Repository) ByEmail(ctx context.Context, email string) (bson.M, error) {
	return r.docs.FindOne(ctx, bson.M{"email": email})
}

// ByID returns the user with the given hex id.
func (r *Repository) ByID(ctx context.Context, id string) (bson.M, error) {
	return r.docs.Get(ctx, id)
}

// Insert stores a new user.
func (r *Repository) Insert(ctx context.Context, doc bson.M) (db.InsertResult, error) {
	return r.docs.Insert(ctx, doc)
}

// UpdateByEmail merge-patches the user with the given email.
func (r *Repository) UpdateByEmail(ctx context.Context, email string, patch bson.M) (db.UpdateResult, error) {
	return r.docs.UpdateWhere(ctx, bson.M{"email": email}, patch)
}

// Update merge-patches the user with the given hex id.
func (r *Repository) Update(ctx context.Context, id string, patch bson.M) (db.UpdateResult, error) {
	return r.docs.Update(ctx, id, patch)
}

// Delete removes the user with the given hex id.
func (r *Repository) Delete(ctx context.Context, id string) (db.DeleteResult, error) {
	return r.docs.Delete(ctx, id)
}
