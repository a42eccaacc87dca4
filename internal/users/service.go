package users

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cpi-it-club/club-api/internal/platform/db"
	"github.com/cpi-it-club/club-api/internal/platform/httpx"
	"github.com/cpi-it-club/club-api/internal/rbac"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context) ([]bson.M, error)
	ByEmail(ctx context.Context, email string) (bson.M, error)
	ByID(ctx context.Context, id string) (bson.M, error)
	Insert(ctx context.Context, doc bson.M) (db.InsertResult, error)
	UpdateByEmail(ctx context.Context, email string, patch bson.M) (db.UpdateResult, error)
	Update(ctx context.Context, id string, patch bson.M) (db.UpdateResult, error)
	Delete(ctx context.Context, id string) (db.DeleteResult, error)
}

// Service handles user business logic. It also serves as the role
// directory consulted by the authorizer.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

var _ rbac.Directory = (*Service)(nil)

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Create registers a user unless the email is already known. The second
// return value is non-nil when a record already existed.
func (s *Service) Create(ctx context.Context, doc bson.M) (db.InsertResult, *Existing, error) {
	input := NewUser{Email: stringField(doc, "email"), Role: stringField(doc, "role")}
	if raw, ok := doc["role"]; ok && raw != nil {
		if _, isString := raw.(string); !isString {
			return db.InsertResult{}, nil, httpx.BadRequest("Role must be user or admin", nil)
		}
	}
	if err := s.validate.Struct(input); err != nil {
		return db.InsertResult{}, nil, httpx.BadRequest(createMessage(err), err)
	}

	if _, err := s.repo.ByEmail(ctx, input.Email); err == nil {
		return db.InsertResult{}, existing(), nil
	} else if !errors.Is(err, httpx.ErrNotFound) {
		return db.InsertResult{}, nil, err
	}

	record := maps.Clone(doc)
	record["email"] = input.Email
	record["role"] = RoleUser
	if input.Role != "" {
		record["role"] = input.Role
	}
	res, err := s.repo.Insert(ctx, record)
	if errors.Is(err, db.ErrDuplicateKey) {
		return db.InsertResult{}, existing(), nil
	}
	if err != nil {
		return db.InsertResult{}, nil, err
	}
	return res, nil, nil
}

// List returns every user.
func (s *Service) List(ctx context.Context) ([]bson.M, error) {
	return s.repo.List(ctx)
}

// Get returns the user with the given email.
func (s *Service) Get(ctx context.Context, email string) (bson.M, error) {
	return s.repo.ByEmail(ctx, email)
}

// Role returns the stored role for email.
func (s *Service) Role(ctx context.Context, email string) (RoleView, error) {
	doc, err := s.repo.ByEmail(ctx, email)
	if err != nil {
		return RoleView{}, err
	}
	return RoleView{Role: stringField(doc, "role")}, nil
}

// UpdateRole sets the role of the user with the given email.
func (s *Service) UpdateRole(ctx context.Context, email string, change RoleChange) (db.UpdateResult, error) {
	if err := s.validate.Struct(change); err != nil {
		return db.UpdateResult{}, httpx.BadRequest("Role must be user or admin", err)
	}
	return s.repo.UpdateByEmail(ctx, email, bson.M{"role": change.Role})
}

// UpdateProfile merge-patches profile fields. Identity and role fields are
// ignored; a patch consisting only of them is rejected.
func (s *Service) UpdateProfile(ctx context.Context, id string, patch bson.M) (db.UpdateResult, error) {
	clean := maps.Clone(patch)
	for _, field := range immutable {
		delete(clean, field)
	}
	return s.repo.Update(ctx, id, clean)
}

// Delete removes the user with the given hex id.
func (s *Service) Delete(ctx context.Context, id string) (db.DeleteResult, error) {
	return s.repo.Delete(ctx, id)
}

// FindByEmail implements rbac.Directory.
func (s *Service) FindByEmail(ctx context.Context, email string) (rbac.Account, error) {
	doc, err := s.repo.ByEmail(ctx, email)
	if err != nil {
		return rbac.Account{}, err
	}
	return account(doc), nil
}

// FindByID implements rbac.Directory. A malformed id resolves to no account.
func (s *Service) FindByID(ctx context.Context, id string) (rbac.Account, error) {
	doc, err := s.repo.ByID(ctx, id)
	if errors.Is(err, httpx.ErrBadRequest) {
		return rbac.Account{}, httpx.NotFound("User not found")
	}
	if err != nil {
		return rbac.Account{}, err
	}
	return account(doc), nil
}

func account(doc bson.M) rbac.Account {
	acc := rbac.Account{Email: stringField(doc, "email"), Role: stringField(doc, "role")}
	switch id := doc["_id"].(type) {
	case bson.ObjectID:
		acc.ID = id.Hex()
	case string:
		acc.ID = id
	case nil:
	default:
		acc.ID = fmt.Sprint(id)
	}
	return acc
}

func existing() *Existing {
	return &Existing{Message: MsgAlreadyExists}
}

func stringField(doc bson.M, field string) string {
	s, _ := doc[field].(string)
	return strings.TrimSpace(s)
}

func createMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Role" {
		return "Role must be user or admin"
	}
	return "A valid email is required"
}
