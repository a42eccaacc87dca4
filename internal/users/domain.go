package users

import "github.com/cpi-it-club/club-api/internal/rbac"

// Roles a user record may hold.
const (
	RoleUser  = "user"
	RoleAdmin = rbac.RoleAdmin
)

// MsgAlreadyExists is returned instead of inserting a second record for an email.
const MsgAlreadyExists = "user already exists"

// NewUser is the validated part of a registration payload. Any other fields
// in the payload are stored as profile data.
type NewUser struct {
	Email string `validate:"required,email"`
	Role  string `validate:"omitempty,oneof=user admin"`
}

// RoleChange is the body of a role update.
type RoleChange struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// Existing reports a registration for an email that is already taken.
type Existing struct {
	Message    string `json:"message"`
	InsertedID any    `json:"insertedId"`
}

// RoleView is the role lookup response.
type RoleView struct {
	Role string `json:"role"`
}

// immutable lists fields a profile patch may not touch.
var immutable = []string{"_id", "email", "role"}
