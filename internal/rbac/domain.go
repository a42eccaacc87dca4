package rbac

import (
	"context"
	"fmt"
	"strings"
)

// RoleAdmin is the only privileged role.
const RoleAdmin = "admin"

// Account is the slice of a user record the authorizer inspects.
type Account struct {
	ID    string
	Email string
	Role  string
}

// IsAdmin reports whether the account holds the privileged role.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Directory resolves accounts. Missing accounts are reported with an error
// matching httpx.ErrNotFound.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
}

// SelfServiceMode controls how self-service routes treat their path key.
type SelfServiceMode string

const (
	// SelfServiceOpen lets any authenticated caller name any record.
	SelfServiceOpen SelfServiceMode = "open"
	// SelfServiceOwner restricts the path key to the caller's own record; admins bypass.
	SelfServiceOwner SelfServiceMode = "owner"
)

// ParseSelfServiceMode validates a configured mode.
func ParseSelfServiceMode(raw string) (SelfServiceMode, error) {
	switch mode := SelfServiceMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "", SelfServiceOpen:
		return SelfServiceOpen, nil
	case SelfServiceOwner:
		return SelfServiceOwner, nil
	default:
		return "", fmt.Errorf("rbac: unknown self-service mode %q", raw)
	}
}
