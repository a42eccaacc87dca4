package rbac

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cpi-it-club/club-api/internal/platform/httpx"
	"github.com/cpi-it-club/club-api/internal/shared"
)

const (
	msgAdminsOnly   = "forbidden access: admins only"
	msgNotYourOwn   = "forbidden access: not your record"
	msgUnauthorized = "unauthorized access"
)

// KeyKind names what a self-service path parameter identifies.
type KeyKind int

const (
	// KeyEmail means the parameter is the owner's email.
	KeyEmail KeyKind = iota
	// KeyUserID means the parameter is the owner's user id.
	KeyUserID
)

// Middleware wires role checks for HTTP handlers. It must be composed after
// the session extractor and never re-parses the credential.
type Middleware struct {
	Directory   Directory
	Logger      *slog.Logger
	SelfService SelfServiceMode
}

// RequireAdmin resolves the caller's role on every request, so role changes
// apply without re-authentication.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := m.caller(w, r)
		if !ok {
			return
		}
		if !account.IsAdmin() {
			httpx.RespondError(w, httpx.Forbidden(msgAdminsOnly))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSelf guards a self-service route. In open mode it only relies on the
// preceding authentication; in owner mode the path parameter must identify
// the caller unless the caller is an admin.
func (m Middleware) RequireSelf(param string, kind KeyKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.SelfService != SelfServiceOwner {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := shared.IdentityFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.Unauthorized(msgUnauthorized))
				return
			}
			key, err := httpx.PathParam(r, param)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			if kind == KeyEmail && key == identity.Email {
				next.ServeHTTP(w, r)
				return
			}
			if kind == KeyUserID {
				owner, err := m.Directory.FindByID(r.Context(), key)
				switch {
				case err == nil && owner.Email == identity.Email:
					next.ServeHTTP(w, r)
					return
				case err != nil && !errors.Is(err, httpx.ErrNotFound):
					m.logError("rbac resolve owner", err)
					httpx.RespondError(w, err)
					return
				}
			}
			account, ok := m.caller(w, r)
			if !ok {
				return
			}
			if !account.IsAdmin() {
				httpx.RespondError(w, httpx.Forbidden(msgNotYourOwn))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// caller resolves the authenticated account, writing the failure response
// itself when it returns false.
func (m Middleware) caller(w http.ResponseWriter, r *http.Request) (Account, bool) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.Unauthorized(msgUnauthorized))
		return Account{}, false
	}
	account, err := m.Directory.FindByEmail(r.Context(), identity.Email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			httpx.RespondError(w, httpx.Forbidden(msgAdminsOnly))
			return Account{}, false
		}
		m.logError("rbac lookup role", err)
		httpx.Fail(w, http.StatusInternalServerError, "Failed to resolve role", err)
		return Account{}, false
	}
	return account, true
}

func (m Middleware) logError(msg string, err error) {
	if m.Logger != nil {
		m.Logger.Error(msg, slog.Any("error", err))
	}
}
