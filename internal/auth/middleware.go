package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cpi-it-club/club-api/internal/platform/httpx"
	"github.com/cpi-it-club/club-api/internal/shared"
)

const (
	msgUnauthorized = "unauthorized access"
	msgForbidden    = "forbidden access"
)

// Middleware extracts and verifies the session credential.
type Middleware struct {
	Sessions *shared.SessionManager
	Logger   *slog.Logger
}

// Authenticate halts with 401 when no credential is presented and 403 when
// it fails verification; otherwise the identity is attached to the context.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := m.Sessions.TokenFromRequest(r)
		if !ok {
			httpx.RespondError(w, httpx.Unauthorized(msgUnauthorized))
			return
		}
		identity, err := m.Sessions.Verify(token)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("session rejected", slog.String("reason", rejectReason(err)), slog.String("path", r.URL.Path))
			}
			httpx.RespondError(w, httpx.Forbidden(msgForbidden))
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
	})
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, shared.ErrExpired):
		return "expired"
	case errors.Is(err, shared.ErrSignatureInvalid):
		return "signature"
	case errors.Is(err, shared.ErrMissingSecret):
		return "secret"
	default:
		return "malformed"
	}
}
