package shared

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of a session credential.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies stateless session credentials and
// moves them in and out of the session cookie. It holds no per-session state.
type SessionManager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

// NewSessionManager constructs a SessionManager. secure switches the cookie
// to Secure + SameSite=None for cross-site production deployments.
func NewSessionManager(cookieName, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		secret:     []byte(secret),
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		now:        time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (sm *SessionManager) WithClock(now func() time.Time) *SessionManager {
	clone := *sm
	clone.now = now
	return &clone
}

// Issue signs a credential for email valid for the configured TTL.
func (sm *SessionManager) Issue(email string) (string, error) {
	if len(sm.secret) == 0 {
		return "", ErrMissingSecret
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: empty identity", ErrMalformed)
	}
	now := sm.now().UTC()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sm.ttl)),
			ID:        uuid.NewString(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sm.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign: %w", err)
	}
	return token, nil
}

// Verify checks the signature and expiry of token and returns the identity.
func (sm *SessionManager) Verify(token string) (Identity, error) {
	if len(sm.secret) == 0 {
		return Identity{}, ErrMissingSecret
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return sm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(sm.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Identity{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return Identity{}, ErrSignatureInvalid
	default:
		return Identity{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if claims.Email == "" {
		return Identity{}, fmt.Errorf("%w: missing email claim", ErrMalformed)
	}
	return Identity{Email: claims.Email}, nil
}

// TokenFromRequest returns the raw credential from the session cookie.
func (sm *SessionManager) TokenFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// SetCookie persists token client-side.
func (sm *SessionManager) SetCookie(w http.ResponseWriter, token string) {
	cookie := sm.cookie(token)
	cookie.Expires = sm.now().Add(sm.ttl)
	http.SetCookie(w, cookie)
}

// ClearCookie expires the session cookie. The credential itself stays valid
// until its own expiry.
func (sm *SessionManager) ClearCookie(w http.ResponseWriter) {
	cookie := sm.cookie("")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

func (sm *SessionManager) cookie(value string) *http.Cookie {
	sameSite := http.SameSiteStrictMode
	if sm.secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: sameSite,
	}
}
