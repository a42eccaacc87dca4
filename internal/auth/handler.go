package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/cpi-it-club/club-api/internal/platform/httpx"
	"github.com/cpi-it-club/club-api/internal/shared"
)

// Handler wires HTTP endpoints for the login-intent and logout flows.
type Handler struct {
	logger    *slog.Logger
	sessions  *shared.SessionManager
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:    logger,
		sessions:  sessions,
		validator: validator.New(),
	}
}

type loginForm struct {
	Email string `json:"email" validate:"required,email"`
}

type ack struct {
	Success bool `json:"success"`
}

// Login issues a session credential for the supplied identity and stores it
// in the session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.RespondError(w, httpx.BadRequest("A valid email is required", err))
		return
	}
	token, err := h.sessions.Issue(form.Email)
	if err != nil {
		h.logger.Error("issue session", slog.Any("error", err))
		if errors.Is(err, shared.ErrMissingSecret) {
			httpx.Fail(w, http.StatusInternalServerError, "Session signing is not configured", nil)
			return
		}
		httpx.RespondError(w, err)
		return
	}
	h.sessions.SetCookie(w, token)
	httpx.JSON(w, http.StatusOK, ack{Success: true})
}

// Logout clears the client's copy of the credential.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	httpx.JSON(w, http.StatusOK, ack{Success: true})
}
