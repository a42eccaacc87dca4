package users

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cpi-it-club/club-api/internal/platform/db"
	"github.com/cpi-it-club/club-api/internal/platform/httpx"
	"github.com/cpi-it-club/club-api/internal/resources"
)

// Handler manages user endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// RoleUpdated is the role update response.
type RoleUpdated struct {
	Message string `json:"message"`
	db.UpdateResult
}

// Create registers a user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var doc bson.M
	if err := httpx.DecodeJSON(r, &doc); err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, dup, err := h.service.Create(r.Context(), doc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if dup != nil {
		httpx.JSON(w, http.StatusOK, dup)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// List writes every user.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
}

// Get writes the user named by the email path parameter.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	email, err := httpx.PathParam(r, "email")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	doc, err := h.service.Get(r.Context(), email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// Role writes the role of the user named by the email path parameter.
func (h *Handler) Role(w http.ResponseWriter, r *http.Request) {
	email, err := httpx.PathParam(r, "email")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.Role(r.Context(), email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// UpdateRole changes the role of the user named by the email path parameter.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var change RoleChange
	if err := httpx.DecodeJSON(r, &change); err != nil {
		httpx.RespondError(w, err)
		return
	}
	email, err := httpx.PathParam(r, "email")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.UpdateRole(r.Context(), email, change)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("user role updated", slog.String("email", email), slog.String("role", change.Role))
	httpx.JSON(w, http.StatusOK, RoleUpdated{
		Message:      fmt.Sprintf("User role updated to %s", change.Role),
		UpdateResult: res,
	})
}

// UpdateProfile merge-patches the profile of the user with the id path parameter.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch bson.M
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.UpdateProfile(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resources.NewUpdateResponse(res))
}

// Delete removes the user with the id path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	resources.Fail(h.logger, w, r, resources.Users.Name, err)
}
