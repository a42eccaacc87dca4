package assignments

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cpi-it-club/club-api/internal/platform/httpx"
	"github.com/cpi-it-club/club-api/internal/resources"
	"github.com/cpi-it-club/club-api/internal/shared"
)

// Handler exposes assignment endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type gradeRequest struct {
	Mark any `json:"mark"`
}

// Create stores a submission for the authenticated caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.Unauthorized("unauthorized access"))
		return
	}
	var doc bson.M
	if err := httpx.DecodeJSON(r, &doc); err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.Submit(r.Context(), identity.Email, doc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// List writes every submission.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
}

// ByEmail writes the submissions of the email path parameter.
func (h *Handler) ByEmail(w http.ResponseWriter, r *http.Request) {
	email, err := httpx.PathParam(r, "email")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	docs, err := h.service.ByEmail(r.Context(), email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
}

// Grade sets the mark of the submission with the id path parameter.
func (h *Handler) Grade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.Grade(r.Context(), chi.URLParam(r, "id"), req.Mark)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resources.NewUpdateResponse(res))
}

// Delete removes the submission with the id path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	resources.Fail(h.logger, w, r, resources.Assignments.Name, err)
}
