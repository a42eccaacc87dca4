package resources

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cpi-it-club/club-api/internal/platform/db"
	"github.com/cpi-it-club/club-api/internal/platform/httpx"
)

// MsgNoChanges reports an update that matched but changed nothing.
const MsgNoChanges = "No changes made"

// UpdateResponse echoes the store outcome, with a message when nothing changed.
type UpdateResponse struct {
	Message string `json:"message,omitempty"`
	db.UpdateResult
}

// NewUpdateResponse wraps res, flagging no-op updates.
func NewUpdateResponse(res db.UpdateResult) UpdateResponse {
	out := UpdateResponse{UpdateResult: res}
	if res.ModifiedCount == 0 {
		out.Message = MsgNoChanges
	}
	return out
}

// Handler exposes the generic CRUD contract for one resource kind over HTTP.
// Routes take the document id from the "id" path parameter.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Kind returns the resource kind served.
func (h *Handler) Kind() Kind {
	return h.service.Kind()
}

// List writes every document.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
}

// Get writes one document.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// Create inserts the request body as a new document.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var doc bson.M
	if err := httpx.DecodeJSON(r, &doc); err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.Insert(r.Context(), doc)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// Update merge-patches the document with the request body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var patch bson.M
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewUpdateResponse(res))
}

// Delete removes the document.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	Fail(h.logger, w, r, h.service.Kind().Name, err)
}

// Fail logs server-side failures and writes the classified response.
func Fail(logger *slog.Logger, w http.ResponseWriter, r *http.Request, resource string, err error) {
	if httpx.StatusOf(err) >= http.StatusInternalServerError && logger != nil {
		logger.Error("resource request failed",
			slog.String("resource", resource),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
