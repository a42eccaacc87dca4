package contact

import (
	"net/http"

	"github.com/cpi-it-club/club-api/internal/platform/httpx"
)

// Handler serves the public contact endpoint.
type Handler struct {
	notifier *Notifier
}

// NewHandler builds Handler instance.
func NewHandler(notifier *Notifier) *Handler {
	return &Handler{notifier: notifier}
}

type receipt struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Submit acknowledges the message before delivery is attempted.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := httpx.DecodeJSON(r, &msg); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.notifier.Notify(r.Context(), msg)
	httpx.JSON(w, http.StatusOK, receipt{Success: true, Message: "Message received"})
}
