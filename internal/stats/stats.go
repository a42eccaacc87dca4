// Package stats reports collection sizes for the admin dashboard.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/cpi-it-club/club-api/internal/platform/db"
	"github.com/cpi-it-club/club-api/internal/platform/httpx"
	"github.com/cpi-it-club/club-api/internal/resources"
)

// Counts holds the estimated size of every club collection.
type Counts struct {
	Users       int64 `json:"users"`
	Members     int64 `json:"members"`
	Courses     int64 `json:"courses"`
	Classes     int64 `json:"classes"`
	Events      int64 `json:"events"`
	Notices     int64 `json:"notices"`
	Gallery     int64 `json:"gallery"`
	Assignments int64 `json:"assignments"`
}

// Service counts documents across collections.
type Service struct {
	store db.Store
}

// NewService builds Service instance.
func NewService(store db.Store) *Service {
	return &Service{store: store}
}

// Collect queries every collection concurrently. The first failure cancels
// the remaining queries.
func (s *Service) Collect(ctx context.Context) (Counts, error) {
	var out Counts
	targets := map[string]*int64{
		resources.Users.Collection:       &out.Users,
		resources.Members.Collection:     &out.Members,
		resources.Courses.Collection:     &out.Courses,
		resources.Classes.Collection:     &out.Classes,
		resources.Events.Collection:      &out.Events,
		resources.Notices.Collection:     &out.Notices,
		resources.Gallery.Collection:     &out.Gallery,
		resources.Assignments.Collection: &out.Assignments,
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, kind := range resources.All() {
		dst := targets[kind.Collection]
		coll := s.store.Collection(kind.Collection)
		g.Go(func() error {
			n, err := coll.EstimatedCount(ctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Counts{}, err
	}
	return out, nil
}

// Handler serves the admin statistics endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Get writes the current counts.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Collect(r.Context())
	if err != nil {
		if h.logger != nil {
			h.logger.Error("collect admin stats", slog.Any("error", err))
		}
		httpx.Fail(w, http.StatusInternalServerError, "Failed to load statistics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, counts)
}
