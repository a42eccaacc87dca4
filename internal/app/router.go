package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/cpi-it-club/club-api/internal/assignments"
	"github.com/cpi-it-club/club-api/internal/auth"
	"github.com/cpi-it-club/club-api/internal/contact"
	"github.com/cpi-it-club/club-api/internal/observability"
	"github.com/cpi-it-club/club-api/internal/platform/cache"
	"github.com/cpi-it-club/club-api/internal/platform/db"
	"github.com/cpi-it-club/club-api/internal/platform/httpx"
	"github.com/cpi-it-club/club-api/internal/rbac"
	"github.com/cpi-it-club/club-api/internal/resources"
	"github.com/cpi-it-club/club-api/internal/shared"
	"github.com/cpi-it-club/club-api/internal/stats"
	"github.com/cpi-it-club/club-api/internal/users"
	"github.com/cpi-it-club/club-api/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger   *slog.Logger
	Config   *Config
	Store    db.Store
	Sessions *shared.SessionManager
	Users    *users.Service
	Notifier *contact.Notifier
	Metrics  *observability.Metrics
	// Redis and Inspector are optional; without them health reports skip the queue.
	Redis     redis.UniversalClient
	Inspector jobs.QueueInspector
}

// NewRouter constructs the chi.Router with club defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Message(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	selfService := rbac.SelfServiceOpen
	if params.Config != nil {
		selfService = params.Config.SelfService()
	}
	guard := rbac.Guard{
		Authenticate: auth.Middleware{Sessions: params.Sessions, Logger: params.Logger}.Authenticate,
		Roles: rbac.Middleware{
			Directory:   params.Users,
			Logger:      params.Logger,
			SelfService: selfService,
		},
	}

	rbac.Mount(r, guard, routeTable(newHandlers(params)))
	return r
}

func newHandlers(params RouterParams) handlers {
	h := handlers{
		liveness: func(w http.ResponseWriter, r *http.Request) {
			httpx.Text(w, http.StatusOK, "Club Is Running")
		},
		health:      healthHandler(params.Store, params.Redis),
		metrics:     params.Metrics.Handler().ServeHTTP,
		auth:        auth.NewHandler(params.Logger, params.Sessions),
		members:     resources.NewHandler(params.Logger, resources.NewService(params.Store, resources.Members)),
		users:       users.NewHandler(params.Logger, params.Users),
		assignments: assignments.NewHandler(params.Logger, assignments.NewService(params.Store)),
		stats:       stats.NewHandler(params.Logger, stats.NewService(params.Store)),
		contact:     contact.NewHandler(params.Notifier),
		jobs:        jobs.NewHandler(params.Inspector, params.Logger),
	}
	for _, kind := range resources.Content() {
		h.content = append(h.content, resources.NewHandler(params.Logger, resources.NewService(params.Store, kind)))
	}
	return h
}

type healthReport struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Redis  string `json:"redis,omitempty"`
}

// healthHandler reports store connectivity; Redis only degrades the report
// because the API keeps serving without the mail queue.
func healthHandler(store db.Store, rdb redis.UniversalClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := healthReport{Status: "ok", Store: "ok"}
		status := http.StatusOK
		if err := store.Ping(r.Context()); err != nil {
			report.Status, report.Store = "unavailable", "unavailable"
			status = http.StatusServiceUnavailable
		}
		if rdb != nil {
			report.Redis = "ok"
			if err := cache.Ping(r.Context(), rdb); err != nil {
				report.Redis = "unavailable"
				if status == http.StatusOK {
					report.Status = "degraded"
				}
			}
		}
		httpx.JSON(w, status, report)
	}
}
