package app

import (
	"net/http"

	"github.com/cpi-it-club/club-api/internal/assignments"
	"github.com/cpi-it-club/club-api/internal/auth"
	"github.com/cpi-it-club/club-api/internal/contact"
	"github.com/cpi-it-club/club-api/internal/rbac"
	"github.com/cpi-it-club/club-api/internal/resources"
	"github.com/cpi-it-club/club-api/internal/stats"
	"github.com/cpi-it-club/club-api/internal/users"
	"github.com/cpi-it-club/club-api/jobs"
)

// handlers bundles every endpoint the route table points at.
type handlers struct {
	liveness    http.HandlerFunc
	health      http.HandlerFunc
	metrics     http.HandlerFunc
	auth        *auth.Handler
	content     []*resources.Handler
	members     *resources.Handler
	users       *users.Handler
	assignments *assignments.Handler
	stats       *stats.Handler
	contact     *contact.Handler
	jobs        *jobs.Handler
}

// routeTable is the single declaration of every route and its policy.
func routeTable(h handlers) []rbac.Route {
	routes := []rbac.Route{
		{Method: http.MethodGet, Pattern: "/", Policy: rbac.Public, Handler: h.liveness},
		{Method: http.MethodGet, Pattern: "/healthz", Policy: rbac.Public, Handler: h.health},
		{Method: http.MethodGet, Pattern: "/metrics", Policy: rbac.Public, Handler: h.metrics},
		{Method: http.MethodGet, Pattern: "/jobs/health", Policy: rbac.Admin, Handler: h.jobs.Health},

		{Method: http.MethodPost, Pattern: "/jwt", Policy: rbac.Public, Handler: h.auth.Login},
		{Method: http.MethodPost, Pattern: "/logout", Policy: rbac.Public, Handler: h.auth.Logout},
	}

	for _, c := range h.content {
		base := "/" + c.Kind().Name
		routes = append(routes,
			rbac.Route{Method: http.MethodGet, Pattern: base, Policy: rbac.Public, Handler: c.List},
			rbac.Route{Method: http.MethodGet, Pattern: base + "/{id}", Policy: rbac.Public, Handler: c.Get},
			rbac.Route{Method: http.MethodPost, Pattern: base, Policy: rbac.Admin, Handler: c.Create},
			rbac.Route{Method: http.MethodPut, Pattern: base + "/{id}", Policy: rbac.Admin, Handler: c.Update},
			rbac.Route{Method: http.MethodDelete, Pattern: base + "/{id}", Policy: rbac.Admin, Handler: c.Delete},
		)
	}

	routes = append(routes,
		rbac.Route{Method: http.MethodGet, Pattern: "/members", Policy: rbac.Public, Handler: h.members.List},
		rbac.Route{Method: http.MethodGet, Pattern: "/members/{id}", Policy: rbac.Public, Handler: h.members.Get},
		rbac.Route{Method: http.MethodPost, Pattern: "/members", Policy: rbac.Public, Handler: h.members.Create},
		rbac.Route{Method: http.MethodDelete, Pattern: "/members/{id}", Policy: rbac.Admin, Handler: h.members.Delete},

		rbac.Route{Method: http.MethodPost, Pattern: "/users", Policy: rbac.Public, Handler: h.users.Create},
		rbac.Route{Method: http.MethodGet, Pattern: "/users", Policy: rbac.Admin, Handler: h.users.List},
		rbac.Route{Method: http.MethodGet, Pattern: "/users/{email}", Policy: rbac.Self, Param: "email", Key: rbac.KeyEmail, Handler: h.users.Get},
		rbac.Route{Method: http.MethodGet, Pattern: "/users/role/{email}", Policy: rbac.Self, Param: "email", Key: rbac.KeyEmail, Handler: h.users.Role},
		rbac.Route{Method: http.MethodPut, Pattern: "/users/role/{email}", Policy: rbac.Admin, Handler: h.users.UpdateRole},
		rbac.Route{Method: http.MethodPatch, Pattern: "/users/{id}", Policy: rbac.Self, Param: "id", Key: rbac.KeyUserID, Handler: h.users.UpdateProfile},
		rbac.Route{Method: http.MethodDelete, Pattern: "/users/{id}", Policy: rbac.Self, Param: "id", Key: rbac.KeyUserID, Handler: h.users.Delete},

		rbac.Route{Method: http.MethodGet, Pattern: "/assignments", Policy: rbac.Admin, Handler: h.assignments.List},
		rbac.Route{Method: http.MethodGet, Pattern: "/assignments/{email}", Policy: rbac.Self, Param: "email", Key: rbac.KeyEmail, Handler: h.assignments.ByEmail},
		rbac.Route{Method: http.MethodPost, Pattern: "/assignments", Policy: rbac.Authenticated, Handler: h.assignments.Create},
		rbac.Route{Method: http.MethodDelete, Pattern: "/assignments/{id}", Policy: rbac.Admin, Handler: h.assignments.Delete},
		rbac.Route{Method: http.MethodPatch, Pattern: "/assignments/{id}/mark", Policy: rbac.Admin, Handler: h.assignments.Grade},

		rbac.Route{Method: http.MethodGet, Pattern: "/admin-stats", Policy: rbac.Admin, Handler: h.stats.Get},
		rbac.Route{Method: http.MethodPost, Pattern: "/contact", Policy: rbac.Public, Handler: h.contact.Submit},
	)
	return routes
}
