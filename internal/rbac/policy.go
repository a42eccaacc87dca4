package rbac

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Policy is the static authorization decision attached to a route.
type Policy int

const (
	// Public routes run without a credential.
	Public Policy = iota
	// Authenticated routes need a valid session credential.
	Authenticated
	// Self routes are authenticated self-service lookups keyed by a path parameter.
	Self
	// Admin routes need a valid credential whose user holds the admin role.
	Admin
)

func (p Policy) String() string {
	switch p {
	case Public:
		return "none"
	case Authenticated:
		return "authenticated"
	case Self:
		return "authenticated (self-service)"
	case Admin:
		return "authenticated+admin"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Route binds a verb and pattern to a handler under a policy.
type Route struct {
	Method  string
	Pattern string
	Policy  Policy
	// Param and Key identify the owner on Self routes.
	Param   string
	Key     KeyKind
	Handler http.HandlerFunc
}

// Guard composes the capability checks each policy requires.
type Guard struct {
	Authenticate func(http.Handler) http.Handler
	Roles        Middleware
}

// Chain returns the ordered middleware for a route.
func (g Guard) Chain(route Route) []func(http.Handler) http.Handler {
	switch route.Policy {
	case Authenticated:
		return []func(http.Handler) http.Handler{g.Authenticate}
	case Self:
		return []func(http.Handler) http.Handler{g.Authenticate, g.Roles.RequireSelf(route.Param, route.Key)}
	case Admin:
		return []func(http.Handler) http.Handler{g.Authenticate, g.Roles.RequireAdmin}
	default:
		return nil
	}
}

// Mount registers every route on r behind the middleware its policy requires.
func Mount(r chi.Router, g Guard, routes []Route) {
	for _, route := range routes {
		r.With(g.Chain(route)...).Method(route.Method, route.Pattern, route.Handler)
	}
}
