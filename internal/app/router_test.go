package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cpi-it-club/club-api/internal/contact"
	"github.com/cpi-it-club/club-api/internal/observability"
	"github.com/cpi-it-club/club-api/internal/platform/db"
	"github.com/cpi-it-club/club-api/internal/rbac"
	"github.com/cpi-it-club/club-api/internal/shared"
	"github.com/cpi-it-club/club-api/internal/users"
	_ "github.com/cpi-it-club/club-api/testing"
)

type testServer struct {
	params   RouterParams
	handler  http.Handler
	sessions *shared.SessionManager
	users    *users.Service
	store    db.Store
}

func newTestServer(t testing.TB, policy string) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &Config{
		AppEnv:            "test",
		AppRequestTimeout: 5 * time.Second,
		SessionTTL:        720 * time.Hour,
		SessionCookie:     "token",
		SelfServicePolicy: policy,
		CORSOrigins:       []string{"http://localhost:5173"},
	}
	store := db.NewMemory()
	repo := users.NewRepository(store)
	require.NoError(t, repo.EnsureIndexes(context.Background()))
	userService := users.NewService(repo)
	sessions := shared.NewSessionManager("token", "test-secret", cfg.SessionTTL, false)

	params := RouterParams{
		Logger:   logger,
		Config:   cfg,
		Store:    store,
		Sessions: sessions,
		Users:    userService,
		Notifier: contact.NewNotifier(nil, "", logger),
		Metrics:  observability.NewMetrics(),
	}
	return &testServer{params: params, handler: NewRouter(params), sessions: sessions, users: userService, store: store}
}

func (s *testServer) seedUser(t testing.TB, email, role string) string {
	t.Helper()
	res, dup, err := s.users.Create(context.Background(), bson.M{"email": email, "role": role})
	require.NoError(t, err)
	require.Nil(t, dup)
	return res.InsertedID.(bson.ObjectID).Hex()
}

func (s *testServer) do(t testing.TB, method, path, as, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != "" {
		token, err := s.sessions.Issue(as)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func messageOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env.Message
}

func TestLiveness(t *testing.T) {
	s := newTestServer(t, "open")
	rr := s.do(t, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Club Is Running", rr.Body.String())

	rr = s.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","store":"ok"}`, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEndToEndScenarios(t *testing.T) {
	s := newTestServer(t, "open")
	s.seedUser(t, "admin@club.test", "admin")
	s.seedUser(t, "member@club.test", "")

	t.Run("notice without date", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/notice", "admin@club.test", `{"title":"Exam week"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Title and date are required", messageOf(t, rr))
	})

	t.Run("delete missing event", func(t *testing.T) {
		rr := s.do(t, http.MethodDelete, "/events/"+bson.NewObjectID().Hex(), "admin@club.test", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Event not found", messageOf(t, rr))
	})

	t.Run("role of unknown user", func(t *testing.T) {
		rr := s.do(t, http.MethodGet, "/users/role/ghost@club.test", "member@club.test", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "User not found", messageOf(t, rr))
	})

	t.Run("promote existing user", func(t *testing.T) {
		rr := s.do(t, http.MethodPut, "/users/role/member@club.test", "admin@club.test", `{"role":"admin"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "User role updated to admin", messageOf(t, rr))
	})

	t.Run("create class without credential", func(t *testing.T) {
		rr := s.do(t, http.MethodPost, "/classes", "", `{"name":"Go"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"message":"unauthorized access"}`, rr.Body.String())
	})
}

func TestRoleChangeAppliesToExistingCredential(t *testing.T) {
	s := newTestServer(t, "open")
	s.seedUser(t, "admin@club.test", "admin")
	s.seedUser(t, "member@club.test", "user")

	token, err := s.sessions.Issue("member@club.test")
	require.NoError(t, err)
	statsAs := func() int {
		req := httptest.NewRequest(http.MethodGet, "/admin-stats", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		rr := httptest.NewRecorder()
		s.handler.ServeHTTP(rr, req)
		return rr.Code
	}

	require.Equal(t, http.StatusForbidden, statsAs())

	rr := s.do(t, http.MethodPut, "/users/role/member@club.test", "admin@club.test", `{"role":"admin"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusOK, statsAs())

	rr = s.do(t, http.MethodPut, "/users/role/member@club.test", "admin@club.test", `{"role":"user"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusForbidden, statsAs())
}

func TestCredentialFailures(t *testing.T) {
	s := newTestServer(t, "open")
	s.seedUser(t, "admin@club.test", "admin")

	forged, err := shared.NewSessionManager("token", "other-secret", time.Hour, false).Issue("admin@club.test")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin-stats", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: forged})
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"message":"forbidden access"}`, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/admin-stats", "member@club.test", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "forbidden access: admins only", messageOf(t, rr))
}

func TestLoginThenUseCookie(t *testing.T) {
	s := newTestServer(t, "open")
	s.seedUser(t, "member@club.test", "user")

	rr := s.do(t, http.MethodPost, "/jwt", "", `{"email":"member@club.test"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/users/member@club.test", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"member@club.test"`)

	rr = s.do(t, http.MethodPost, "/logout", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
}

func TestContentLifecycleThroughRouter(t *testing.T) {
	s := newTestServer(t, "open")
	s.seedUser(t, "admin@club.test", "admin")

	rr := s.do(t, http.MethodPost, "/classes", "admin@club.test", `{"name":"Go","price":5,"seats":20}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var created struct {
		InsertedID string `json:"insertedId"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = s.do(t, http.MethodPut, "/classes/"+created.InsertedID, "admin@club.test", `{"price":10}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"modifiedCount":1`)
	rr = s.do(t, http.MethodPut, "/classes/"+created.InsertedID, "admin@club.test", `{"price":10}`)
	assert.Contains(t, rr.Body.String(), `"message":"No changes made"`)

	rr = s.do(t, http.MethodGet, "/classes/"+created.InsertedID, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"seats":20`)

	rr = s.do(t, http.MethodDelete, "/classes/"+created.InsertedID, "admin@club.test", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = s.do(t, http.MethodDelete, "/classes/"+created.InsertedID, "admin@club.test", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Class not found", messageOf(t, rr))

	rr = s.do(t, http.MethodGet, "/gallery", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestSelfServicePolicies(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		s := newTestServer(t, "open")
		s.seedUser(t, "one@club.test", "user")
		twoID := s.seedUser(t, "two@club.test", "user")

		rr := s.do(t, http.MethodGet, "/users/two@club.test", "one@club.test", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		rr = s.do(t, http.MethodPatch, "/users/"+twoID, "one@club.test", `{"name":"Two"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("owner", func(t *testing.T) {
		s := newTestServer(t, "owner")
		s.seedUser(t, "admin@club.test", "admin")
		oneID := s.seedUser(t, "one@club.test", "user")
		twoID := s.seedUser(t, "two@club.test", "user")

		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/users/one@club.test", "one@club.test", "").Code)
		assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/users/two@club.test", "one@club.test", "").Code)
		assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/assignments/two@club.test", "one@club.test", "").Code)
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodPatch, "/users/"+oneID, "one@club.test", `{"name":"One"}`).Code)
		assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPatch, "/users/"+twoID, "one@club.test", `{"name":"X"}`).Code)
		assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/users/"+twoID, "one@club.test", "").Code)
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/users/two@club.test", "admin@club.test", "").Code)
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/users/"+twoID, "admin@club.test", "").Code)
	})
}

func TestEncodedEmailPathParameters(t *testing.T) {
	for _, policy := range []string{"open", "owner"} {
		t.Run(policy, func(t *testing.T) {
			s := newTestServer(t, policy)
			s.seedUser(t, "admin@club.test", "admin")
			s.seedUser(t, "member@club.test", "user")

			rr := s.do(t, http.MethodGet, "/users/role/member%40club.test", "member@club.test", "")
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.JSONEq(t, `{"role":"user"}`, rr.Body.String())

			rr = s.do(t, http.MethodGet, "/users/member%40club.test", "member@club.test", "")
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Contains(t, rr.Body.String(), `"email":"member@club.test"`)

			rr = s.do(t, http.MethodGet, "/assignments/member%40club.test", "member@club.test", "")
			assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			rr = s.do(t, http.MethodPut, "/users/role/member%40club.test", "admin@club.test", `{"role":"admin"}`)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, "User role updated to admin", messageOf(t, rr))
		})
	}
}

func TestPublicRegistrationAndMembers(t *testing.T) {
	s := newTestServer(t, "open")
	s.seedUser(t, "admin@club.test", "admin")

	rr := s.do(t, http.MethodPost, "/users", "", `{"email":"new@club.test","name":"New"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = s.do(t, http.MethodPost, "/users", "", `{"email":"new@club.test"}`)
	assert.JSONEq(t, `{"message":"user already exists","insertedId":null}`, rr.Body.String())

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/users", "", "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/users", "new@club.test", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/users", "admin@club.test", "").Code)

	rr = s.do(t, http.MethodPost, "/members", "", `{"name":"Ann","session":"2024"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var created struct {
		InsertedID string `json:"insertedId"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/members/"+created.InsertedID, "new@club.test", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/members/"+created.InsertedID, "admin@club.test", "").Code)
}

func TestAssignmentsAndStatsThroughRouter(t *testing.T) {
	s := newTestServer(t, "open")
	s.seedUser(t, "admin@club.test", "admin")
	s.seedUser(t, "member@club.test", "user")

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/assignments", "", `{"title":"hw"}`).Code)
	rr := s.do(t, http.MethodPost, "/assignments", "member@club.test", `{"title":"hw","mark":99}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodGet, "/assignments/member@club.test", "member@club.test", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"mark"`)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/assignments", "member@club.test", "").Code)

	rr = s.do(t, http.MethodGet, "/admin-stats", "admin@club.test", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"users":2,"members":0,"courses":0,"classes":0,"events":0,"notices":0,"gallery":0,"assignments":1}`, rr.Body.String())
}

func TestContactAlwaysSucceeds(t *testing.T) {
	s := newTestServer(t, "open")
	rr := s.do(t, http.MethodPost, "/contact", "", `{"name":"A","email":"a@mail.test","subject":"Hi","message":"Hello"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"Message received"}`, rr.Body.String())
}

func TestCORSPreflightAllowsCredentials(t *testing.T) {
	s := newTestServer(t, "open")
	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouteTablePolicies(t *testing.T) {
	s := newTestServer(t, "open")
	routes := routeTable(newHandlers(s.params))
	byKey := map[string]rbac.Policy{}
	for _, route := range routes {
		key := route.Method + " " + route.Pattern
		_, dup := byKey[key]
		require.False(t, dup, "duplicate route %s", key)
		require.NotNil(t, route.Handler, key)
		byKey[key] = route.Policy
	}

	want := map[string]rbac.Policy{
		"GET /":                        rbac.Public,
		"POST /jwt":                    rbac.Public,
		"GET /events":                  rbac.Public,
		"GET /events/{id}":             rbac.Public,
		"POST /notice":                 rbac.Admin,
		"PUT /courses/{id}":            rbac.Admin,
		"DELETE /gallery/{id}":         rbac.Admin,
		"POST /members":                rbac.Public,
		"DELETE /members/{id}":         rbac.Admin,
		"POST /users":                  rbac.Public,
		"GET /users":                   rbac.Admin,
		"GET /users/{email}":           rbac.Self,
		"GET /users/role/{email}":      rbac.Self,
		"PUT /users/role/{email}":      rbac.Admin,
		"PATCH /users/{id}":            rbac.Self,
		"DELETE /users/{id}":           rbac.Self,
		"GET /assignments":             rbac.Admin,
		"GET /assignments/{email}":     rbac.Self,
		"POST /assignments":            rbac.Authenticated,
		"PATCH /assignments/{id}/mark": rbac.Admin,
		"DELETE /assignments/{id}":     rbac.Admin,
		"GET /admin-stats":             rbac.Admin,
		"POST /contact":                rbac.Public,
		"GET /jobs/health":             rbac.Admin,
	}
	for key, policy := range want {
		got, ok := byKey[key]
		if assert.True(t, ok, "missing route %s", key) {
			assert.Equal(t, policy, got, key)
		}
	}
}
