package assignments

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpi-it-club/club-api/internal/platform/db"
	"github.com/cpi-it-club/club-api/internal/shared"
)

func newRouter() http.Handler {
	h := NewHandler(nil, NewService(db.NewMemory()))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if email := r.Header.Get("X-Test-Email"); email != "" {
				r = r.WithContext(shared.ContextWithIdentity(r.Context(), shared.Identity{Email: email}))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/assignments", h.List)
	r.Get("/assignments/{email}", h.ByEmail)
	r.Post("/assignments", h.Create)
	r.Delete("/assignments/{id}", h.Delete)
	r.Patch("/assignments/{id}/mark", h.Grade)
	return r
}

func send(h http.Handler, method, path, caller, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if caller != "" {
		req.Header.Set("X-Test-Email", caller)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestSubmitDefaultsOwnerAndDropsMark(t *testing.T) {
	h := newRouter()

	rr := send(h, http.MethodPost, "/assignments", "", `{"title":"hw1"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = send(h, http.MethodPost, "/assignments", "s@club.test", `{"title":"hw1","mark":100}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = send(h, http.MethodPost, "/assignments", "s@club.test", `{"title":"hw2","email":"other@club.test"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	mine := decodeList(t, send(h, http.MethodGet, "/assignments/s@club.test", "", ""))
	require.Len(t, mine, 1)
	assert.Equal(t, "hw1", mine[0]["title"])
	assert.NotContains(t, mine[0], "mark")

	assert.Len(t, decodeList(t, send(h, http.MethodGet, "/assignments/other@club.test", "", "")), 1)
	assert.Len(t, decodeList(t, send(h, http.MethodGet, "/assignments/nobody@club.test", "", "")), 0)
	assert.Len(t, decodeList(t, send(h, http.MethodGet, "/assignments", "", "")), 2)
}

func TestGrade(t *testing.T) {
	h := newRouter()
	rr := send(h, http.MethodPost, "/assignments", "s@club.test", `{"title":"hw1"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	id := created["insertedId"].(string)

	rr = send(h, http.MethodPatch, "/assignments/"+id+"/mark", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"message":"Mark is required"}`, rr.Body.String())

	rr = send(h, http.MethodPatch, "/assignments/"+id+"/mark", "", `{"mark":"A"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"modifiedCount":1`)

	mine := decodeList(t, send(h, http.MethodGet, "/assignments/s@club.test", "", ""))
	require.Len(t, mine, 1)
	assert.Equal(t, "A", mine[0]["mark"])

	rr = send(h, http.MethodPatch, "/assignments/"+strings.Repeat("0", 24)+"/mark", "", `{"mark":1}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.Equal(t, http.StatusOK, send(h, http.MethodDelete, "/assignments/"+id, "", "").Code)
	assert.Equal(t, http.StatusNotFound, send(h, http.MethodDelete, "/assignments/"+id, "", "").Code)
}
