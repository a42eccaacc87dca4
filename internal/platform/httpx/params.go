package httpx

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// PathParam returns the decoded value of a chi path parameter. chi matches on
// the escaped path, so "member%40club.test" arrives still encoded.
func PathParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", BadRequest("Invalid path parameter "+name, err)
	}
	return value, nil
}
