package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Envelope is the failure body: a human readable message plus, for
// diagnostic failures, the underlying error text.
type Envelope struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Message sends a {message} envelope.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Message: message})
}

// Fail sends a {message, error} envelope; the error field is omitted when cause is nil.
func Fail(w http.ResponseWriter, status int, message string, cause error) {
	env := Envelope{Message: message}
	if cause != nil {
		env.Error = cause.Error()
	}
	JSON(w, status, env)
}

// Text sends a plain text body.
func Text(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// DecodeJSON decodes the JSON request body into target. An empty body is a
// BadRequest like any other malformed payload.
func DecodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return BadRequest("Request body is required", nil)
		}
		return BadRequest("Invalid JSON body", err)
	}
	return nil
}
