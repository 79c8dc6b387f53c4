// Package httpx implements the response envelope and the error boundary:
// the single point translating internal failures into the wire contract.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response body used for every endpoint, success
// and failure alike.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// ErrorDetail carries the machine-readable error code inside a failure
// envelope.
type ErrorDetail struct {
	ErrorType string `json:"errorType"`
}

// JSON sends data wrapped in a success envelope.
func JSON(w http.ResponseWriter, status int, data any, message string) {
	write(w, status, Envelope{Success: true, Message: message, Data: data})
}

// DecodeJSON decodes the request body into target.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
