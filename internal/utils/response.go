package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the wire shape of every failure response.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is the wire shape of ack-only success responses.
type MessageBody struct {
	Message string `json:"message"`
}

// JSONResponse sends any payload as JSON with the given status.
func JSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// JSONError sends a terse {"error": msg} body. Underlying error detail is
// logged server-side, never returned to the client.
func JSONError(w http.ResponseWriter, status int, msg string) {
	JSONResponse(w, status, ErrorBody{Error: msg})
}
