// Package httpjson holds the JSON response helpers shared by all HTTP
// handlers, including the single error envelope every endpoint uses.
package httpjson

import (
	"encoding/json"
	"log"
	"net/http"

	"shopfront-backend/internal/validation"
)

// Wire error codes. Clients branch on Code, not on the message text.
const (
	CodeInvalidRequest     = "invalid_request"
	CodeInvalidCredentials = "invalid_credentials"
	CodeExpiredToken       = "expired_token"
	CodeMalformedToken     = "malformed_token"
	CodeUnknownUser        = "unknown_user"
	CodeUnauthenticated    = "unauthenticated"
	CodeValidationFailed   = "validation_failed"
	CodeNotFound           = "not_found"
	CodeDuplicateResource  = "duplicate_resource"
	CodeInternalError      = "internal_error"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Respond writes data as JSON with the given status.
func Respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// Error writes the error envelope with the given status, code, and message.
func Error(w http.ResponseWriter, status int, code, message string) {
	Respond(w, status, ErrorResponse{Error: message, Code: code})
}

// ValidationError writes a 422 with per-field failure details.
func ValidationError(w http.ResponseWriter, v *validation.Error) {
	Respond(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    CodeValidationFailed,
		Details: v.Fields,
	})
}

// Internal writes a generic 500. The underlying error is for the server log
// only and never reaches the client.
func Internal(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, CodeInternalError, "internal server error")
}

// Decode parses the request body as JSON into dst. Returns false after writing
// a 400 response when the body is not valid JSON.
func Decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		Error(w, http.StatusBadRequest, CodeInvalidRequest, "invalid JSON body")
		return false
	}
	return true
}
