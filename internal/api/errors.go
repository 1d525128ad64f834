package api

import (
	"encoding/json"
	"net/http"

	"github.com/nerrad567/gateway-fleet-core/internal/apperr"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeUnauthorized    = "unauthorised"
	ErrCodeForbidden       = "forbidden"
	ErrCodeConflict        = "conflict"
	ErrCodeInternal        = "internal_error"
	ErrCodeValidation      = "validation_error"
	ErrCodeTooManyRequests = "too_many_requests"
	ErrCodeUnavailable     = "unavailable"
)

// internalErrorMessage replaces the detail of every 500 response.
const internalErrorMessage = "internal server error"

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeValidationError writes a 400 response for a rejected request field.
func writeValidationError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeValidation, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, internalErrorMessage)
}

// writeDomainError maps a service error onto a response by its kind.
// Internal errors are logged with the request ID and their detail is hidden.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperr.KindOf(err) {
	case apperr.NotFound:
		writeError(w, http.StatusNotFound, ErrCodeNotFound, apperr.MessageOf(err, "not found"))
	case apperr.Conflict:
		writeError(w, http.StatusConflict, ErrCodeConflict, apperr.MessageOf(err, "conflict"))
	case apperr.BadRequest:
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, apperr.MessageOf(err, "bad request"))
	default:
		s.logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()),
		)
		writeInternalError(w)
	}
}
