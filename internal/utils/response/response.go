// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Success responses may be any JSON shape (a student, a list, an id…).
// Error responses always look like:
//
//	{ "status": "error", "error": "NIM sudah ada: 200300400500" }
//
// and validation failures add the per-field detail:
//
//	{ "status": "error", "error": "...", "fields": [{"field": "gpa", ...}] }
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/store"
	"github.com/aanand-mishra/student-records/internal/validation"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Status string                  `json:"status"`
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

// Status string constants.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes data as JSON with the given HTTP status code.
// Header() → WriteHeader() → body, in that order.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError renders every failing field of verr.
func ValidationError(verr *validation.ValidationError) Response {
	return Response{
		Status: StatusError,
		Error:  verr.Error(),
		Fields: verr.Fields,
	}
}

// StatusFor maps an error from the store to the HTTP status it deserves.
//
//	*validation.ValidationError → 400
//	store.ErrNotFound           → 404
//	store.ErrDuplicateKey       → 409
//	anything else               → 500
func StatusFor(err error) int {
	if _, ok := validation.AsValidationError(err); ok {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateKey):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Error writes err with the status StatusFor picks.
func Error(w http.ResponseWriter, err error) error {
	if verr, ok := validation.AsValidationError(err); ok {
		return WriteJSON(w, http.StatusBadRequest, ValidationError(verr))
	}
	return WriteJSON(w, StatusFor(err), GeneralError(err))
}
