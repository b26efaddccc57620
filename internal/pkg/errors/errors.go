package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Sentinel errors for the failure taxonomy. Code below the API layer returns
// these (wrapped or bare); handlers translate them into HTTP responses.
var (
	ErrNotFound         = errors.New("not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrValidation       = errors.New("validation failed")
	ErrUpstream         = errors.New("upstream failure")
	ErrStoreUnavailable = errors.New("store unavailable")
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeUpstreamFailed   = "UPSTREAM_FAILED"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}

// WriteFromError maps a taxonomy error onto the matching HTTP response.
// Store unavailability is surfaced as 503 rather than masked as a 404.
func WriteFromError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, ErrAccessDenied):
		WriteError(w, http.StatusForbidden, ErrCodeForbidden, err.Error(), nil)
	case errors.Is(err, ErrValidation):
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error(), nil)
	case errors.Is(err, ErrStoreUnavailable):
		WriteError(w, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "Storage backend unavailable", nil)
	default:
		WriteError(w, http.StatusInternalServerError, ErrCodeInternal, "Internal error", nil)
	}
}
