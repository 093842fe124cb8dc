package handler

// RESPONSE HELPERS:
// writeJSON and writeError standardise how every handler sends responses.
// Every error response has the same shape:
//
//	{"error": "forbidden", "message": "access to resource denied"}
//
// so a client always knows what fields to expect, whether it got a 400,
// a 403, or a 500.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/neonkn1ght/calendar-api/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable error type (e.g., "forbidden")
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response with the given status code.
//
// Headers must be set before WriteHeader, and WriteHeader before the body —
// once the body starts, header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent at this point; all we can do is log.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError maps a domain error to the appropriate HTTP status code.
//
// This is the single place where the apperror taxonomy meets HTTP. The
// service layer returns sentinels; errors.Is walks the wrap chain (via
// AppError.Unwrap) to find them, so services are free to add context with
// fmt.Errorf("...: %w", err) without breaking the mapping.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized
			errorType = "unauthenticated"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error — return a generic 500. The raw message might contain
	// SQL fragments or file paths; it belongs in logs, not responses.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}
