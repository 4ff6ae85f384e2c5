package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-invoicedoc/pkg/document"
	"github.com/goliatone/go-invoicedoc/pkg/export"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// WriteError writes a JSON error body with statusCode.
func WriteError(w http.ResponseWriter, statusCode int, message string, errs []string, log *slog.Logger) {
	if errs == nil {
		errs = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Message: message, Errors: errs}); err != nil && log != nil {
		log.Error("failed to encode error response", "error", err)
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, document.ErrInvalidRecord), errors.Is(err, document.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, export.ErrBrowserUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeFailure(w http.ResponseWriter, message string, err error, log *slog.Logger) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error(message, "error", err)
	}
	WriteError(w, status, message, []string{err.Error()}, log)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
