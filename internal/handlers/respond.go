package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"corpusqa/internal/contextutil"
	"corpusqa/internal/llm"
	"corpusqa/internal/tenant"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// writeError maps domain errors onto HTTP statuses. A degraded tenant
// namespace is 503, provider failures are 502, validation problems are
// client errors.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "request failed",
		"path", r.URL.Path, "error", err)

	statusCode, message := statusForError(err)
	writeErrorMessage(w, statusCode, message)
}

func statusForError(err error) (int, string) {
	var storageErr *tenant.StorageError
	switch {
	case errors.Is(err, tenant.ErrInvalidName):
		return http.StatusBadRequest, "Invalid tenant name"
	case errors.Is(err, tenant.ErrTenantNotFound):
		return http.StatusNotFound, "Tenant not found"
	case errors.Is(err, tenant.ErrTenantDeleted):
		return http.StatusGone, "Tenant has been deleted"
	case errors.As(err, &storageErr):
		return http.StatusServiceUnavailable, "Tenant storage unavailable"
	case llm.IsTransient(err):
		return http.StatusBadGateway, "External service temporarily unavailable"
	case llm.IsPermanent(err):
		return http.StatusBadGateway, "External service rejected the request"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
