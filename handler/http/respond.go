package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/w-h-a/brainvault/internal/service"
)

const internalError = "Internal server error"

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, detail)
}

// writeError maps service errors onto status codes. Anything unrecognised
// is logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeDetail(w, http.StatusBadRequest, service.Detail(err, service.ErrValidation))
	case errors.Is(err, service.ErrConflict):
		writeDetail(w, http.StatusBadRequest, service.Detail(err, service.ErrConflict))
	case errors.Is(err, service.ErrAuth):
		writeUnauthorized(w, service.Detail(err, service.ErrAuth))
	case errors.Is(err, service.ErrNotFound):
		writeDetail(w, http.StatusNotFound, service.Detail(err, service.ErrNotFound))
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeDetail(w, http.StatusInternalServerError, internalError)
	}
}
