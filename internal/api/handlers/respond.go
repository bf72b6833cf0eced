package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/crusadetome/internal/domain"
	"github.com/dom/crusadetome/internal/logger"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Offset  *int64 `json:"offset,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeSessionError maps session lookup failures onto status codes.
func writeSessionError(w http.ResponseWriter, scope string, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", "Session not found")
	case errors.Is(err, domain.ErrSessionExpired):
		writeError(w, http.StatusGone, "session_expired", "Session expired")
	default:
		logger.Error(scope, zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
