package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/catalogo-ips/registration-gateway/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// handleServiceError maps domain errors to HTTP responses. The gateway has
// a deliberately flat taxonomy: missing configuration is a 500 with an
// instruction, everything else is a 400 surfacing the underlying message.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notConfigured *domain.ErrNotConfigured
	var validation *domain.ErrValidation
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notConfigured):
		logger.Error("service not configured", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &external):
		logger.Warn("supabase call failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("operation failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
