package handler

import (
	"encoding/json"
	"net/http"

	"github.com/catalogo-ips/registration-gateway/internal/domain"
	"github.com/catalogo-ips/registration-gateway/internal/infra/observability"
	"github.com/catalogo-ips/registration-gateway/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Registration — POST /auth/register
// ============================================================

func registerHandler(svc *service.RegistrationService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /auth/register")
		defer span.End()

		var req domain.RegistrationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metrics.IncrRequest("error")
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := svc.Register(ctx, &req)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrRequest("success")
		writeJSON(w, http.StatusOK, resp)
	}
}
