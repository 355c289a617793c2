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
// Admin panel operations
// ============================================================

// listProfilesHandler — GET /admin/profiles?status=&search=
func listProfilesHandler(svc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /admin/profiles")
		defer span.End()

		status := r.URL.Query().Get("status")
		search := r.URL.Query().Get("search")

		items, err := svc.List(ctx, status, search)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrRequest("success")
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// approveHandler — POST /admin/approve {id?, email?}
func approveHandler(svc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /admin/approve")
		defer span.End()

		req, ok := decodeAdminAction(w, r, metrics)
		if !ok {
			return
		}

		updated, err := svc.Approve(ctx, req)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrRequest("success")
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "updated": updated})
	}
}

// blockHandler — POST /admin/block {id?, email?}
func blockHandler(svc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /admin/block")
		defer span.End()

		req, ok := decodeAdminAction(w, r, metrics)
		if !ok {
			return
		}

		updated, err := svc.Block(ctx, req)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrRequest("success")
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "updated": updated})
	}
}

// deleteHandler — POST /admin/delete {id?, email?}
func deleteHandler(svc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /admin/delete")
		defer span.End()

		req, ok := decodeAdminAction(w, r, metrics)
		if !ok {
			return
		}

		deleted, err := svc.Delete(ctx, req)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrRequest("success")
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": deleted})
	}
}

func decodeAdminAction(w http.ResponseWriter, r *http.Request, metrics *observability.Metrics) (*domain.AdminActionRequest, bool) {
	var req domain.AdminActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.IncrRequest("error")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	return &req, true
}
