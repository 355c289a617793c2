package handler

import (
	"net/http"
	"time"

	"github.com/catalogo-ips/registration-gateway/internal/domain"
	"github.com/catalogo-ips/registration-gateway/internal/infra/observability"
	"github.com/catalogo-ips/registration-gateway/internal/port"
	"github.com/catalogo-ips/registration-gateway/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("handler")

// RouterOptions carries the deployment knobs the router needs beyond its
// service dependencies.
type RouterOptions struct {
	// MissingConfig lists unset required secrets. When non-empty, the
	// gateway and admin endpoints answer 500 with an instruction instead
	// of reaching a backend that does not exist.
	MissingConfig []string

	// AdminPasswordHash enables basic auth on /admin/* when set.
	AdminPasswordHash string
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(regSvc *service.RegistrationService, adminSvc *service.AdminService, pinger port.Pinger, opts RouterOptions, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	// The original deployment served the registration form from another
	// origin, so the API allows everything.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// --- Operational endpoints ---
	r.Get("/health", healthHandler())
	r.Get("/healthz", healthzHandler(pinger, logger))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	if len(opts.MissingConfig) > 0 {
		nc := notConfiguredHandler(opts.MissingConfig, logger)
		r.Post("/auth/register", nc)
		r.Route("/admin", func(r chi.Router) {
			r.Get("/", adminPageHandler())
			r.Get("/profiles", nc)
			r.Post("/approve", nc)
			r.Post("/block", nc)
			r.Post("/delete", nc)
			r.Get("/stats", nc)
		})
		return r
	}

	// --- Registration ---
	r.Post("/auth/register", registerHandler(regSvc, metrics, logger))

	// --- Admin panel ---
	r.Route("/admin", func(r chi.Router) {
		r.Use(AdminAuthMiddleware(opts.AdminPasswordHash, logger))

		r.Get("/", adminPageHandler())
		r.Get("/profiles", listProfilesHandler(adminSvc, metrics, logger))
		r.Post("/approve", approveHandler(adminSvc, metrics, logger))
		r.Post("/block", blockHandler(adminSvc, metrics, logger))
		r.Post("/delete", deleteHandler(adminSvc, metrics, logger))
		r.Get("/stats", statsHandler(metrics))
	})

	return r
}

// notConfiguredHandler answers every gateway operation with the
// configuration instruction when required secrets are missing.
func notConfiguredHandler(missing []string, logger *zap.Logger) http.HandlerFunc {
	err := &domain.ErrNotConfigured{Missing: missing}
	return func(w http.ResponseWriter, r *http.Request) {
		handleServiceError(w, err, logger)
	}
}

// ============================================================
// Health
// ============================================================

// healthHandler keeps the original minimal liveness contract.
func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// healthzHandler probes the Supabase REST and Auth subsystems concurrently.
func healthzHandler(pinger port.Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "registration-gateway", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if pinger != nil {
			var restErr, authErr error
			var restLatency, authLatency int64

			// Plain errgroup.Group: a derived context would cancel the
			// second probe as soon as the first one fails, and both
			// results are wanted either way.
			var g errgroup.Group
			g.Go(func() error {
				start := time.Now()
				restErr = pinger.PingRest(ctx)
				restLatency = time.Since(start).Milliseconds()
				return restErr
			})
			g.Go(func() error {
				start := time.Now()
				authErr = pinger.PingAuth(ctx)
				authLatency = time.Since(start).Milliseconds()
				return authErr
			})

			err := g.Wait()

			services = append(services,
				probeResult("supabase-rest", restErr, restLatency, now),
				probeResult("supabase-auth", authErr, authLatency, now),
			)
			if err != nil {
				logger.Warn("healthz: supabase probe failed",
					zap.NamedError("rest", restErr),
					zap.NamedError("auth", authErr),
				)
			}
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func probeResult(name string, err error, latencyMs int64, now string) domain.ServiceHealth {
	status := "healthy"
	if err != nil {
		status = "degraded"
	}
	return domain.ServiceHealth{
		Name:        name,
		Status:      status,
		LatencyMs:   latencyMs,
		LastChecked: now,
	}
}

// ============================================================
// Stats — GET /admin/stats
// ============================================================

func statsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetSnapshot())
	}
}
