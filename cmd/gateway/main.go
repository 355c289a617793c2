package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/catalogo-ips/registration-gateway/internal/config"
	"github.com/catalogo-ips/registration-gateway/internal/handler"
	"github.com/catalogo-ips/registration-gateway/internal/infra/observability"
	"github.com/catalogo-ips/registration-gateway/internal/infra/resilience"
	"github.com/catalogo-ips/registration-gateway/internal/infra/supabase"
	"github.com/catalogo-ips/registration-gateway/internal/port"
	"github.com/catalogo-ips/registration-gateway/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Bool("admin_auth_enabled", cfg.AdminPasswordHash != ""),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "registration-gateway")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	cb := resilience.NewCircuitBreaker("supabase")

	// --- Clients & services ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var regSvc *service.RegistrationService
	var adminSvc *service.AdminService
	var pinger port.Pinger

	missing := cfg.MissingSupabase()
	if len(missing) > 0 {
		// The server still starts so the admin page can explain the problem,
		// but every data route answers with the configuration error.
		logger.Warn("supabase not configured, gateway routes disabled",
			zap.Strings("missing", missing),
		)
	} else {
		supabaseClient := supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cb,
			logger,
		)
		pinger = supabaseClient
		regSvc = service.NewRegistrationService(supabaseClient, supabaseClient, metrics, logger)
		adminSvc = service.NewAdminService(supabaseClient, supabaseClient, metrics, logger)
		logger.Info("supabase backend ready", zap.String("supabase_url", cfg.SupabaseURL))
	}

	// --- Router ---
	router := handler.NewRouter(regSvc, adminSvc, pinger, handler.RouterOptions{
		MissingConfig:     missing,
		AdminPasswordHash: cfg.AdminPasswordHash,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
