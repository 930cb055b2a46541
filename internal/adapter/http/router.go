package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okanin/payflow/internal/adapter/http/handler"
	"github.com/okanin/payflow/internal/adapter/http/middleware"
	"github.com/okanin/payflow/internal/infrastructure/auth"
	"github.com/okanin/payflow/internal/infrastructure/metrics"
	"github.com/okanin/payflow/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler     *handler.AuthHandler
	TransferHandler *handler.TransferHandler
	HealthHandler   *handler.HealthHandler
	JWTManager      *auth.JWTManager
	Coordinator     *usecase.Coordinator
	Metrics         *metrics.Metrics
	RateLimiter     *middleware.RateLimiter
	Logging         *middleware.LoggingMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(cfg.Logging.Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))

			idempotency := middleware.NewIdempotencyMiddleware(cfg.Coordinator, cfg.Metrics)
			r.Use(idempotency.Wrap)

			r.Route("/transfers", func(r chi.Router) {
				r.Post("/", cfg.TransferHandler.Create)
				r.Get("/", cfg.TransferHandler.ListHistory)
				r.Get("/{id}", cfg.TransferHandler.Get)
			})

			r.Get("/me", cfg.AuthHandler.Profile)
			r.Get("/balance", cfg.TransferHandler.GetBalance)
			r.Get("/stats", cfg.TransferHandler.GetStats)
		})
	})

	return r
}
