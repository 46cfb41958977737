package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velinov/fintrack/internal/adapter/http/handler"
	"github.com/velinov/fintrack/internal/adapter/http/middleware"
	"github.com/velinov/fintrack/internal/infrastructure/auth"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler     *handler.AccountHandler
	TransactionHandler *handler.TransactionHandler
	TransferHandler    *handler.TransferHandler
	RecurringHandler   *handler.RecurringHandler
	LedgerHandler      *handler.LedgerHandler
	AnalyticsHandler   *handler.AnalyticsHandler
	ExtractionHandler  *handler.ExtractionHandler
	HealthHandler      *handler.HealthHandler

	JWTManager       *auth.JWTManager
	LoggingWrapper   func(http.Handler) http.Handler
	MetricsWrapper   func(http.Handler) http.Handler
	RateLimitWrapper func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.LoggingWrapper != nil {
		r.Use(cfg.LoggingWrapper)
	}
	if cfg.MetricsWrapper != nil {
		r.Use(cfg.MetricsWrapper)
	}
	r.Use(middleware.Recovery)

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1, all routes user-scoped
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		if cfg.RateLimitWrapper != nil {
			r.Use(cfg.RateLimitWrapper)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/", cfg.TransactionHandler.List)
			r.Post("/extract", cfg.ExtractionHandler.Extract)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Put("/{id}", cfg.TransactionHandler.Update)
			r.Delete("/{id}", cfg.TransactionHandler.Delete)
			r.Get("/{id}/history", cfg.TransactionHandler.History)
		})

		// Transfers
		r.Post("/transfers", cfg.TransferHandler.Create)

		// Recurring templates
		r.Route("/recurring", func(r chi.Router) {
			r.Post("/", cfg.RecurringHandler.Create)
			r.Get("/", cfg.RecurringHandler.List)
			r.Get("/upcoming", cfg.RecurringHandler.Upcoming)
			r.Post("/post-due", cfg.RecurringHandler.PostDue)
			r.Put("/{id}", cfg.RecurringHandler.Update)
			r.Delete("/{id}", cfg.RecurringHandler.Delete)
		})

		// Ledger maintenance
		r.Route("/ledger", func(r chi.Router) {
			r.Post("/sweep", cfg.LedgerHandler.Sweep)
			r.Get("/audit", cfg.LedgerHandler.Audit)
		})

		// Analytics
		r.Get("/analytics/categories", cfg.AnalyticsHandler.Categories)
	})

	return r
}
