package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/adapter/http/handler"
	"github.com/iho/cashledger/internal/adapter/http/middleware"
	"github.com/iho/cashledger/internal/infrastructure/metrics"
	"github.com/iho/cashledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler  *handler.AccountHandler
	TransferHandler *handler.TransferHandler
	HealthHandler   *handler.HealthHandler
	AuthHandler     *handler.AuthHandler

	// Optional. Nil disables the matching middleware.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	TokenVerifier    middleware.TokenVerifier
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler

	Logger zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		if cfg.Metrics != nil {
			cfg.RateLimiter.OnReject(cfg.Metrics.RateLimitHits.Inc)
		}
		r.Use(cfg.RateLimiter.Limit)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeRouteError(w, http.StatusNotFound, "Method not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeRouteError(w, http.StatusMethodNotAllowed, "Wrong method format")
	})

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
			r.Use(middleware.RequireMutation)
		}

		// Runs after auth so that rejected callers never claim a key.
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			if cfg.Metrics != nil {
				idempotency.OnReplay(cfg.Metrics.IdempotentReplays.Inc)
			}
			r.Use(idempotency.Wrap)
		}

		if cfg.AuthHandler != nil && cfg.TokenVerifier != nil {
			r.Get("/auth/me", cfg.AuthHandler.WhoAmI)
		}

		// Accounts
		r.Route("/accounts/{number}", func(r chi.Router) {
			r.Post("/cash-in", cfg.AccountHandler.CashIn)
			r.Post("/withdraw", cfg.AccountHandler.Withdraw)
			r.Get("/balance", cfg.AccountHandler.Balance)
			r.Get("/operations", cfg.AccountHandler.Operations)
		})

		// Transfers
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Create)
			r.Get("/", cfg.TransferHandler.List)
			r.Get("/{id}", cfg.TransferHandler.Get)
			r.Delete("/{id}", cfg.TransferHandler.Delete)
		})
	})

	return r
}

func writeRouteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.NewErrorResponse(status, "", message))
}
