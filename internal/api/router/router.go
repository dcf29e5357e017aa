package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/geovantage/lead-intake/internal/analytics"
	httpmiddleware "github.com/geovantage/lead-intake/internal/http/middleware"
	"github.com/geovantage/lead-intake/internal/leads"
	"github.com/geovantage/lead-intake/pkg/logging"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	StatsHandler       *analytics.StatsHandler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	IPRateLimiter      *httpmiddleware.RateLimiter

	// TrustProxyHeaders enables chi's RealIP. Without it the cooldown and the
	// per-IP limiter key on the connection's peer address.
	TrustProxyHeaders bool

	// HealthChecks are probed by GET /health, keyed by dependency name.
	HealthChecks map[string]HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthHandler(cfg.HealthChecks))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/leads", func(leadsRouter chi.Router) {
		leadsRouter.Get("/options", cfg.LeadsHandler.GetOptions)
		leadsRouter.Group(func(submit chi.Router) {
			if cfg.IPRateLimiter != nil {
				submit.Use(httpmiddleware.RateLimit(cfg.IPRateLimiter))
			}
			submit.Use(requireJSON)
			submit.Post("/contact", cfg.LeadsHandler.SubmitContact)
		})
	})

	if cfg.StatsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/leads/stats", cfg.StatsHandler.GetStats)
		})
	}

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := map[string]any{"status": "ok"}
		failed := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		status := http.StatusOK
		if len(failed) > 0 {
			status = http.StatusServiceUnavailable
			resp["status"] = "degraded"
			resp["failed"] = failed
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
