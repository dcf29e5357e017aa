// Package bootstrap assembles the lead intake runtime from configuration so
// the HTTP server and the Lambda adapter share the same wiring.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/geovantage/lead-intake/internal/analytics"
	"github.com/geovantage/lead-intake/internal/api/router"
	appconfig "github.com/geovantage/lead-intake/internal/config"
	"github.com/geovantage/lead-intake/internal/cooldown"
	httpmiddleware "github.com/geovantage/lead-intake/internal/http/middleware"
	"github.com/geovantage/lead-intake/internal/leads"
	"github.com/geovantage/lead-intake/internal/observability/metrics"
	"github.com/geovantage/lead-intake/pkg/logging"
)

// Deps are the process-level collaborators the caller owns.
type Deps struct {
	// Registry receives the lead metrics; nil means a fresh registry.
	Registry *prometheus.Registry
	LoadAWS  AWSLoader
}

// App is a fully wired lead intake service.
type App struct {
	Handler    http.Handler
	Service    *leads.Service
	Dispatcher *analytics.Dispatcher

	closers []func()
}

// Build wires config into a ready App. Callers must run Dispatcher.Run and
// call Close on shutdown.
func Build(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, deps Deps) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	leadMetrics := metrics.NewLeadMetrics(reg)
	awsLoader := &lazyAWS{load: deps.LoadAWS, cfg: cfg}
	app := &App{}
	checks := map[string]router.HealthCheck{}

	var redisClient *redis.Client
	if cfg.CooldownBackend == "redis" {
		redisClient = BuildRedisClient(ctx, cfg, logger, false)
		if redisClient != nil {
			app.closers = append(app.closers, func() { _ = redisClient.Close() })
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}

	store, err := buildCooldownStore(ctx, cfg, redisClient, awsLoader, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	guard := cooldown.NewGuard(store, cfg.LeadCooldown, cooldown.WithLogger(logger))

	transport, err := buildTransport(ctx, cfg, awsLoader, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	sinks := analytics.Fanout{analytics.NewLogSink(logger), analytics.NewMetricsSink(leadMetrics)}
	var statsHandler *analytics.StatsHandler
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		app.closers = append(app.closers, pool.Close)
		checks["postgres"] = pool.Ping
		sinks = append(sinks, analytics.NewPostgresSink(pool))

		sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("bootstrap: open stats db: %w", err)
		}
		app.closers = append(app.closers, func() { _ = sqlDB.Close() })
		statsHandler = analytics.NewStatsHandler(analytics.NewStatsReader(sqlDB), logger)
	}
	app.Dispatcher = analytics.NewDispatcher(sinks, cfg.AnalyticsQueueLen, logger, leadMetrics)

	app.Service = leads.NewService(transport, guard, logger,
		leads.WithAnalytics(app.Dispatcher),
		leads.WithMetrics(leadMetrics),
	)

	app.Handler = router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(app.Service, logger),
		StatsHandler:       statsHandler,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		IPRateLimiter:      httpmiddleware.NewRateLimiter(cfg.IPRateLimitRPS, cfg.IPRateLimitBurst),
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
		HealthChecks:       checks,
	})

	logger.Info("lead intake wired",
		"cooldown_backend", cfg.CooldownBackend,
		"cooldown", cfg.LeadCooldown.String(),
		"delivery_targets", len(transport),
		"analytics_postgres", statsHandler != nil,
	)
	return app, nil
}

// Close stops analytics intake and releases connections in reverse order.
func (a *App) Close() {
	if a.Dispatcher != nil {
		a.Dispatcher.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
