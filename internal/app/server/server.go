package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"hospitalhr/internal/domain/alerts"
	"hospitalhr/internal/domain/audit"
	"hospitalhr/internal/domain/documents"
	"hospitalhr/internal/domain/identity"
	"hospitalhr/internal/domain/probation"
	"hospitalhr/internal/platform/config"
	"hospitalhr/internal/platform/db"
	"hospitalhr/internal/platform/email"
	"hospitalhr/internal/platform/idempotency"
	"hospitalhr/internal/platform/jobs"
	"hospitalhr/internal/platform/logging"
	"hospitalhr/internal/platform/metrics"
	"hospitalhr/internal/platform/upstream"
	alertshandler "hospitalhr/internal/transport/http/handlers/alerts"
	audithandler "hospitalhr/internal/transport/http/handlers/audit"
	employeeshandler "hospitalhr/internal/transport/http/handlers/employees"
	healthhandler "hospitalhr/internal/transport/http/handlers/health"
	jobshandler "hospitalhr/internal/transport/http/handlers/jobs"
	probationhandler "hospitalhr/internal/transport/http/handlers/probation"
	"hospitalhr/internal/transport/http/middleware"
)

const shutdownTimeout = 15 * time.Second

type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

// New connects to the database, applies migrations when enabled and wires
// every service behind the HTTP router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logging.Init(cfg.Environment, cfg.LogLevel)

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		applied, err := db.Migrate(ctx, pool, cfg.MigrationsDir)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		if len(applied) > 0 {
			slog.Info("migrations applied", "versions", applied)
		}
	}

	collector := metrics.New()
	tokens := upstream.CallerTokens{Secret: cfg.JWTSecret, TTL: cfg.ServiceTokenTTL}
	recordClient := upstream.NewRecordClient(cfg.RecordStoreURL, cfg.UpstreamTimeout, tokens)
	onboardingClient := upstream.NewOnboardingClient(cfg.OnboardingURL, cfg.UpstreamTimeout, tokens)
	userClient := upstream.NewUserClient(cfg.UserMgmtURL, cfg.UpstreamTimeout, tokens)

	profiles := identity.NewService(onboardingClient, userClient, cfg.UserMgmtTenant)
	profiles.Failures = collector
	aggregator := documents.NewAggregator(recordClient, onboardingClient)
	aggregator.Failures = collector
	licenses := alerts.NewService(recordClient, recordClient, cfg.LicenseWarningDays)

	auditService := audit.New(pool)
	probationService := probation.NewService(
		probation.NewStore(pool),
		auditService,
		idempotency.NewStore(pool),
		db.NewTxManager(pool),
	)
	probationService.Employees = profiles

	jobService := jobs.New(pool, probationService, cfg.ProbationSweepInterval, cfg.ProbationDueDays)
	if cfg.EmailEnabled && cfg.ProbationNotifyTo != "" {
		jobService.Notifier = email.NewProbationNotifier(email.New(cfg), cfg.EmailFrom, cfg.ProbationNotifyTo)
	}

	var source healthhandler.MetricsSource
	if cfg.MetricsEnabled {
		source = collector
	}
	router := NewRouter(cfg, collector, healthhandler.NewHandler(pool, source),
		employeeshandler.NewHandler(profiles, aggregator, licenses, recordClient, cfg.DocumentViewBaseURL),
		alertshandler.NewHandler(licenses),
		probationhandler.NewHandler(probationService, auditService),
		jobshandler.NewHandler(jobService),
		audithandler.NewHandler(auditService),
	)

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  router,
		Jobs:    jobService,
		Metrics: collector,
	}, nil
}

// NewRouter mounts the probes at the root and every API handler under
// /api/v1 behind authentication.
func NewRouter(cfg config.Config, collector *metrics.Collector, health RouteRegistrar, handlers ...RouteRegistrar) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	if collector != nil {
		router.Use(middleware.Logger(collector))
	} else {
		router.Use(middleware.Logger(nil))
	}
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	if health != nil {
		health.RegisterRoutes(router)
	}
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		for _, h := range handlers {
			h.RegisterRoutes(r)
		}
	})
	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	if a.Jobs != nil {
		a.Jobs.Start(ctx)
	}

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("hospital hr server listening", "addr", a.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
