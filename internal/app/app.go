package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/utafrali/EcommerceGo/services/review/internal/config"
	"github.com/utafrali/EcommerceGo/services/review/internal/event"
	handler "github.com/utafrali/EcommerceGo/services/review/internal/handler/http"
	"github.com/utafrali/EcommerceGo/services/review/internal/repository"
	"github.com/utafrali/EcommerceGo/services/review/internal/repository/memory"
	"github.com/utafrali/EcommerceGo/services/review/internal/repository/postgres"
	"github.com/utafrali/EcommerceGo/services/review/internal/service"
	"github.com/utafrali/EcommerceGo/services/review/migrations"
	"github.com/utafrali/EcommerceGo/services/review/pkg/database"
	"github.com/utafrali/EcommerceGo/services/review/pkg/health"
	pkgkafka "github.com/utafrali/EcommerceGo/services/review/pkg/kafka"
	"github.com/utafrali/EcommerceGo/services/review/pkg/middleware"
	"github.com/utafrali/EcommerceGo/services/review/pkg/tracing"
)

// ServiceName identifies the review service in logs, metrics and traces.
const ServiceName = "review-service"

// App wires together all dependencies and runs the review service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()

	repo, err := a.newRepository(ctx, healthHandler)
	if err != nil {
		a.closeResources(context.Background())
		return nil, err
	}

	// Event publishing is optional. The interface stays nil when disabled.
	var publisher service.EventPublisher
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(a.producer, logger)
		healthHandler.Register("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	reviewService := service.NewReviewService(repo, publisher, logger)

	router := handler.NewRouter(reviewService, healthHandler, handler.RouterConfig{
		ServiceName: ServiceName,
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
		PprofCIDRs: cfg.PprofAllowedCIDRs,
	}, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// newRepository builds the store selected by REVIEW_STORE and registers its
// readiness check.
func (a *App) newRepository(ctx context.Context, healthHandler *health.Handler) (repository.ReviewRepository, error) {
	if a.cfg.Store == config.StoreMemory {
		a.logger.Warn("using in-memory review store; data is lost on restart")
		return memory.NewReviewRepository(), nil
	}

	pgCfg := a.cfg.PostgresConfig()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", a.cfg.PostgresHost),
		slog.Int("port", a.cfg.PostgresPort),
		slog.String("database", a.cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if err := database.RegisterPoolMetrics(pool, ServiceName); err != nil {
		a.logger.Warn("failed to register pool metrics", slog.String("error", err.Error()))
	}
	database.SetSlowQueryLogging(a.cfg.SlowQueryThreshold(), a.logger)

	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	return postgres.NewReviewRepository(pool), nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeResources(context.Background())
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources(shutdownCtx)

	a.logger.Info("application shutdown complete")
	return nil
}

// closeResources releases the producer, the pool and the tracer provider,
// skipping any that were never created.
func (a *App) closeResources(ctx context.Context) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
