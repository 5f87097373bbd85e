// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/warehouse-be/internal/bootstrap"
	"github.com/ammerola/warehouse-be/internal/handlers"
	"github.com/ammerola/warehouse-be/internal/handlers/middleware"
	"github.com/ammerola/warehouse-be/internal/pkg/config"
	"github.com/ammerola/warehouse-be/internal/pkg/logger"
	"github.com/ammerola/warehouse-be/internal/pkg/metrics"
	"github.com/ammerola/warehouse-be/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	slogger := logger.SetupLogger("debug", "json")

	slogger.Info("starting warehouse inventory api",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("store", cfg.Store.Driver),
		slog.String("log_level", cfg.App.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	server := setupHTTPServer(ctx, cfg, deps, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server", slog.String("address", cfg.GetServerAddress()))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case <-ctx.Done():
		slogger.Info("shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	store          *bootstrap.Store
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	metrics        *metrics.Metrics
	api            *handlers.API
	health         *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.store != nil {
		d.store.Database.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, l *logger.Logger) (*dependencies, error) {
	slogger := l.Logger
	deps := &dependencies{metrics: metrics.New(true)}

	store, err := bootstrap.OpenStore(ctx, cfg, 0, slogger)
	if err != nil {
		return nil, err
	}
	deps.store = store

	redisClient, cache, err := bootstrap.OpenCache(ctx, cfg, slogger)
	if err != nil {
		deps.cleanup()
		return nil, err
	}
	deps.redisClient = redisClient

	service := bootstrap.NewService(store, cache, cfg, slogger)

	deps.api = &handlers.API{
		Items:      handlers.NewItemHandler(service, deps.metrics, slogger),
		Warehouses: handlers.NewWarehouseHandler(service, deps.metrics, slogger),
	}

	// Snapshots and audits keep their state in redis, so they need the cache
	if cache != nil {
		slogger.Info("initializing Asynq client", slog.String("redis_addr", cfg.Asynq.RedisAddr))
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Asynq.RedisAddr,
			Password: cfg.Asynq.RedisPassword,
			DB:       cfg.Asynq.RedisDB,
		}
		deps.asynqClient = asynq.NewClient(redisOpt)
		deps.asynqInspector = asynq.NewInspector(redisOpt)

		tasks := workers.NewTaskClient(deps.asynqClient, slogger)
		deps.api.Exports = handlers.NewExportHandler(service, cache, tasks, deps.metrics, slogger, handlers.ExportOptions{
			CacheTTL: cfg.Export.CacheTTL,
			JobTTL:   cfg.Export.JobTTL,
		})
		deps.api.Audits = handlers.NewAuditHandler(cache, tasks, deps.metrics, slogger)
	} else {
		deps.api.Exports = handlers.NewExportHandler(service, nil, nil, deps.metrics, slogger, handlers.ExportOptions{})
	}

	var inspector handlers.QueueInspector
	if deps.asynqInspector != nil {
		inspector = deps.asynqInspector
	}
	deps.health = handlers.NewHealthHandler(store.Database, redisClient, inspector, handlers.BuildInfo{
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	}, slogger)

	slogger.Info("all dependencies initialized successfully")
	return deps, nil
}

func setupHTTPServer(ctx context.Context, cfg *config.Config, deps *dependencies, l *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	registerRoutes(mux, deps, cfg)

	// Apply middleware in reverse order (innermost first). Metrics reads the
	// matched pattern, so it must sit directly on the mux.
	var handler http.Handler = mux
	handler = middleware.Metrics(deps.metrics)(handler)

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(ctx, cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if cfg.App.Environment != "test" {
		handler = middleware.Recovery(l.Logger)(handler)
		handler = middleware.Logger(l)(handler)
		handler = middleware.RequestID(handler)
	}

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(l.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies, cfg *config.Config) {
	if cfg.Server.EnableHealthCheck {
		mux.HandleFunc("GET /health", deps.health.Health)
		mux.HandleFunc("GET /ready", deps.health.Readiness)
	}

	if cfg.Server.EnableMetrics {
		mux.Handle("GET /metrics", deps.metrics.Handler())
	}

	deps.api.Register(mux)
}
