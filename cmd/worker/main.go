// cmd/worker/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/warehouse-be/internal/adapters/storage"
	"github.com/ammerola/warehouse-be/internal/bootstrap"
	"github.com/ammerola/warehouse-be/internal/pkg/config"
	"github.com/ammerola/warehouse-be/internal/pkg/logger"
	"github.com/ammerola/warehouse-be/internal/pkg/metrics"
	"github.com/ammerola/warehouse-be/internal/workers"
)

// workerMaxConns caps the postgres pool; the worker runs few concurrent queries
const workerMaxConns = 10

func main() {
	slogger := logger.SetupLogger("info", "json")

	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	log := slogger.Logger
	log.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("store", cfg.Store.Driver),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	ctx := context.Background()

	store, err := bootstrap.OpenStore(ctx, cfg, workerMaxConns, log)
	if err != nil {
		log.Error("failed to initialize store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Database.Close()

	redisClient, cache, err := bootstrap.OpenCache(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize cache", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cache == nil {
		log.Error("the worker records job state in redis; set REDIS_ENABLED=true")
		os.Exit(1)
	}
	defer redisClient.Close()

	objects, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, log)
	if err != nil {
		log.Error("failed to initialize object storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	service := bootstrap.NewService(store, cache, cfg, log)
	m := metrics.New(true)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Asynq.Concurrency,
		Queues:          cfg.Asynq.Queues,
		StrictPriority:  cfg.Asynq.StrictPriority,
		ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
		RetryDelayFunc:  exponentialBackoff,
		ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
		HealthCheckFunc: healthCheck,
		Logger:          logger.NewAsynqLogger(log),
	})

	mux := asynq.NewServeMux()

	exportProcessor := workers.NewExportProcessor(service, objects, cache, m, workers.ExportOptions{
		Prefix:     cfg.Export.Prefix,
		PresignTTL: cfg.Export.PresignTTL,
		JobTTL:     cfg.Export.JobTTL,
	}, log)
	mux.HandleFunc(workers.TypeExportSnapshot, exportProcessor.ProcessExport)

	auditProcessor := workers.NewAuditProcessor(service, cache, m, cfg.Export.AuditTTL, log)
	mux.HandleFunc(workers.TypeAuditRelationships, auditProcessor.RunAudit)

	cleanupProcessor := workers.NewCleanupProcessor(objects, cfg.Export.Prefix, cfg.Export.Retention, log)
	mux.HandleFunc(workers.TypeCleanupExports, cleanupProcessor.CleanupExports)

	scheduler, err := newScheduler(redisOpt, cfg, log)
	if err != nil {
		log.Error("failed to register periodic tasks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.Server.EnableMetrics {
		metricsServer = &http.Server{
			Addr:              cfg.GetServerAddress(),
			Handler:           m.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", slog.String("error", err.Error()))
			}
		}()
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			log.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	if err := scheduler.Start(); err != nil {
		log.Error("failed to start scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues))

	sig := <-shutdown
	log.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	log.Info("worker shutdown complete")
}

// newScheduler registers the periodic audit and export cleanup
func newScheduler(redisOpt asynq.RedisClientOpt, cfg *config.Config, log *slog.Logger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger: logger.NewAsynqLogger(log),
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Error("failed to enqueue periodic task", slog.String("error", err.Error()))
				return
			}
			log.Debug("periodic task enqueued",
				slog.String("type", info.Type),
				slog.String("task_id", info.ID))
		},
	})

	if cfg.Asynq.AuditSchedule != "" {
		task, err := workers.NewAuditTask(time.Time{})
		if err != nil {
			return nil, err
		}
		if _, err := scheduler.Register(cfg.Asynq.AuditSchedule, task, asynq.Queue(workers.QueueLow)); err != nil {
			return nil, err
		}
	}

	if cfg.Asynq.CleanupSchedule != "" && cfg.Export.Retention > 0 {
		if _, err := scheduler.Register(cfg.Asynq.CleanupSchedule, workers.NewCleanupTask(), asynq.Queue(workers.QueueLow)); err != nil {
			return nil, err
		}
	}

	return scheduler, nil
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.String("payload", string(task.Payload())),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}
