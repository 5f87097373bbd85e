// internal/bootstrap/store.go
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/warehouse-be/internal/adapters/db"
	redis_a "github.com/ammerola/warehouse-be/internal/adapters/redis_adapter"
	"github.com/ammerola/warehouse-be/internal/adapters/sqlite"
	"github.com/ammerola/warehouse-be/internal/core/ports"
	"github.com/ammerola/warehouse-be/internal/core/services"
	"github.com/ammerola/warehouse-be/internal/pkg/config"
)

// Store is the storage backend selected by configuration
type Store struct {
	Database   ports.Database
	Items      ports.ItemRepository
	Warehouses ports.WarehouseRepository
	Tx         ports.Transactor
}

// OpenStore connects the configured driver. maxConns overrides the
// configured postgres pool size when positive.
func OpenStore(ctx context.Context, cfg *config.Config, maxConns int32, logger *slog.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, maxConns, logger)
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, &sqlite.Config{
			Path:        cfg.SQLite.Path,
			BusyTimeout: cfg.SQLite.BusyTimeout,
			Migrate:     cfg.Database.RunMigrations,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return &Store{
			Database:   store,
			Items:      sqlite.NewItemRepository(store, logger),
			Warehouses: sqlite.NewWarehouseRepository(store, logger),
			Tx:         store,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, maxConns int32, logger *slog.Logger) (*Store, error) {
	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name))

	dbConfig := &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}
	if maxConns > 0 {
		dbConfig.MaxConnections = maxConns
		if dbConfig.MinConnections > maxConns {
			dbConfig.MinConnections = maxConns
		}
	}

	if cfg.Database.RunMigrations {
		err := db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{
			DatabaseURL: cfg.GetDatabaseURL(),
			TableName:   "schema_migrations",
			SchemaName:  "public",
		}, logger, cfg.Database.MigrationRetries)
		if err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	database, err := db.NewDatabase(ctx, dbConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Store{
		Database:   database,
		Items:      db.NewItemRepository(database, logger),
		Warehouses: db.NewWarehouseRepository(database, logger),
		Tx:         database,
	}, nil
}

// OpenCache connects redis when it is enabled. Both results are nil when
// caching is off.
func OpenCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*redis.Client, ports.CacheRepository, error) {
	if !cfg.Redis.Enabled {
		logger.Info("redis cache disabled")
		return nil, nil, nil
	}

	logger.Info("connecting to Redis", slog.String("address", cfg.GetRedisAddress()))
	client, err := redis_a.NewClient(ctx, cfg.GetRedisAddress(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, redis_a.NewCache(client, cfg.Redis.TTL, logger), nil
}

// NewService builds the inventory service over the store, caching through
// cache when it is non-nil.
func NewService(store *Store, cache ports.CacheRepository, cfg *config.Config, logger *slog.Logger) *services.InventoryService {
	var opts []services.Option
	if cache != nil {
		opts = append(opts, services.WithCache(cache, cfg.Redis.TTL))
	}
	return services.NewInventoryService(store.Items, store.Warehouses, store.Tx, logger, opts...)
}
