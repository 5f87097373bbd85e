// internal/adapters/sqlite/store.go
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ammerola/warehouse-be/internal/core/ports"
)

// Config holds the embedded store settings
type Config struct {
	Path        string
	BusyTimeout time.Duration
	Migrate     bool
}

// DSN builds the modernc connection string. Transactions start with
// BEGIN IMMEDIATE so a writer takes the lock before its first read.
func (c *Config) DSN() string {
	timeout := c.BusyTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_txlock=immediate",
		c.Path, timeout.Milliseconds())
}

// Store is the SQLite backed record store
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var (
	_ ports.Database   = (*Store)(nil)
	_ ports.Transactor = (*Store)(nil)
)

// Open opens the database file and applies migrations when configured
func Open(ctx context.Context, cfg *Config, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// a single connection serializes writers the same way the file lock would
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if cfg.Migrate {
		if err := Migrate(ctx, db, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	logger.Info("sqlite store opened", slog.String("path", cfg.Path))
	return New(db, logger), nil
}

// New wraps an already opened database
func New(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite")),
	}
}

func (s *Store) Driver() string {
	return "sqlite"
}

func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close sqlite database", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("sqlite database closed")
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Health(ctx context.Context) map[string]interface{} {
	stats := s.db.Stats()
	health := map[string]interface{}{
		"status":           "healthy",
		"driver":           s.Driver(),
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"wait_count":       stats.WaitCount,
	}
	if err := s.db.PingContext(ctx); err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
	}
	return health
}

type txKey struct{}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *Store) querier(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// WithinTransaction runs fn in a transaction carried by the context
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err, "begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.ErrorContext(ctx, "rollback failed",
				slog.String("error", rbErr.Error()),
				slog.String("cause", err.Error()))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify(err, "commit transaction")
	}
	return nil
}
