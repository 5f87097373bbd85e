// internal/core/ports/cache.go
package ports

import (
	"context"
	"errors"
	"time"
)

// CacheRepository defines the interface for cache operations.
// Get returns an error wrapping ErrCacheMiss for absent keys.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Ping(ctx context.Context) error
}

// ErrCacheMiss is returned by Get and GetBytes when the key is absent
var ErrCacheMiss = errors.New("cache miss")
