// internal/core/ports/database.go
package ports

import "context"

// Database is the health surface shared by the store backends
type Database interface {
	Driver() string
	Close()
	Ping(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
}
