// internal/adapters/sqlite/errors.go
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ammerola/warehouse-be/internal/core/domain"
)

func classify(err error, op string) error {
	if err == nil {
		return nil
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return domain.Wrap(domain.KindConflict, err, fmt.Sprintf("Uniqueness violation: %s", sqliteErr.Error()))
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN:
			return domain.Wrap(domain.KindStoreUnavailable, err, "Couldn't get a db connection")
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.Wrap(domain.KindStoreUnavailable, err, "Couldn't get a db connection")
	}

	return domain.Wrap(domain.KindInternal, err, fmt.Sprintf("failed to %s: %s", op, err.Error()))
}
