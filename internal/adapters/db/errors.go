// internal/adapters/db/errors.go
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ammerola/warehouse-be/internal/core/domain"
)

const (
	uniqueViolation      = "23505"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// classify turns a pgx error into a domain error. op names the failed step
// for the internal error message.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolation {
			if pgErr.ColumnName != "" {
				return domain.Wrap(domain.KindConflict, err,
					fmt.Sprintf("Uniqueness violation on column %s; %s", pgErr.ColumnName, pgErr.Message))
			}
			return domain.Wrap(domain.KindConflict, err,
				fmt.Sprintf("Uniqueness violation: %s", pgErr.Message))
		}
		if pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected {
			// concurrent relationship changes on the same rows; the caller may retry
			return domain.Wrap(domain.KindStoreUnavailable, err,
				fmt.Sprintf("Concurrent update, could not %s; try again", op))
		}
		return domain.Wrap(domain.KindInternal, err, pgErr.Message)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return domain.Wrap(domain.KindStoreUnavailable, err, "Couldn't get a db connection")
	}

	return domain.Wrap(domain.KindInternal, err, fmt.Sprintf("failed to %s: %s", op, err.Error()))
}
