// internal/adapters/db/warehouse_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
)

// warehouseRepository implements ports.WarehouseRepository. The items
// column is an int[] rewritten as a whole on update.
type warehouseRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewWarehouseRepository creates a new warehouses table repository
func NewWarehouseRepository(db *Database, logger *slog.Logger) ports.WarehouseRepository {
	return &warehouseRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "warehouses")),
	}
}

func scanWarehouse(row pgx.Row) (*domain.Warehouse, error) {
	var w domain.Warehouse
	if err := row.Scan(&w.ID, &w.Items); err != nil {
		return nil, err
	}
	if w.Items == nil {
		w.Items = []int32{}
	}
	return &w, nil
}

func scanWarehouseRows(rows pgx.Rows) (*domain.Warehouse, error) {
	return scanWarehouse(rows)
}

func (r *warehouseRepository) Get(ctx context.Context, id int32) (*domain.Warehouse, error) {
	qb := squirrel.Select("id", "items").
		From("warehouses").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)
	if inTransaction(ctx) {
		qb = qb.Suffix("FOR UPDATE")
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	w, err := scanWarehouse(r.db.querier(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("Warehouse id %d does not exist", id)
		}
		return nil, classify(err, "get warehouse")
	}
	return w, nil
}

func (r *warehouseRepository) List(ctx context.Context, limit int64) ([]domain.Warehouse, error) {
	query, args, err := squirrel.Select("id", "items").
		From("warehouses").
		OrderBy("id").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "list warehouses")
	}
	warehouses, err := ScanMany(rows, scanWarehouseRows)
	if err != nil {
		return nil, classify(err, "scan warehouses")
	}
	return warehouses, nil
}

func (r *warehouseRepository) ListByIDs(ctx context.Context, limit int64, ids []int32) ([]domain.Warehouse, error) {
	if len(ids) == 0 || limit == 0 {
		return []domain.Warehouse{}, nil
	}

	query, args, err := squirrel.Select("id", "items").
		From("warehouses").
		Where("id = ANY(?)", ids).
		OrderBy("id").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "list warehouses by id")
	}
	warehouses, err := ScanMany(rows, scanWarehouseRows)
	if err != nil {
		return nil, classify(err, "scan warehouses")
	}
	return warehouses, nil
}

func (r *warehouseRepository) Insert(ctx context.Context, w *domain.Warehouse) (*domain.Warehouse, error) {
	items := w.Items
	if items == nil {
		items = []int32{}
	}

	created, err := scanWarehouse(r.db.querier(ctx).QueryRow(ctx,
		`INSERT INTO warehouses (id, items) VALUES ($1, $2) RETURNING id, items`, w.ID, items))
	if err != nil {
		return nil, classify(err, "insert warehouse")
	}

	r.logger.DebugContext(ctx, "warehouse inserted", slog.Int("warehouse_id", int(created.ID)))
	return created, nil
}

func (r *warehouseRepository) Update(ctx context.Context, w *domain.Warehouse) (*domain.Warehouse, error) {
	items := w.Items
	if items == nil {
		items = []int32{}
	}

	updated, err := scanWarehouse(r.db.querier(ctx).QueryRow(ctx,
		`UPDATE warehouses SET items = $2 WHERE id = $1 RETURNING id, items`, w.ID, items))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("Warehouse id %d does not exist", w.ID)
		}
		return nil, classify(err, "update warehouse")
	}

	r.logger.DebugContext(ctx, "warehouse updated",
		slog.Int("warehouse_id", int(w.ID)),
		slog.Int("item_count", len(updated.Items)))
	return updated, nil
}

func (r *warehouseRepository) Delete(ctx context.Context, id int32) (*domain.Warehouse, error) {
	deleted, err := scanWarehouse(r.db.querier(ctx).QueryRow(ctx,
		`DELETE FROM warehouses WHERE id = $1 RETURNING id, items`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("Warehouse id %d does not exist", id)
		}
		return nil, classify(err, "delete warehouse")
	}

	r.logger.DebugContext(ctx, "warehouse deleted", slog.Int("warehouse_id", int(id)))
	return deleted, nil
}
