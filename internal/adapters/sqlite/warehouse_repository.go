// internal/adapters/sqlite/warehouse_repository.go
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
)

const warehouseReturning = "RETURNING id, items"

// warehouseRepository stores the item list as a JSON array
type warehouseRepository struct {
	store  *Store
	logger *slog.Logger
}

// NewWarehouseRepository creates the warehouses table repository
func NewWarehouseRepository(store *Store, logger *slog.Logger) ports.WarehouseRepository {
	return &warehouseRepository{
		store:  store,
		logger: logger.With(slog.String("repository", "warehouses")),
	}
}

func scanWarehouse(row rowScanner) (*domain.Warehouse, error) {
	var (
		w     domain.Warehouse
		items string
	)
	if err := row.Scan(&w.ID, &items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &w.Items); err != nil {
		return nil, domain.Wrap(domain.KindSerialization, err,
			fmt.Sprintf("Warehouse id %d has an unreadable item list", w.ID))
	}
	if w.Items == nil {
		w.Items = []int32{}
	}
	return &w, nil
}

func encodeItems(items []int32) (string, error) {
	if items == nil {
		items = []int32{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", domain.Wrap(domain.KindSerialization, err, "failed to encode warehouse items")
	}
	return string(data), nil
}

func (r *warehouseRepository) queryMany(ctx context.Context, qb squirrel.SelectBuilder, op string) ([]domain.Warehouse, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.store.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, op)
	}
	defer rows.Close()

	warehouses := []domain.Warehouse{}
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			if domain.KindOf(err) == domain.KindSerialization {
				return nil, err
			}
			return nil, classify(err, op)
		}
		warehouses = append(warehouses, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, op)
	}
	return warehouses, nil
}

func (r *warehouseRepository) single(ctx context.Context, query string, args []interface{}, id int32, op string) (*domain.Warehouse, error) {
	w, err := scanWarehouse(r.store.querier(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("Warehouse id %d does not exist", id)
		}
		if domain.KindOf(err) == domain.KindSerialization {
			return nil, err
		}
		return nil, classify(err, op)
	}
	return w, nil
}

func (r *warehouseRepository) Get(ctx context.Context, id int32) (*domain.Warehouse, error) {
	query, args, err := squirrel.Select("id", "items").
		From("warehouses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return r.single(ctx, query, args, id, "get warehouse")
}

func (r *warehouseRepository) List(ctx context.Context, limit int64) ([]domain.Warehouse, error) {
	return r.queryMany(ctx, squirrel.Select("id", "items").
		From("warehouses").
		OrderBy("id").
		Limit(uint64(limit)), "list warehouses")
}

func (r *warehouseRepository) ListByIDs(ctx context.Context, limit int64, ids []int32) ([]domain.Warehouse, error) {
	if len(ids) == 0 || limit == 0 {
		return []domain.Warehouse{}, nil
	}
	return r.queryMany(ctx, squirrel.Select("id", "items").
		From("warehouses").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		Limit(uint64(limit)), "list warehouses by id")
}

func (r *warehouseRepository) Insert(ctx context.Context, w *domain.Warehouse) (*domain.Warehouse, error) {
	items, err := encodeItems(w.Items)
	if err != nil {
		return nil, err
	}

	query, args, err := squirrel.Insert("warehouses").
		Columns("id", "items").
		Values(w.ID, items).
		Suffix(warehouseReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	created, err := r.single(ctx, query, args, w.ID, "insert warehouse")
	if err != nil {
		return nil, err
	}
	r.logger.DebugContext(ctx, "warehouse inserted", slog.Int("warehouse_id", int(w.ID)))
	return created, nil
}

func (r *warehouseRepository) Update(ctx context.Context, w *domain.Warehouse) (*domain.Warehouse, error) {
	items, err := encodeItems(w.Items)
	if err != nil {
		return nil, err
	}

	query, args, err := squirrel.Update("warehouses").
		Set("items", items).
		Where(squirrel.Eq{"id": w.ID}).
		Suffix(warehouseReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	updated, err := r.single(ctx, query, args, w.ID, "update warehouse")
	if err != nil {
		return nil, err
	}
	r.logger.DebugContext(ctx, "warehouse updated",
		slog.Int("warehouse_id", int(w.ID)),
		slog.Int("item_count", len(updated.Items)))
	return updated, nil
}

func (r *warehouseRepository) Delete(ctx context.Context, id int32) (*domain.Warehouse, error) {
	query, args, err := squirrel.Delete("warehouses").
		Where(squirrel.Eq{"id": id}).
		Suffix(warehouseReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	deleted, err := r.single(ctx, query, args, id, "delete warehouse")
	if err != nil {
		return nil, err
	}
	r.logger.DebugContext(ctx, "warehouse deleted", slog.Int("warehouse_id", int(id)))
	return deleted, nil
}
