// internal/adapters/sqlite/item_repository.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
)

var itemColumns = []string{"id", "warehouse", "weight", "value", "transport", "width", "height", "depth"}

const itemReturning = "RETURNING id, warehouse, weight, value, transport, width, height, depth"

type itemRepository struct {
	store  *Store
	logger *slog.Logger
}

// NewItemRepository creates the inventory table repository
func NewItemRepository(store *Store, logger *slog.Logger) ports.ItemRepository {
	return &itemRepository{
		store:  store,
		logger: logger.With(slog.String("repository", "inventory")),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*domain.InventoryItem, error) {
	var (
		item      domain.InventoryItem
		warehouse sql.NullInt32
		transport string
	)
	err := row.Scan(
		&item.ID,
		&warehouse,
		&item.Weight,
		&item.Value,
		&transport,
		&item.Dimensions.Width,
		&item.Dimensions.Height,
		&item.Dimensions.Depth,
	)
	if err != nil {
		return nil, err
	}
	if warehouse.Valid {
		item.Warehouse = domain.WarehouseRef(warehouse.Int32)
	}
	item.Transport = domain.Transport(transport)
	return &item, nil
}

func (r *itemRepository) queryMany(ctx context.Context, qb squirrel.SelectBuilder, op string) ([]domain.InventoryItem, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.store.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, op)
	}
	defer rows.Close()

	items := []domain.InventoryItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, classify(err, op)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, op)
	}
	return items, nil
}

func (r *itemRepository) Get(ctx context.Context, id int32) (*domain.InventoryItem, error) {
	query, args, err := squirrel.Select(itemColumns...).
		From("inventory").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	item, err := scanItem(r.store.querier(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("Item id %d does not exist", id)
		}
		return nil, classify(err, "get item")
	}
	return item, nil
}

func (r *itemRepository) List(ctx context.Context, limit int64) ([]domain.InventoryItem, error) {
	return r.queryMany(ctx, squirrel.Select(itemColumns...).
		From("inventory").
		OrderBy("id").
		Limit(uint64(limit)), "list items")
}

func (r *itemRepository) ListByIDs(ctx context.Context, limit int64, ids []int32) ([]domain.InventoryItem, error) {
	if len(ids) == 0 || limit == 0 {
		return []domain.InventoryItem{}, nil
	}
	return r.queryMany(ctx, squirrel.Select(itemColumns...).
		From("inventory").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		Limit(uint64(limit)), "list items by id")
}

func (r *itemRepository) Insert(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	query, args, err := squirrel.Insert("inventory").
		Columns(itemColumns...).
		Values(item.ID, item.Warehouse, item.Weight, item.Value, string(item.Transport),
			item.Dimensions.Width, item.Dimensions.Height, item.Dimensions.Depth).
		Suffix(itemReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	created, err := scanItem(r.store.querier(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, classify(err, "insert item")
	}

	r.logger.DebugContext(ctx, "item inserted", slog.Int("item_id", int(created.ID)))
	return created, nil
}

func (r *itemRepository) Update(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	query, args, err := squirrel.Update("inventory").
		Set("warehouse", item.Warehouse).
		Set("weight", item.Weight).
		Set("value", item.Value).
		Set("transport", string(item.Transport)).
		Set("width", item.Dimensions.Width).
		Set("height", item.Dimensions.Height).
		Set("depth", item.Dimensions.Depth).
		Where(squirrel.Eq{"id": item.ID}).
		Suffix(itemReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	updated, err := scanItem(r.store.querier(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("Item id %d does not exist", item.ID)
		}
		return nil, classify(err, "update item")
	}

	r.logger.DebugContext(ctx, "item updated", slog.Int("item_id", int(item.ID)))
	return updated, nil
}

func (r *itemRepository) Delete(ctx context.Context, id int32) (*domain.InventoryItem, error) {
	query, args, err := squirrel.Delete("inventory").
		Where(squirrel.Eq{"id": id}).
		Suffix(itemReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	deleted, err := scanItem(r.store.querier(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("Item id %d does not exist", id)
		}
		return nil, classify(err, "delete item")
	}

	r.logger.DebugContext(ctx, "item deleted", slog.Int("item_id", int(id)))
	return deleted, nil
}
