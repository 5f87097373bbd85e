// internal/adapters/db/item_repository.go
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

// transport is a postgres enum and dimensions a composite type; both are
// read back as plain columns so no type registration is needed.
var itemColumns = []string{
	"id", "warehouse", "weight", "value", "transport::text",
	"(dimensions).width", "(dimensions).height", "(dimensions).depth",
}

const itemReturning = `RETURNING id, warehouse, weight, value, transport::text,
	(dimensions).width, (dimensions).height, (dimensions).depth`

// itemRepository implements ports.ItemRepository
type itemRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewItemRepository creates a new inventory table repository
func NewItemRepository(db *Database, logger *slog.Logger) ports.ItemRepository {
	return &itemRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "inventory")),
	}
}

func scanItem(row pgx.Row) (*domain.InventoryItem, error) {
	var (
		item      domain.InventoryItem
		transport string
	)
	err := row.Scan(
		&item.ID,
		&item.Warehouse,
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
	item.Transport = domain.Transport(transport)
	return &item, nil
}

func scanItemRows(rows pgx.Rows) (*domain.InventoryItem, error) {
	return scanItem(rows)
}

// Get locks the row when called inside a transaction
func (r *itemRepository) Get(ctx context.Context, id int32) (*domain.InventoryItem, error) {
	qb := squirrel.Select(itemColumns...).
		From("inventory").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)
	if inTransaction(ctx) {
		qb = qb.Suffix("FOR UPDATE")
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	item, err := scanItem(r.db.querier(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("Item id %d does not exist", id)
		}
		return nil, classify(err, "get item")
	}
	return item, nil
}

func (r *itemRepository) List(ctx context.Context, limit int64) ([]domain.InventoryItem, error) {
	query, args, err := squirrel.Select(itemColumns...).
		From("inventory").
		OrderBy("id").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err, "list items")
	}
	items, err := ScanMany(rows, scanItemRows)
	if err != nil {
		return nil, classify(err, "scan items")
	}
	return items, nil
}

func (r *itemRepository) ListByIDs(ctx context.Context, limit int64, ids []int32) ([]domain.InventoryItem, error) {
	if len(ids) == 0 || limit == 0 {
		return []domain.InventoryItem{}, nil
	}

	query, args, err := squirrel.Select(itemColumns...).
		From("inventory").
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
		return nil, classify(err, "list items by id")
	}
	items, err := ScanMany(rows, scanItemRows)
	if err != nil {
		return nil, classify(err, "scan items")
	}
	return items, nil
}

func (r *itemRepository) Insert(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	query := `
		INSERT INTO inventory (id, warehouse, weight, value, transport, dimensions)
		VALUES ($1, $2, $3, $4, $5::transport, ROW($6, $7, $8)::dimensions)
		` + itemReturning

	created, err := scanItem(r.db.querier(ctx).QueryRow(ctx, query,
		item.ID, item.Warehouse, item.Weight, item.Value, string(item.Transport),
		item.Dimensions.Width, item.Dimensions.Height, item.Dimensions.Depth,
	))
	if err != nil {
		return nil, classify(err, "insert item")
	}

	r.logger.DebugContext(ctx, "item inserted", slog.Int("item_id", int(created.ID)))
	return created, nil
}

func (r *itemRepository) Update(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	query := `
		UPDATE inventory SET
			warehouse = $2, weight = $3, value = $4, transport = $5::transport,
			dimensions = ROW($6, $7, $8)::dimensions
		WHERE id = $1
		` + itemReturning

	updated, err := scanItem(r.db.querier(ctx).QueryRow(ctx, query,
		item.ID, item.Warehouse, item.Weight, item.Value, string(item.Transport),
		item.Dimensions.Width, item.Dimensions.Height, item.Dimensions.Depth,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("Item id %d does not exist", item.ID)
		}
		return nil, classify(err, "update item")
	}

	r.logger.DebugContext(ctx, "item updated", slog.Int("item_id", int(item.ID)))
	return updated, nil
}

func (r *itemRepository) Delete(ctx context.Context, id int32) (*domain.InventoryItem, error) {
	query := `DELETE FROM inventory WHERE id = $1 ` + itemReturning

	deleted, err := scanItem(r.db.querier(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("Item id %d does not exist", id)
		}
		return nil, classify(err, "delete item")
	}

	r.logger.DebugContext(ctx, "item deleted", slog.Int("item_id", int(id)))
	return deleted, nil
}
