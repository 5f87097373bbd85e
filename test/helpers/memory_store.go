// test/helpers/memory_store.go
package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
)

type memoryTxKey struct{}

// MemoryStore is an in-memory record store with rollback-on-error
// transactions. It implements ItemRepository (via Items), WarehouseRepository
// (via Warehouses) and Transactor.
type MemoryStore struct {
	mu         sync.Mutex
	txMu       sync.Mutex
	items      map[int32]domain.InventoryItem
	warehouses map[int32]domain.Warehouse
	failures   map[string]error
}

var _ ports.Transactor = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:      make(map[int32]domain.InventoryItem),
		warehouses: make(map[int32]domain.Warehouse),
		failures:   make(map[string]error),
	}
}

// Items returns the inventory table view
func (s *MemoryStore) Items() ports.ItemRepository { return memoryItems{s} }

// Warehouses returns the warehouses table view
func (s *MemoryStore) Warehouses() ports.WarehouseRepository { return memoryWarehouses{s} }

// FailOn makes the next call of op (e.g. "warehouses.Update") return err
func (s *MemoryStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// PutItem stores an item without any relationship checks
func (s *MemoryStore) PutItem(item domain.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = copyItem(item)
}

// PutWarehouse stores a warehouse without any relationship checks
func (s *MemoryStore) PutWarehouse(w domain.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[w.ID] = *w.Clone()
}

// Snapshot returns copies of both tables ordered by id
func (s *MemoryStore) Snapshot() ([]domain.InventoryItem, []domain.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedItems(), s.sortedWarehouses()
}

func (s *MemoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memoryTxKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	items := make(map[int32]domain.InventoryItem, len(s.items))
	for k, v := range s.items {
		items[k] = copyItem(v)
	}
	warehouses := make(map[int32]domain.Warehouse, len(s.warehouses))
	for k, v := range s.warehouses {
		warehouses[k] = *v.Clone()
	}
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, memoryTxKey{}, true)); err != nil {
		s.mu.Lock()
		s.items, s.warehouses = items, warehouses
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) fail(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

func (s *MemoryStore) sortedItems() []domain.InventoryItem {
	out := make([]domain.InventoryItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, copyItem(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) sortedWarehouses() []domain.Warehouse {
	out := make([]domain.Warehouse, 0, len(s.warehouses))
	for _, w := range s.warehouses {
		out = append(out, *w.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyItem(item domain.InventoryItem) domain.InventoryItem {
	if item.Warehouse != nil {
		item.Warehouse = domain.WarehouseRef(*item.Warehouse)
	}
	return item
}

func capLimit(n int, limit int64) int {
	if limit < int64(n) {
		return int(limit)
	}
	return n
}

type memoryItems struct{ s *MemoryStore }

func (r memoryItems) Get(_ context.Context, id int32) (*domain.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("items.Get"); err != nil {
		return nil, err
	}
	item, ok := r.s.items[id]
	if !ok {
		return nil, domain.NotFoundf("item %d not found", id)
	}
	out := copyItem(item)
	return &out, nil
}

func (r memoryItems) List(_ context.Context, limit int64) ([]domain.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("items.List"); err != nil {
		return nil, err
	}
	all := r.s.sortedItems()
	return all[:capLimit(len(all), limit)], nil
}

func (r memoryItems) ListByIDs(_ context.Context, limit int64, ids []int32) ([]domain.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("items.ListByIDs"); err != nil {
		return nil, err
	}
	wanted := make(map[int32]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := []domain.InventoryItem{}
	for _, item := range r.s.sortedItems() {
		if wanted[item.ID] {
			out = append(out, item)
		}
	}
	return out[:capLimit(len(out), limit)], nil
}

func (r memoryItems) Insert(_ context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("items.Insert"); err != nil {
		return nil, err
	}
	if _, ok := r.s.items[item.ID]; ok {
		return nil, domain.Conflictf("Uniqueness violation on column id; duplicate key value violates unique constraint \"inventory_pkey\"")
	}
	r.s.items[item.ID] = copyItem(*item)
	out := copyItem(*item)
	return &out, nil
}

func (r memoryItems) Update(_ context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("items.Update"); err != nil {
		return nil, err
	}
	if _, ok := r.s.items[item.ID]; !ok {
		return nil, domain.NotFoundf("item %d not found", item.ID)
	}
	r.s.items[item.ID] = copyItem(*item)
	out := copyItem(*item)
	return &out, nil
}

func (r memoryItems) Delete(_ context.Context, id int32) (*domain.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("items.Delete"); err != nil {
		return nil, err
	}
	item, ok := r.s.items[id]
	if !ok {
		return nil, domain.NotFoundf("item %d not found", id)
	}
	delete(r.s.items, id)
	return &item, nil
}

type memoryWarehouses struct{ s *MemoryStore }

func (r memoryWarehouses) Get(_ context.Context, id int32) (*domain.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("warehouses.Get"); err != nil {
		return nil, err
	}
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, domain.NotFoundf("warehouse %d not found", id)
	}
	return w.Clone(), nil
}

func (r memoryWarehouses) List(_ context.Context, limit int64) ([]domain.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("warehouses.List"); err != nil {
		return nil, err
	}
	all := r.s.sortedWarehouses()
	return all[:capLimit(len(all), limit)], nil
}

func (r memoryWarehouses) ListByIDs(_ context.Context, limit int64, ids []int32) ([]domain.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[int32]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := []domain.Warehouse{}
	for _, w := range r.s.sortedWarehouses() {
		if wanted[w.ID] {
			out = append(out, w)
		}
	}
	return out[:capLimit(len(out), limit)], nil
}

func (r memoryWarehouses) Insert(_ context.Context, w *domain.Warehouse) (*domain.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("warehouses.Insert"); err != nil {
		return nil, err
	}
	if _, ok := r.s.warehouses[w.ID]; ok {
		return nil, domain.Conflictf("Uniqueness violation on column id; duplicate key value violates unique constraint \"warehouses_pkey\"")
	}
	r.s.warehouses[w.ID] = *w.Clone()
	return w.Clone(), nil
}

func (r memoryWarehouses) Update(_ context.Context, w *domain.Warehouse) (*domain.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("warehouses.Update"); err != nil {
		return nil, err
	}
	if _, ok := r.s.warehouses[w.ID]; !ok {
		return nil, domain.NotFoundf("warehouse %d not found", w.ID)
	}
	r.s.warehouses[w.ID] = *w.Clone()
	return w.Clone(), nil
}

func (r memoryWarehouses) Delete(_ context.Context, id int32) (*domain.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("warehouses.Delete"); err != nil {
		return nil, err
	}
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, domain.NotFoundf("warehouse %d not found", id)
	}
	delete(r.s.warehouses, id)
	return &w, nil
}
