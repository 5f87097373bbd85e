// internal/handlers/warehouse.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
	"github.com/ammerola/warehouse-be/internal/pkg/metrics"
)

// WarehouseHandler handles warehouse requests, including moving items in
// and out of a warehouse.
type WarehouseHandler struct {
	responder
	service ports.InventoryService
}

func NewWarehouseHandler(service ports.InventoryService, m *metrics.Metrics, logger *slog.Logger) *WarehouseHandler {
	return &WarehouseHandler{
		responder: responder{
			logger:  logger.With(slog.String("handler", "warehouse")),
			metrics: m,
		},
		service: service,
	}
}

// Create handles POST /api/warehouse
func (h *WarehouseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var warehouse domain.Warehouse
	if err := decodeJSON(w, r, &warehouse); err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	created, err := h.service.CreateWarehouse(r.Context(), &warehouse)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "warehouse created",
		slog.Int("warehouse_id", int(created.ID)),
		slog.Int("items", len(created.Items)))
	h.respondJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/warehouse/{id}
func (h *WarehouseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	warehouse, err := h.service.GetWarehouse(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, warehouse)
}

// List handles GET /api/warehouse?limit=N
func (h *WarehouseHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	warehouses, err := h.service.ListWarehouses(r.Context(), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if warehouses == nil {
		warehouses = []domain.Warehouse{}
	}
	h.respondJSON(w, http.StatusOK, warehouses)
}

// Items handles GET /api/warehouse/{id}/items?limit=N
func (h *WarehouseHandler) Items(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	items, err := h.service.ListItemsForWarehouse(r.Context(), id, limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}
	h.respondJSON(w, http.StatusOK, items)
}

// Add handles POST /api/warehouse/{id}/add?id=I
func (h *WarehouseHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "assigned", h.service.Assign)
}

// Remove handles POST /api/warehouse/{id}/remove?id=I
func (h *WarehouseHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "unassigned", h.service.Unassign)
}

type moveFunc func(ctx context.Context, warehouseID, itemID int32) (*domain.Warehouse, error)

func (h *WarehouseHandler) move(w http.ResponseWriter, r *http.Request, action string, fn moveFunc) {
	warehouseID, err := pathID(r)
	if err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}
	itemID, err := queryID(r)
	if err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	warehouse, err := fn(r.Context(), warehouseID, itemID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "item "+action,
		slog.Int("warehouse_id", int(warehouseID)),
		slog.Int("item_id", int(itemID)))
	h.respondJSON(w, http.StatusOK, warehouse)
}

// Update handles PUT /api/warehouse. The body is read so that malformed
// requests still get a 400, but the update itself is never supported.
func (h *WarehouseHandler) Update(w http.ResponseWriter, r *http.Request) {
	var warehouse domain.Warehouse
	if err := decodeJSON(w, r, &warehouse); err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.UpdateWarehouse(r.Context(), &warehouse)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/warehouse/{id}
func (h *WarehouseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	deleted, err := h.service.DeleteWarehouse(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "warehouse deleted",
		slog.Int("warehouse_id", int(id)),
		slog.Int("released_items", len(deleted.Items)))
	h.respondJSON(w, http.StatusOK, deleted)
}

// Summary handles GET /api/warehouse/{id}/summary
func (h *WarehouseHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	summary, err := h.service.WarehouseSummary(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, summary)
}
