// internal/handlers/item.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/core/ports"
	"github.com/ammerola/warehouse-be/internal/pkg/metrics"
)

// ItemHandler handles inventory item requests
type ItemHandler struct {
	responder
	service ports.InventoryService
}

// NewItemHandler creates a new item handler
func NewItemHandler(service ports.InventoryService, m *metrics.Metrics, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		responder: responder{
			logger:  logger.With(slog.String("handler", "item")),
			metrics: m,
		},
		service: service,
	}
}

// Create handles POST /api/item
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var item domain.InventoryItem
	if err := decodeJSON(w, r, &item); err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	created, err := h.service.CreateItem(r.Context(), &item)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "item created", slog.Int("item_id", int(created.ID)))
	h.respondJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/item/{id}
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, item)
}

// List handles GET /api/item?limit=N
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	items, err := h.service.ListItems(r.Context(), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}
	h.respondJSON(w, http.StatusOK, items)
}

// Update handles PUT and PATCH /api/item. Only the non relationship fields
// can change.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var item domain.InventoryItem
	if err := decodeJSON(w, r, &item); err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.UpdateItem(r.Context(), &item)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/item/{id} and returns the deleted item
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	deleted, err := h.service.DeleteItem(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "item deleted", slog.Int("item_id", int(id)))
	h.respondJSON(w, http.StatusOK, deleted)
}
