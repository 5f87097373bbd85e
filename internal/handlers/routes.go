// internal/handlers/routes.go
package handlers

import "net/http"

// API groups the handlers mounted under /api
type API struct {
	Items      *ItemHandler
	Warehouses *WarehouseHandler
	Exports    *ExportHandler
	Audits     *AuditHandler
}

// Register mounts the API routes on mux. Literal segments such as csv take
// precedence over the {id} wildcard.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/item", a.Items.Create)
	mux.HandleFunc("GET /api/item", a.Items.List)
	mux.HandleFunc("PUT /api/item", a.Items.Update)
	mux.HandleFunc("PATCH /api/item", a.Items.Update)
	mux.HandleFunc("GET /api/item/{id}", a.Items.Get)
	mux.HandleFunc("DELETE /api/item/{id}", a.Items.Delete)

	mux.HandleFunc("POST /api/warehouse", a.Warehouses.Create)
	mux.HandleFunc("GET /api/warehouse", a.Warehouses.List)
	mux.HandleFunc("PUT /api/warehouse", a.Warehouses.Update)
	mux.HandleFunc("GET /api/warehouse/{id}", a.Warehouses.Get)
	mux.HandleFunc("DELETE /api/warehouse/{id}", a.Warehouses.Delete)
	mux.HandleFunc("GET /api/warehouse/{id}/items", a.Warehouses.Items)
	mux.HandleFunc("GET /api/warehouse/{id}/summary", a.Warehouses.Summary)
	mux.HandleFunc("POST /api/warehouse/{id}/add", a.Warehouses.Add)
	mux.HandleFunc("POST /api/warehouse/{id}/remove", a.Warehouses.Remove)

	if a.Exports != nil {
		mux.HandleFunc("GET /api/item/csv", a.Exports.ItemsCSV)
		mux.HandleFunc("GET /api/warehouse/csv", a.Exports.WarehousesCSV)
		mux.HandleFunc("GET /api/export/xlsx", a.Exports.Workbook)
		mux.HandleFunc("POST /api/export/snapshot", a.Exports.CreateSnapshot)
		mux.HandleFunc("GET /api/export/snapshot/{id}", a.Exports.SnapshotStatus)
	}
	if a.Audits != nil {
		mux.HandleFunc("POST /api/audit", a.Audits.Enqueue)
		mux.HandleFunc("GET /api/audit", a.Audits.Last)
	}
}
