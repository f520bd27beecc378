package api

import (
	"net/http"
	"time"
)

type AdminHandler struct {
	catalog Catalog
}

func NewAdminHandler(c Catalog) *AdminHandler {
	return &AdminHandler{catalog: c}
}

type CatalogStatus struct {
	Safeguards int        `json:"safeguards"`
	LoadedAt   *time.Time `json:"loaded_at,omitempty"`
}

// GET /api/v1/admin/catalog
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := CatalogStatus{Safeguards: len(h.catalog.Snapshot())}
	if t := h.catalog.LoadedAt(); !t.IsZero() {
		st.LoadedAt = &t
	}
	writeJSON(w, http.StatusOK, st)
}

// Reload pulls a fresh catalog from the configured source.
// POST /api/v1/admin/catalog/reload
func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	n, err := h.catalog.Reload(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "reloaded", "safeguards": n})
}
