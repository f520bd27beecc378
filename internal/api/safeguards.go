package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Aegis/internal/store"
)

type SafeguardsHandler struct {
	catalog Catalog
}

func NewSafeguardsHandler(c Catalog) *SafeguardsHandler {
	return &SafeguardsHandler{catalog: c}
}

// List returns the catalog in source order.
// GET /api/v1/safeguards
func (h *SafeguardsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Snapshot())
}

// Get looks a safeguard up by name, case-insensitively.
// GET /api/v1/safeguards/{name}
func (h *SafeguardsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sg, ok := findSafeguard(h.catalog.Snapshot(), chi.URLParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "safeguard not found")
		return
	}
	writeJSON(w, http.StatusOK, sg)
}

func findSafeguard(catalog []store.Safeguard, name string) (store.Safeguard, bool) {
	for _, sg := range catalog {
		if strings.EqualFold(sg.Name, name) {
			return sg, true
		}
	}
	return store.Safeguard{}, false
}
