package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Aegis/internal/scoring"
)

type ExplainHandler struct {
	catalog Catalog
	scorer  *scoring.Scorer
}

func NewExplainHandler(c Catalog, sc *scoring.Scorer) *ExplainHandler {
	return &ExplainHandler{catalog: c, scorer: sc}
}

type ExplainResponse struct {
	Rank        int                     `json:"rank"`
	Candidate   scoring.ScoredCandidate `json:"candidate"`
	Explanation string                  `json:"explanation"`
}

// Explain returns one safeguard's factor breakdown and rank for the posted
// preferences, whether or not it made the top N.
// POST /api/v1/scoring/explain/{name}
func (h *ExplainHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var raw scoring.RawPreferences
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecommendationBody)).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	prefs, err := raw.Parse()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ranked, err := h.scorer.Score(h.catalog.Snapshot(), prefs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := chi.URLParam(r, "name")
	for i := range ranked {
		if !strings.EqualFold(ranked[i].Safeguard.Name, name) {
			continue
		}
		writeJSON(w, http.StatusOK, ExplainResponse{
			Rank:        i + 1,
			Candidate:   ranked[i],
			Explanation: scoring.Explain(prefs, &ranked[i]),
		})
		return
	}
	writeError(w, http.StatusNotFound, "safeguard not found")
}
