package api

import (
	"net/http"
	"strings"

	"github.com/MikeSquared-Agency/Aegis/internal/leaderboard"
)

type LeaderboardHandler struct {
	catalog Catalog
}

func NewLeaderboardHandler(c Catalog) *LeaderboardHandler {
	return &LeaderboardHandler{catalog: c}
}

// GET /api/v1/leaderboard
func (h *LeaderboardHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, leaderboard.Rank(h.catalog.Snapshot()))
}

// GET /api/v1/leaderboard/stats
func (h *LeaderboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, leaderboard.Summarize(h.catalog.Snapshot()))
}

type HeatmapResponse struct {
	Categories []string                  `json:"categories"`
	Cells      []leaderboard.HeatmapCell `json:"cells"`
}

// Heatmap accepts an optional comma separated ?categories= list; the
// evaluation's harm categories are used otherwise.
// GET /api/v1/leaderboard/heatmap
func (h *LeaderboardHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	categories := leaderboard.DefaultHarmCategories
	if q := r.URL.Query().Get("categories"); q != "" {
		categories = nil
		for _, c := range strings.Split(q, ",") {
			if c = strings.TrimSpace(c); c != "" {
				categories = append(categories, c)
			}
		}
		if len(categories) == 0 {
			writeError(w, http.StatusBadRequest, "categories must name at least one category")
			return
		}
	}
	writeJSON(w, http.StatusOK, HeatmapResponse{
		Categories: categories,
		Cells:      leaderboard.Heatmap(h.catalog.Snapshot(), categories),
	})
}

// GET /api/v1/leaderboard/false-positives
func (h *LeaderboardHandler) FalsePositives(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, leaderboard.FalsePositiveComparison(h.catalog.Snapshot()))
}

// GET /api/v1/leaderboard/frontier
func (h *LeaderboardHandler) Frontier(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, leaderboard.Frontier(h.catalog.Snapshot()))
}
