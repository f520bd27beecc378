package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Aegis/internal/hermes"
	"github.com/MikeSquared-Agency/Aegis/internal/metrics"
	"github.com/MikeSquared-Agency/Aegis/internal/scoring"
)

// maxRecommendationBody caps the preferences payload.
const maxRecommendationBody = 64 << 10

type RecommendationsHandler struct {
	catalog Catalog
	scorer  *scoring.Scorer
	hermes  hermes.Client
	topN    int
	logger  *slog.Logger
}

func NewRecommendationsHandler(c Catalog, sc *scoring.Scorer, h hermes.Client, topN int, logger *slog.Logger) *RecommendationsHandler {
	return &RecommendationsHandler{catalog: c, scorer: sc, hermes: h, topN: topN, logger: logger}
}

// RecommendationRequest is the form submission: preferences in any accepted
// spelling plus an optional result count.
type RecommendationRequest struct {
	scoring.RawPreferences
	TopN int `json:"top_n,omitempty"`
}

// Create scores the current catalog against the submitted preferences.
// POST /api/v1/recommendations
func (h *RecommendationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecommendationBody)).Decode(&req); err != nil {
		metrics.RecommendationsTotal.WithLabelValues(metrics.StatusInvalid).Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TopN < 0 {
		metrics.RecommendationsTotal.WithLabelValues(metrics.StatusInvalid).Inc()
		writeError(w, http.StatusBadRequest, "top_n must not be negative")
		return
	}

	prefs, err := req.Parse()
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues(metrics.StatusInvalid).Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	topN := req.TopN
	if topN == 0 {
		topN = h.topN
	}

	start := time.Now()
	rec, err := h.scorer.Recommend(h.catalog.Snapshot(), prefs, topN)
	metrics.ObserveScoring(start)
	if err != nil {
		status := http.StatusInternalServerError
		label := metrics.StatusError
		if errors.Is(err, scoring.ErrInvalidPreferences) {
			status, label = http.StatusBadRequest, metrics.StatusInvalid
		}
		metrics.RecommendationsTotal.WithLabelValues(label).Inc()
		writeError(w, status, err.Error())
		return
	}
	metrics.RecommendationsTotal.WithLabelValues(metrics.StatusOK).Inc()

	if err := h.hermes.Publish(hermes.SubjectRecommendationGenerated(rec.ID.String()), generatedEvent(rec)); err != nil {
		h.logger.Warn("failed to publish recommendation", "recommendation_id", rec.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, rec)
}

func generatedEvent(rec *scoring.Recommendation) hermes.RecommendationGeneratedEvent {
	ev := hermes.RecommendationGeneratedEvent{
		RecommendationID: rec.ID.String(),
		Preferences:      rec.Preferences,
		Top:              make([]string, len(rec.TopRecommendations)),
		ScoreBreakdown:   rec.ScoreBreakdown,
		Candidates:       len(rec.Ranked),
		Timestamp:        rec.GeneratedAt,
	}
	for i, c := range rec.TopRecommendations {
		ev.Top[i] = c.Safeguard.Name
	}
	if len(rec.TopRecommendations) > 0 {
		ev.TopScore = rec.TopRecommendations[0].NormalizedScore
	}
	return ev
}
