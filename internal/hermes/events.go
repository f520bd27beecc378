package hermes

import "time"

// RecommendationGeneratedEvent summarises one answered preferences submission.
type RecommendationGeneratedEvent struct {
	RecommendationID string             `json:"recommendation_id"`
	Preferences      interface{}        `json:"preferences"`
	Top              []string           `json:"top"`
	TopScore         float64            `json:"top_score"`
	ScoreBreakdown   map[string]float64 `json:"score_breakdown,omitempty"`
	Candidates       int                `json:"candidates"`
	Timestamp        time.Time          `json:"timestamp"`
}

type CatalogReloadedEvent struct {
	Source     string    `json:"source"`
	Safeguards int       `json:"safeguards"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// CatalogInvalidateEvent asks every replica to reload. Reason is informational.
type CatalogInvalidateEvent struct {
	Reason string `json:"reason,omitempty"`
}
