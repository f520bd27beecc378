package store

import (
	"context"
	"math"
	"strings"
)

// Safeguard is one evaluated guardrail system. All rates are in [0,1].
type Safeguard struct {
	Name        string `json:"safeguard"`
	Description string `json:"description,omitempty"`

	BELLSScore       float64 `json:"bells_score"`
	PerformanceScore float64 `json:"performance_score"`

	// Deployment
	APIAvailable  bool `json:"api_available"`
	SelfHosted    bool `json:"self_hosted"`
	RAGCompatible bool `json:"rag_compatible"`

	// Detection
	DetectionAdversarial    float64 `json:"detection_adversarial"`
	DetectionNonAdversarial float64 `json:"detection_non_adversarial"`
	FalsePositiveRate       float64 `json:"false_positive_rate"`

	// Metrics holds every other numeric column (harm categories, per-source
	// detection rates) keyed by normalized column name.
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// Metric returns a named metric such as a harm category's prevention rate.
// Absent metrics read as 0.
func (s Safeguard) Metric(name string) float64 {
	return s.Metrics[NormalizeColumn(name)]
}

// Source loads the safeguard catalog in its published order.
type Source interface {
	LoadSafeguards(ctx context.Context) ([]Safeguard, error)
	Close() error
}

// NormalizeColumn folds case and the separators the evaluation exports mix
// freely ("harmful_non-adversarial", "BELLS_score", "Physical harm").
func NormalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "_", " ", "_", "/", "_").Replace(name)
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
