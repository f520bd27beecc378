package scoring

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Aegis/internal/store"
)

// DefaultTopN is how many safeguards a recommendation surfaces.
const DefaultTopN = 3

// ScoredCandidate is one safeguard's score for a single request.
type ScoredCandidate struct {
	Safeguard       store.Safeguard    `json:"safeguard"`
	CatalogIndex    int                `json:"catalog_index"`
	RawScore        float64            `json:"raw_score"`
	NormalizedScore float64            `json:"normalized_score"`
	Factors         []FactorResult     `json:"factors"`
	Breakdown       map[string]float64 `json:"breakdown"` // factor name -> unweighted score
}

func breakdown(factors []FactorResult) map[string]float64 {
	out := make(map[string]float64, len(factors))
	for _, f := range factors {
		out[f.Name] = f.Score
	}
	return out
}

// Recommendation is the answer to one preferences submission.
type Recommendation struct {
	ID                 uuid.UUID          `json:"recommendation_id"`
	GeneratedAt        time.Time          `json:"generated_at"`
	Preferences        Preferences        `json:"preferences"`
	TopRecommendations []ScoredCandidate  `json:"top_recommendations"`
	Ranked             []ScoredCandidate  `json:"ranked"`
	Explanation        string             `json:"explanation"`
	ScoreBreakdown     map[string]float64 `json:"score_breakdown,omitempty"`
}

// Scorer ranks safeguards against user preferences with the 6-factor
// weighted additive model. It holds no per-request state.
type Scorer struct {
	weights WeightSet
	curve   PerformanceCurve
	logger  *slog.Logger
}

// NewScorer validates the weights and curve up front so scoring never hits a
// missing table entry.
func NewScorer(weights WeightSet, curve PerformanceCurve, logger *slog.Logger) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("scoring weights: %w", err)
	}
	if curve != CurveLinear && curve != CurveQuadratic {
		return nil, fmt.Errorf("unknown performance curve %q", curve)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{weights: weights, curve: curve, logger: logger}, nil
}

// Score computes every safeguard's score and returns them best first. Ties
// keep catalog order. When every raw score is zero all normalized scores are 0.
func (s *Scorer) Score(catalog []store.Safeguard, prefs Preferences) ([]ScoredCandidate, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}

	out := make([]ScoredCandidate, len(catalog))
	if len(catalog) == 0 {
		return out, nil
	}

	interactions := prefs.uniqueInteractions()
	var maxRaw float64
	for i := range catalog {
		out[i] = s.scoreCandidate(&candidateContext{
			Safeguard:    &catalog[i],
			Prefs:        prefs,
			Interactions: interactions,
		})
		out[i].CatalogIndex = i
		if out[i].RawScore > maxRaw {
			maxRaw = out[i].RawScore
		}
	}

	for i := range out {
		switch {
		case maxRaw <= 0:
		case out[i].RawScore == maxRaw:
			out[i].NormalizedScore = 100
		default:
			out[i].NormalizedScore = clamp(100*out[i].RawScore/maxRaw, 0, 100)
		}
	}

	// Ordering on the raw score avoids ties introduced by the division.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RawScore > out[j].RawScore
	})

	if maxRaw == 0 {
		s.logger.Debug("all safeguards scored zero", "candidates", len(out))
	}
	return out, nil
}

func (s *Scorer) scoreCandidate(cc *candidateContext) ScoredCandidate {
	factors := []FactorResult{
		s.systemCompatibility(cc),
		s.ragCompatibility(cc),
		s.performance(cc),
		s.riskLevel(cc),
		s.interactionTypes(cc),
		s.bellsScore(cc),
	}

	weights := []float64{
		s.weights.SystemCompatibility,
		s.weights.RAGCompatibility,
		s.weights.Performance[cc.Prefs.RequestVolume],
		s.weights.Risk[cc.Prefs.RiskLevel],
		1, // already weighted per interaction type
		s.weights.BELLSScore,
	}

	var total float64
	for i := range factors {
		factors[i].Weight = weights[i]
		factors[i].Weighted = factors[i].Score * weights[i]
		total += factors[i].Weighted
	}

	return ScoredCandidate{
		Safeguard: *cc.Safeguard,
		RawScore:  total,
		Factors:   factors,
		Breakdown: breakdown(factors),
	}
}

// Recommend scores the catalog and packages the top n with an explanation of
// the winner. n <= 0 means DefaultTopN.
func (s *Scorer) Recommend(catalog []store.Safeguard, prefs Preferences, n int) (*Recommendation, error) {
	ranked, err := s.Score(catalog, prefs)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultTopN
	}
	if n > len(ranked) {
		n = len(ranked)
	}

	rec := &Recommendation{
		ID:                 uuid.New(),
		GeneratedAt:        time.Now().UTC(),
		Preferences:        prefs,
		TopRecommendations: ranked[:n],
		Ranked:             ranked,
	}

	var top *ScoredCandidate
	if len(ranked) > 0 {
		top = &ranked[0]
		rec.ScoreBreakdown = top.Breakdown
	}
	rec.Explanation = Explain(prefs, top)

	s.logger.Debug("recommendation generated",
		"recommendation_id", rec.ID,
		"candidates", len(ranked),
		"top", topName(top),
	)
	return rec, nil
}

func topName(top *ScoredCandidate) string {
	if top == nil {
		return ""
	}
	return top.Safeguard.Name
}
