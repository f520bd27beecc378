package scoring

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Aegis/internal/store"
)

// Factor names as they appear in score breakdowns.
const (
	FactorSystemCompatibility = "system_compatibility"
	FactorRAGCompatibility    = "rag_compatibility"
	FactorPerformance         = "performance"
	FactorRiskLevel           = "risk_level"
	FactorInteractionTypes    = "interaction_types"
	FactorBELLSScore          = "bells_score"
)

// FactorResult captures one factor's contribution to the total score.
type FactorResult struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
	Reason   string  `json:"reason"`
}

// PerformanceCurve selects how performanceScore responds to High volume.
type PerformanceCurve string

const (
	// CurveLinear passes performanceScore through for every volume.
	CurveLinear PerformanceCurve = "linear"
	// CurveQuadratic squares performanceScore under High volume.
	CurveQuadratic PerformanceCurve = "quadratic"
)

func ParsePerformanceCurve(s string) (PerformanceCurve, error) {
	switch PerformanceCurve(s) {
	case CurveLinear, "":
		return CurveLinear, nil
	case CurveQuadratic:
		return CurveQuadratic, nil
	}
	return "", fmt.Errorf("unknown performance curve %q", s)
}

// candidateContext bundles the inputs for scoring one safeguard.
type candidateContext struct {
	Safeguard    *store.Safeguard
	Prefs        Preferences
	Interactions []InteractionType
}

// --- Factor calculators ---

// systemCompatibility is 1.0 when the deployment model matches the caller's
// access, 0.3 otherwise.
func (s *Scorer) systemCompatibility(cc *candidateContext) FactorResult {
	sg := cc.Safeguard
	switch {
	case cc.Prefs.SystemType == SystemBlackBoxAPI && sg.APIAvailable:
		return FactorResult{Name: FactorSystemCompatibility, Score: 1.0, Reason: "hosted API available"}
	case cc.Prefs.SystemType == SystemDirectAccess && sg.SelfHosted:
		return FactorResult{Name: FactorSystemCompatibility, Score: 1.0, Reason: "self-hosting supported"}
	}
	return FactorResult{Name: FactorSystemCompatibility, Score: 0.3, Reason: "partial compatibility"}
}

func (s *Scorer) ragCompatibility(cc *candidateContext) FactorResult {
	switch {
	case cc.Prefs.RAGEnabled == RAGNo:
		return FactorResult{Name: FactorRAGCompatibility, Score: 1.0, Reason: "RAG not required"}
	case cc.Prefs.RAGEnabled == RAGYes && cc.Safeguard.RAGCompatible:
		return FactorResult{Name: FactorRAGCompatibility, Score: 1.0, Reason: "RAG compatible"}
	}
	return FactorResult{Name: FactorRAGCompatibility, Score: 0.5, Reason: "RAG support unconfirmed"}
}

func (s *Scorer) performance(cc *candidateContext) FactorResult {
	perf := clamp(cc.Safeguard.PerformanceScore, 0, 1)
	if cc.Prefs.RequestVolume == VolumeHigh && s.curve == CurveQuadratic {
		return FactorResult{Name: FactorPerformance, Score: perf * perf, Reason: "squared for high volume"}
	}
	return FactorResult{Name: FactorPerformance, Score: perf, Reason: "from performance score"}
}

func (s *Scorer) riskLevel(cc *candidateContext) FactorResult {
	bells := clamp(cc.Safeguard.BELLSScore, 0, 1)
	mult := s.weights.RiskMultiplier[cc.Prefs.RiskLevel]
	return FactorResult{
		Name:   FactorRiskLevel,
		Score:  bells * mult,
		Reason: fmt.Sprintf("BELLS x %.1f for %s risk", mult, cc.Prefs.RiskLevel.Label()),
	}
}

// interactionTypes averages interaction weight x BELLS over the selected
// interaction types. An empty selection contributes 0.
func (s *Scorer) interactionTypes(cc *candidateContext) FactorResult {
	if len(cc.Interactions) == 0 {
		return FactorResult{Name: FactorInteractionTypes, Score: 0, Reason: "no interaction types selected"}
	}
	bells := clamp(cc.Safeguard.BELLSScore, 0, 1)
	var sum float64
	for _, it := range cc.Interactions {
		sum += s.weights.Interaction[it] * bells
	}
	return FactorResult{
		Name:   FactorInteractionTypes,
		Score:  sum / float64(len(cc.Interactions)),
		Reason: fmt.Sprintf("mean over %d interaction types", len(cc.Interactions)),
	}
}

func (s *Scorer) bellsScore(cc *candidateContext) FactorResult {
	return FactorResult{
		Name:   FactorBELLSScore,
		Score:  clamp(cc.Safeguard.BELLSScore, 0, 1),
		Reason: Qualification(cc.Safeguard.BELLSScore),
	}
}

func clamp(v, min, max float64) float64 {
	if v < min || math.IsNaN(v) {
		return min
	}
	if v > max {
		return max
	}
	return v
}
