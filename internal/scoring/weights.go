package scoring

import (
	"fmt"

	"github.com/MikeSquared-Agency/Aegis/internal/config"
)

// WeightSet holds the factor weights. Tables keyed by a preference enum must
// cover every value of that enum; Validate enforces it so a lookup can never
// miss at scoring time.
type WeightSet struct {
	SystemCompatibility float64
	RAGCompatibility    float64
	BELLSScore          float64

	Performance    map[RequestVolume]float64
	Risk           map[RiskLevel]float64
	RiskMultiplier map[RiskLevel]float64
	Interaction    map[InteractionType]float64
}

// DefaultWeights returns the recommendation widget's weight distribution.
func DefaultWeights() WeightSet {
	return WeightSet{
		SystemCompatibility: 3.0,
		RAGCompatibility:    2.0,
		BELLSScore:          2.5,
		Performance: map[RequestVolume]float64{
			VolumeLow:    1,
			VolumeMedium: 2,
			VolumeHigh:   3,
		},
		Risk: map[RiskLevel]float64{
			RiskVeryLow: 1,
			RiskLow:     2,
			RiskMedium:  3,
			RiskHigh:    4,
		},
		RiskMultiplier: map[RiskLevel]float64{
			RiskVeryLow: 1.0,
			RiskLow:     1.2,
			RiskMedium:  1.5,
			RiskHigh:    2.0,
		},
		Interaction: map[InteractionType]float64{
			InteractionGeneralChat:       1,
			InteractionContentGeneration: 1.5,
			InteractionCodeGeneration:    2,
			InteractionDataAnalysis:      1.5,
			InteractionExpertAdvice:      2,
			InteractionCustomerService:   1,
		},
	}
}

// Validate checks every table is complete and no weight is negative.
func (w WeightSet) Validate() error {
	for name, v := range map[string]float64{
		"system_compatibility": w.SystemCompatibility,
		"rag_compatibility":    w.RAGCompatibility,
		"bells_score":          w.BELLSScore,
	} {
		if v < 0 {
			return fmt.Errorf("negative %s weight: %f", name, v)
		}
	}
	if err := checkTable("performance", w.Performance, AllRequestVolumes); err != nil {
		return err
	}
	if err := checkTable("risk", w.Risk, AllRiskLevels); err != nil {
		return err
	}
	if err := checkTable("risk multiplier", w.RiskMultiplier, AllRiskLevels); err != nil {
		return err
	}
	return checkTable("interaction", w.Interaction, AllInteractionTypes)
}

func checkTable[K comparable](name string, table map[K]float64, keys []K) error {
	for _, k := range keys {
		v, ok := table[k]
		if !ok {
			return fmt.Errorf("%s weights missing %v", name, k)
		}
		if v < 0 {
			return fmt.Errorf("negative %s weight for %v: %f", name, k, v)
		}
	}
	if len(table) != len(keys) {
		return fmt.Errorf("%s weights have %d entries, expected %d", name, len(table), len(keys))
	}
	return nil
}

// WeightsFromConfig overlays configured weights on the defaults. Table keys
// accept the same spellings as preference input; unknown keys are an error.
func WeightsFromConfig(cfg config.ScoringWeights) (WeightSet, error) {
	w := DefaultWeights()
	if cfg.SystemCompatibility != nil {
		w.SystemCompatibility = *cfg.SystemCompatibility
	}
	if cfg.RAGCompatibility != nil {
		w.RAGCompatibility = *cfg.RAGCompatibility
	}
	if cfg.BELLSScore != nil {
		w.BELLSScore = *cfg.BELLSScore
	}
	if err := overlay(w.Performance, cfg.Performance, ParseRequestVolume); err != nil {
		return WeightSet{}, fmt.Errorf("performance weights: %w", err)
	}
	if err := overlay(w.Risk, cfg.Risk, ParseRiskLevel); err != nil {
		return WeightSet{}, fmt.Errorf("risk weights: %w", err)
	}
	if err := overlay(w.RiskMultiplier, cfg.RiskMultiplier, ParseRiskLevel); err != nil {
		return WeightSet{}, fmt.Errorf("risk multipliers: %w", err)
	}
	if err := overlay(w.Interaction, cfg.Interaction, ParseInteractionType); err != nil {
		return WeightSet{}, fmt.Errorf("interaction weights: %w", err)
	}
	if err := w.Validate(); err != nil {
		return WeightSet{}, err
	}
	return w, nil
}

func overlay[K comparable](dst map[K]float64, src map[string]float64, parse func(string) (K, error)) error {
	for raw, v := range src {
		k, err := parse(raw)
		if err != nil {
			return err
		}
		dst[k] = v
	}
	return nil
}
