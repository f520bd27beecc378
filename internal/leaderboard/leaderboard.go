// Package leaderboard computes the display aggregates of the safeguard
// evaluation dashboard: the BELLS ranking with per-metric highlights, summary
// stats, the false-positive comparison and the harm category heatmap.
package leaderboard

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/Aegis/internal/store"
)

// bestTolerance is how close a value must be to the column best to share
// the highlight.
const bestTolerance = 0.001

// ScoreClass buckets a rate for colouring.
type ScoreClass string

const (
	ClassPoor      ScoreClass = "poor"
	ClassFair      ScoreClass = "fair"
	ClassGood      ScoreClass = "good"
	ClassExcellent ScoreClass = "excellent"
)

// Classify buckets v: poor <0.5, fair <0.7, good <0.9, excellent otherwise.
func Classify(v float64) ScoreClass {
	switch {
	case v >= 0.9:
		return ClassExcellent
	case v >= 0.7:
		return ClassGood
	case v >= 0.5:
		return ClassFair
	default:
		return ClassPoor
	}
}

// Cell is one metric value on a leaderboard row.
type Cell struct {
	Value float64    `json:"value"`
	Class ScoreClass `json:"class"`
	Best  bool       `json:"best"`
}

// Entry is one ranked leaderboard row.
type Entry struct {
	Rank                    int    `json:"rank"`
	Safeguard               string `json:"safeguard"`
	DetectionAdversarial    Cell   `json:"detection_adversarial"`
	DetectionNonAdversarial Cell   `json:"detection_non_adversarial"`
	FalsePositiveRate       Cell   `json:"false_positive_rate"`
	BELLSScore              Cell   `json:"bells_score"`
}

// Rank orders the catalog by BELLS score descending, keeping catalog order on
// ties, and marks the best value in each column. False positive rate is
// classed on 1-FPR and its best is the minimum.
func Rank(catalog []store.Safeguard) []Entry {
	sorted := make([]store.Safeguard, len(catalog))
	copy(sorted, catalog)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BELLSScore > sorted[j].BELLSScore
	})

	bestAdv, bestNonAdv, bestBELLS := math.Inf(-1), math.Inf(-1), math.Inf(-1)
	bestFPR := math.Inf(1)
	for _, sg := range sorted {
		bestAdv = math.Max(bestAdv, sg.DetectionAdversarial)
		bestNonAdv = math.Max(bestNonAdv, sg.DetectionNonAdversarial)
		bestBELLS = math.Max(bestBELLS, sg.BELLSScore)
		bestFPR = math.Min(bestFPR, sg.FalsePositiveRate)
	}

	entries := make([]Entry, len(sorted))
	for i, sg := range sorted {
		entries[i] = Entry{
			Rank:                    i + 1,
			Safeguard:               sg.Name,
			DetectionAdversarial:    cell(sg.DetectionAdversarial, sg.DetectionAdversarial, bestAdv),
			DetectionNonAdversarial: cell(sg.DetectionNonAdversarial, sg.DetectionNonAdversarial, bestNonAdv),
			FalsePositiveRate:       cell(sg.FalsePositiveRate, 1-sg.FalsePositiveRate, bestFPR),
			BELLSScore:              cell(sg.BELLSScore, sg.BELLSScore, bestBELLS),
		}
	}
	return entries
}

func cell(value, classed, best float64) Cell {
	return Cell{
		Value: value,
		Class: Classify(classed),
		Best:  math.Abs(value-best) < bestTolerance,
	}
}

// Stats are the dashboard's headline numbers.
type Stats struct {
	Total        int     `json:"total"`
	AverageBELLS float64 `json:"average_bells"`
	MaxBELLS     float64 `json:"max_bells"`
	Top          string  `json:"top,omitempty"`
}

// Summarize returns headline stats. An empty catalog yields zeros.
func Summarize(catalog []store.Safeguard) Stats {
	st := Stats{Total: len(catalog)}
	if len(catalog) == 0 {
		return st
	}
	var sum float64
	st.MaxBELLS = math.Inf(-1)
	for _, sg := range catalog {
		sum += sg.BELLSScore
		if sg.BELLSScore > st.MaxBELLS {
			st.MaxBELLS = sg.BELLSScore
			st.Top = sg.Name
		}
	}
	st.AverageBELLS = sum / float64(len(catalog))
	return st
}

// FalsePositive is one bar of the false positive comparison.
type FalsePositive struct {
	Safeguard string  `json:"safeguard"`
	Percent   float64 `json:"percent"`
	Label     string  `json:"label"`
}

// FalsePositiveComparison lists false positive rates as percentages capped at
// 100, lowest first.
func FalsePositiveComparison(catalog []store.Safeguard) []FalsePositive {
	out := make([]FalsePositive, len(catalog))
	for i, sg := range catalog {
		pct := math.Min(100, sg.FalsePositiveRate*100)
		out[i] = FalsePositive{
			Safeguard: sg.Name,
			Percent:   pct,
			Label:     strconv.FormatFloat(pct, 'f', 1, 64) + "%",
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percent < out[j].Percent
	})
	return out
}

// DefaultHarmCategories are the harm category columns of the evaluation export.
var DefaultHarmCategories = []string{
	"Physical_harm",
	"Economic_harm",
	"Privacy",
	"Harassment/Discrimination",
	"Disinformation",
	"Expert_advice",
	"Sexual/Adult_content",
	"Malware/Hacking",
	"Fraud/Deception",
	"Government_decision_making",
	"CBRN",
}

// HeatmapCell is one safeguard x harm category value.
type HeatmapCell struct {
	Safeguard     string  `json:"safeguard"`
	Category      string  `json:"category"`
	CategoryLabel string  `json:"category_label"`
	Value         float64 `json:"value"`
	Label         string  `json:"label"`
}

// Heatmap emits one cell per safeguard and category, safeguard-major in
// catalog order. Missing categories read as 0.
func Heatmap(catalog []store.Safeguard, categories []string) []HeatmapCell {
	if len(categories) == 0 {
		categories = DefaultHarmCategories
	}
	out := make([]HeatmapCell, 0, len(catalog)*len(categories))
	for _, sg := range catalog {
		for _, cat := range categories {
			v := sg.Metric(cat)
			out = append(out, HeatmapCell{
				Safeguard:     sg.Name,
				Category:      cat,
				CategoryLabel: CategoryLabel(cat),
				Value:         v,
				Label:         strconv.FormatFloat(v*100, 'f', 0, 64) + "%",
			})
		}
	}
	return out
}

// CategoryLabel turns "Physical_harm" into "Physical Harm".
func CategoryLabel(cat string) string {
	words := strings.Split(cat, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
