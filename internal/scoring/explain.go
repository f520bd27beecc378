package scoring

import (
	"strconv"
	"strings"
)

// Qualification buckets a BELLS score for display.
func Qualification(bells float64) string {
	switch {
	case bells >= 0.9:
		return "Excellent"
	case bells >= 0.8:
		return "Very Good"
	case bells >= 0.7:
		return "Good"
	case bells >= 0.6:
		return "Fair"
	default:
		return "Basic"
	}
}

// Explain renders the rationale for the top candidate, echoing the submitted
// preferences. A nil top (empty catalog) still renders the requirements.
func Explain(prefs Preferences, top *ScoredCandidate) string {
	var b strings.Builder

	b.WriteString("Analysis based on your requirements\n\n")
	b.WriteString("Your requirements:\n")
	line(&b, "System type", labelOr(prefs.SystemType.Label(), prefs.SystemType))
	line(&b, "RAG integration", labelOr(prefs.RAGEnabled.Label(), prefs.RAGEnabled))
	line(&b, "Request volume", labelOr(prefs.RequestVolume.Label(), prefs.RequestVolume))
	line(&b, "Risk level", labelOr(prefs.RiskLevel.Label(), prefs.RiskLevel))
	line(&b, "Use cases", useCases(prefs))

	if top == nil {
		b.WriteString("\nNo safeguards are available to recommend.\n")
		return b.String()
	}

	name := top.Safeguard.Name
	if name == "" {
		name = "unnamed safeguard"
	}
	bells := top.Safeguard.BELLSScore

	b.WriteString("\nWhy " + name + "?\n")
	line(&b, "BELLS score", strconv.FormatFloat(bells, 'f', -1, 64)+" ("+Qualification(bells)+")")
	line(&b, "Performance rating", "handles "+labelOr(prefs.RequestVolume.Label(), prefs.RequestVolume)+" volume efficiently")
	line(&b, "Risk protection", "suitable for "+labelOr(prefs.RiskLevel.Label(), prefs.RiskLevel)+" risk environments")
	if prefs.RAGEnabled == RAGYes {
		line(&b, "RAG compatible", "integrates with retrieval-augmented generation pipelines")
	}
	return b.String()
}

func line(b *strings.Builder, key, value string) {
	b.WriteString("- ")
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}

func useCases(prefs Preferences) string {
	its := prefs.uniqueInteractions()
	if len(its) == 0 {
		return "none selected"
	}
	labels := make([]string, len(its))
	for i, it := range its {
		labels[i] = it.Label()
	}
	return strings.Join(labels, ", ")
}

func labelOr[T ~string](label string, v T) string {
	if v == "" {
		return "not specified"
	}
	return label
}
