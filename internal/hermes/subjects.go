package hermes

import "time"

const (
	SubjectCatalogReloaded   = "aegis.catalog.reloaded"
	SubjectCatalogInvalidate = "aegis.catalog.invalidate"

	// ConnectionName identifies Aegis in NATS server monitoring.
	ConnectionName = "aegis"

	StreamName   = "AEGIS_EVENTS"
	StreamMaxAge = 30 * 24 * time.Hour
)

// StreamSubjects are the subjects captured by StreamName.
var StreamSubjects = []string{"aegis.catalog.>", "aegis.recommendation.>"}

func SubjectRecommendationGenerated(id string) string {
	return "aegis.recommendation." + id + ".generated"
}
