// Package metrics holds the Prometheus collectors Aegis exports on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

var (
	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_recommendations_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"status"},
	)

	ScoringDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aegis_scoring_duration_seconds",
			Help:    "Time spent scoring the catalog for one request",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	CatalogSafeguards = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aegis_catalog_safeguards",
			Help: "Safeguards in the current catalog snapshot",
		},
	)

	CatalogReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_catalog_reloads_total",
			Help: "Catalog reload attempts by outcome",
		},
		[]string{"status"},
	)
)

// Register adds every collector to reg. Call once at startup.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		RecommendationsTotal,
		ScoringDuration,
		CatalogSafeguards,
		CatalogReloads,
	)
}

// ObserveScoring records a scoring run that started at start.
func ObserveScoring(start time.Time) {
	ScoringDuration.Observe(time.Since(start).Seconds())
}
