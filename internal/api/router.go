package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Aegis/internal/hermes"
	"github.com/MikeSquared-Agency/Aegis/internal/scoring"
	"github.com/MikeSquared-Agency/Aegis/internal/store"
)

// Catalog is the read side of catalog.Manager the handlers need.
type Catalog interface {
	Snapshot() []store.Safeguard
	LoadedAt() time.Time
	Reload(ctx context.Context) (int, error)
}

// Options carries the tunables of the public router.
type Options struct {
	TopN               int
	AdminToken         string
	RateLimitPerMinute int
}

func NewRouter(c Catalog, sc *scoring.Scorer, h hermes.Client, opts Options, logger *slog.Logger) http.Handler {
	if h == nil {
		h = hermes.NopClient{}
	}
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 120
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(opts.RateLimitPerMinute))

	safeguards := NewSafeguardsHandler(c)
	board := NewLeaderboardHandler(c)
	recs := NewRecommendationsHandler(c, sc, h, opts.TopN, logger)
	explain := NewExplainHandler(c, sc)
	admin := NewAdminHandler(c)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/safeguards", safeguards.List)
		r.Get("/safeguards/{name}", safeguards.Get)

		r.Get("/leaderboard", board.Ranking)
		r.Get("/leaderboard/stats", board.Stats)
		r.Get("/leaderboard/heatmap", board.Heatmap)
		r.Get("/leaderboard/false-positives", board.FalsePositives)
		r.Get("/leaderboard/frontier", board.Frontier)

		r.Post("/recommendations", recs.Create)
		r.Post("/scoring/explain/{name}", explain.Explain)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(opts.AdminToken))
			r.Get("/admin/catalog", admin.Status)
			r.Post("/admin/catalog/reload", admin.Reload)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
