package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeSquared-Agency/Aegis/internal/api"
	"github.com/MikeSquared-Agency/Aegis/internal/catalog"
	"github.com/MikeSquared-Agency/Aegis/internal/config"
	"github.com/MikeSquared-Agency/Aegis/internal/hermes"
	"github.com/MikeSquared-Agency/Aegis/internal/metrics"
	"github.com/MikeSquared-Agency/Aegis/internal/scoring"
	"github.com/MikeSquared-Agency/Aegis/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.Register(prometheus.DefaultRegisterer)

	// Catalog source
	src, err := openSource(ctx, cfg)
	if err != nil {
		logger.Error("failed to open catalog source", "source", cfg.Catalog.Source, "error", err)
		os.Exit(1)
	}
	defer src.Close()

	// Hermes (optional)
	var hermesClient hermes.Client = hermes.NopClient{}
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	// Scoring
	weights, err := scoring.WeightsFromConfig(cfg.Scoring.Weights)
	if err != nil {
		logger.Error("invalid scoring weights", "error", err)
		os.Exit(1)
	}
	curve, err := scoring.ParsePerformanceCurve(cfg.Scoring.PerformanceCurve)
	if err != nil {
		logger.Error("invalid performance curve", "error", err)
		os.Exit(1)
	}
	scorer, err := scoring.NewScorer(weights, curve, logger)
	if err != nil {
		logger.Error("failed to build scorer", "error", err)
		os.Exit(1)
	}

	// Catalog
	manager := catalog.New(src, cfg.Catalog.Source, hermesClient, cfg.RefreshInterval(), logger)
	if _, err := manager.Reload(ctx); err != nil {
		logger.Error("initial catalog load failed", "error", err)
		os.Exit(1)
	}
	manager.Start(ctx)
	defer manager.Stop()
	logger.Info("catalog manager started", "source", cfg.Catalog.Source, "refresh_interval", cfg.RefreshInterval())

	// API server
	router := api.NewRouter(manager, scorer, hermesClient, api.Options{
		TopN:               cfg.Scoring.TopN,
		AdminToken:         cfg.Server.AdminToken,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	}, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func openSource(ctx context.Context, cfg *config.Config) (store.Source, error) {
	switch cfg.Catalog.Source {
	case "postgres":
		return store.NewPostgresSource(ctx, cfg.Database.URL)
	case "csv":
		return store.NewCSVSource(cfg.Catalog.CSVPath), nil
	}
	return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
}

func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
