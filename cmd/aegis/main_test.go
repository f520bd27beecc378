package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/Aegis/internal/config"
	"github.com/MikeSquared-Agency/Aegis/internal/store"
)

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(config.LoggingConfig{Level: "info", Format: "json"}, &buf).Info("hello", "k", "v")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "hello" || line["k"] != "v" {
		t.Errorf("unexpected log line %v", line)
	}

	buf.Reset()
	newLogger(config.LoggingConfig{Level: "info", Format: "TEXT"}, &buf).Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("expected text log line, got %q", buf.String())
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("level filter not applied: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOpenSource(t *testing.T) {
	cfg := &config.Config{Catalog: config.CatalogConfig{Source: "csv", CSVPath: "results.csv"}}
	src, err := openSource(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*store.CSVSource); !ok {
		t.Errorf("expected CSVSource, got %T", src)
	}

	cfg.Catalog.Source = "s3"
	if _, err := openSource(context.Background(), cfg); err == nil {
		t.Error("expected error for unknown source")
	}
}
