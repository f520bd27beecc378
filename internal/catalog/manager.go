// Package catalog keeps the in-memory safeguard snapshot the API scores
// against, refreshing it from a store.Source on a timer or on request.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/Aegis/internal/hermes"
	"github.com/MikeSquared-Agency/Aegis/internal/metrics"
	"github.com/MikeSquared-Agency/Aegis/internal/store"
)

// reloadTimeout bounds reloads triggered by the timer or an invalidate event.
const reloadTimeout = 30 * time.Second

type Manager struct {
	source     store.Source
	sourceName string
	hermes     hermes.Client
	interval   time.Duration
	logger     *slog.Logger

	mu         sync.RWMutex
	safeguards []store.Safeguard
	loadedAt   time.Time

	// serialises Reload so overlapping triggers do not race on the source
	reloadMu sync.Mutex

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New builds a Manager with an empty snapshot. h may be nil; interval <= 0
// disables the refresh loop.
func New(src store.Source, sourceName string, h hermes.Client, interval time.Duration, logger *slog.Logger) *Manager {
	if h == nil {
		h = hermes.NopClient{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		source:     src,
		sourceName: sourceName,
		hermes:     h,
		interval:   interval,
		logger:     logger,
		stopCh:     make(chan struct{}),
	}
}

// Snapshot returns a copy of the current catalog in source order. Callers may
// reorder the slice freely; Metrics maps are shared and must not be written.
func (m *Manager) Snapshot() []store.Safeguard {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]store.Safeguard, len(m.safeguards))
	copy(out, m.safeguards)
	return out
}

// LoadedAt is when the current snapshot was taken; zero before the first load.
func (m *Manager) LoadedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadedAt
}

// Reload replaces the snapshot from the source. On failure the previous
// snapshot stays in place.
func (m *Manager) Reload(ctx context.Context) (int, error) {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	start := time.Now()
	safeguards, err := m.source.LoadSafeguards(ctx)
	if err != nil {
		metrics.CatalogReloads.WithLabelValues(metrics.StatusError).Inc()
		return 0, fmt.Errorf("load catalog from %s: %w", m.sourceName, err)
	}

	m.mu.Lock()
	m.safeguards = safeguards
	m.loadedAt = time.Now().UTC()
	m.mu.Unlock()

	metrics.CatalogReloads.WithLabelValues(metrics.StatusOK).Inc()
	metrics.CatalogSafeguards.Set(float64(len(safeguards)))

	elapsed := time.Since(start)
	m.logger.Info("catalog reloaded", "source", m.sourceName, "safeguards", len(safeguards), "duration_ms", elapsed.Milliseconds())

	if err := m.hermes.Publish(hermes.SubjectCatalogReloaded, hermes.CatalogReloadedEvent{
		Source:     m.sourceName,
		Safeguards: len(safeguards),
		DurationMs: elapsed.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}); err != nil {
		m.logger.Warn("failed to publish catalog reload", "error", err)
	}
	return len(safeguards), nil
}

// Start subscribes to invalidation events and, when an interval is set, runs
// the refresh loop until ctx is done or Stop is called.
func (m *Manager) Start(ctx context.Context) {
	if err := hermes.OnCatalogInvalidate(m.hermes, m.logger, func(ev hermes.CatalogInvalidateEvent) {
		m.logger.Info("catalog invalidated", "reason", ev.Reason)
		m.reloadBounded(ctx)
	}); err != nil {
		m.logger.Warn("failed to subscribe to catalog invalidation", "error", err)
	}

	if m.interval <= 0 {
		return
	}
	m.wg.Add(1)
	go m.refreshLoop(ctx)
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}

func (m *Manager) refreshLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.reloadBounded(ctx)
		}
	}
}

func (m *Manager) reloadBounded(ctx context.Context) {
	select {
	case <-m.stopCh:
		return
	default:
	}
	rctx, cancel := context.WithTimeout(ctx, reloadTimeout)
	defer cancel()
	if _, err := m.Reload(rctx); err != nil {
		m.logger.Error("catalog reload failed", "error", err)
	}
}
