package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Aegis/internal/hermes"
	"github.com/MikeSquared-Agency/Aegis/internal/metrics"
	"github.com/MikeSquared-Agency/Aegis/internal/store"
)

type fakeSource struct {
	mu    sync.Mutex
	data  []store.Safeguard
	err   error
	calls int
}

func (f *fakeSource) LoadSafeguards(_ context.Context) ([]store.Safeguard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]store.Safeguard, len(f.data))
	copy(out, f.data)
	return out, nil
}

func (f *fakeSource) Close() error { return nil }

func (f *fakeSource) set(data []store.Safeguard, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data, f.err = data, err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type mockHermes struct {
	mock.Mock
	mu       sync.Mutex
	handlers map[string]func(string, []byte)
}

func newMockHermes() *mockHermes {
	return &mockHermes{handlers: make(map[string]func(string, []byte))}
}

func (m *mockHermes) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *mockHermes) Subscribe(subject string, handler func(string, []byte)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[subject] = handler
	return nil
}

func (m *mockHermes) Close() {}

func (m *mockHermes) deliver(subject string, data []byte) {
	m.mu.Lock()
	h := m.handlers[subject]
	m.mu.Unlock()
	if h != nil {
		h(subject, data)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func twoSafeguards() []store.Safeguard {
	return []store.Safeguard{
		{Name: "Lakera Guard", BELLSScore: 0.91},
		{Name: "LLM Guard", BELLSScore: 0.72},
	}
}

func TestReloadPublishesAndUpdatesSnapshot(t *testing.T) {
	src := &fakeSource{data: twoSafeguards()}
	mh := newMockHermes()
	mh.On("Publish", hermes.SubjectCatalogReloaded, mock.AnythingOfType("hermes.CatalogReloadedEvent")).Return(nil)

	m := New(src, "csv", mh, 0, testLogger())
	assert.Empty(t, m.Snapshot())
	assert.True(t, m.LoadedAt().IsZero())

	okBefore := testutil.ToFloat64(metrics.CatalogReloads.WithLabelValues(metrics.StatusOK))

	n, err := m.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"Lakera Guard", "LLM Guard"}, names(m.Snapshot()))
	assert.False(t, m.LoadedAt().IsZero())
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.CatalogSafeguards))
	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.CatalogReloads.WithLabelValues(metrics.StatusOK)))

	mh.AssertExpectations(t)
	ev := mh.Calls[0].Arguments.Get(1).(hermes.CatalogReloadedEvent)
	assert.Equal(t, "csv", ev.Source)
	assert.Equal(t, 2, ev.Safeguards)
}

func TestReloadFailureKeepsSnapshot(t *testing.T) {
	src := &fakeSource{data: twoSafeguards()}
	mh := newMockHermes()
	mh.On("Publish", mock.Anything, mock.Anything).Return(nil)

	m := New(src, "postgres", mh, 0, testLogger())
	_, err := m.Reload(context.Background())
	require.NoError(t, err)
	loadedAt := m.LoadedAt()

	errBefore := testutil.ToFloat64(metrics.CatalogReloads.WithLabelValues(metrics.StatusError))
	src.set(nil, errors.New("connection refused"))

	_, err = m.Reload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
	assert.Len(t, m.Snapshot(), 2)
	assert.Equal(t, loadedAt, m.LoadedAt())
	assert.Equal(t, errBefore+1, testutil.ToFloat64(metrics.CatalogReloads.WithLabelValues(metrics.StatusError)))
	mh.AssertNumberOfCalls(t, "Publish", 1)
}

func TestReloadPublishFailureIsNotFatal(t *testing.T) {
	src := &fakeSource{data: twoSafeguards()}
	mh := newMockHermes()
	mh.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down"))

	m := New(src, "csv", mh, 0, testLogger())
	n, err := m.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSnapshotIsACopy(t *testing.T) {
	src := &fakeSource{data: twoSafeguards()}
	m := New(src, "csv", nil, 0, testLogger())
	_, err := m.Reload(context.Background())
	require.NoError(t, err)

	snap := m.Snapshot()
	snap[0].Name = "mutated"
	snap[0], snap[1] = snap[1], snap[0]

	assert.Equal(t, []string{"Lakera Guard", "LLM Guard"}, names(m.Snapshot()))
}

func TestRefreshLoop(t *testing.T) {
	src := &fakeSource{data: twoSafeguards()}
	m := New(src, "csv", nil, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	assert.Eventually(t, func() bool { return src.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Len(t, m.Snapshot(), 2)

	m.Stop()
	calls := src.callCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, src.callCount(), "no reloads after Stop")

	// Stop is idempotent.
	m.Stop()
}

func TestNoLoopWithoutInterval(t *testing.T) {
	src := &fakeSource{data: twoSafeguards()}
	m := New(src, "csv", nil, 0, testLogger())
	m.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, src.callCount())
	m.Stop()
}

func TestInvalidateTriggersReload(t *testing.T) {
	src := &fakeSource{data: twoSafeguards()}
	mh := newMockHermes()
	mh.On("Publish", hermes.SubjectCatalogReloaded, mock.Anything).Return(nil)

	m := New(src, "csv", mh, 0, testLogger())
	m.Start(context.Background())
	defer m.Stop()

	mh.deliver(hermes.SubjectCatalogInvalidate, []byte(`{"reason":"seeded"}`))
	assert.Equal(t, 1, src.callCount())
	assert.Len(t, m.Snapshot(), 2)

	// Malformed payloads still reload.
	mh.deliver(hermes.SubjectCatalogInvalidate, []byte(`not json`))
	assert.Equal(t, 2, src.callCount())
}

func TestInvalidateIgnoredAfterStop(t *testing.T) {
	src := &fakeSource{data: twoSafeguards()}
	mh := newMockHermes()

	m := New(src, "csv", mh, 0, testLogger())
	m.Start(context.Background())
	m.Stop()

	mh.deliver(hermes.SubjectCatalogInvalidate, nil)
	assert.Equal(t, 0, src.callCount())
}

func names(sgs []store.Safeguard) []string {
	out := make([]string, len(sgs))
	for i, sg := range sgs {
		out[i] = sg.Name
	}
	return out
}
