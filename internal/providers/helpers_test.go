package providers

import (
	"sync"
	"time"
)

// local mocks to avoid import cycle with testutil

type nopTestLogger struct{}

func (m *nopTestLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *nopTestLogger) Warnf(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *nopTestLogger) Debugf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *nopTestLogger) Infof(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *nopTestLogger) Fatalf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *nopTestLogger) Close()                                        {}

type mockMetrics struct {
	mu              sync.Mutex
	requestEndpoint string
	requestStatus   int
	requestCalls    int
	durationCalls   int
	hits            int
	misses          int
}

func (m *mockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestEndpoint = endpoint
	m.requestStatus = status
	m.requestCalls++
}
func (m *mockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durationCalls++
}
func (m *mockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
}
func (m *mockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses++
}
func (m *mockMetrics) IncStorageFull()                                  {}
func (m *mockMetrics) IncActivity(_, _ string)                          {}
func (m *mockMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (m *mockMetrics) ObserveBackendDuration(_ string, _ time.Duration) {}
