package testutil

import (
	"net/http"
	"sync"
	"time"
	"tokend/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface with counters
// keyed by "name:label".
type MockMetrics struct {
	mu       sync.Mutex
	Counters map[string]int
	Tracked  int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{Counters: make(map[string]int)}
}

func (m *MockMetrics) inc(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counters[key]++
}

// Get returns the counter value for key.
func (m *MockMetrics) Get(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Counters[key]
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) { m.inc("requests:" + endpoint) }
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    { m.inc("cache:hit") }
func (m *MockMetrics) IncCacheMisses()                                  { m.inc("cache:miss") }
func (m *MockMetrics) IncDeliveries(source string)                      { m.inc("deliveries:" + source) }
func (m *MockMetrics) IncConsumptions(outcome string)                   { m.inc("consumptions:" + outcome) }
func (m *MockMetrics) IncNotifications(kind, outcome string) {
	m.inc("notifications:" + kind + ":" + outcome)
}
func (m *MockMetrics) IncReconciliations(outcome string)          { m.inc("reconciliations:" + outcome) }
func (m *MockMetrics) IncRemoteFailures(op string)                { m.inc("remote_failures:" + op) }
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) { m.inc("persistence") }
func (m *MockMetrics) SetTrackedUsers(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tracked = count
}
func (m *MockMetrics) Handler() http.Handler { return http.NotFoundHandler() }

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockCompressor implements storage.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}
