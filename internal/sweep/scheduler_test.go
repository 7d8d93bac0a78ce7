package sweep

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"tokend/internal/models"
	"tokend/internal/structures"
	"tokend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvaluator struct {
	mu    sync.Mutex
	calls map[string]int
	fail  string
}

func (f *fakeEvaluator) EvaluateStatus(_ context.Context, userID string) (*models.TokenStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[userID]++
	if userID == f.fail {
		return nil, errors.New("store down")
	}
	return &models.TokenStatus{HasToken: userID == "u1"}, nil
}

func (f *fakeEvaluator) count(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[userID]
}

func testConfig() *structures.Config {
	return &structures.Config{
		Persistence: structures.Persistence{SaveInterval: time.Second},
		Engine:      structures.EngineConfig{EvaluateInterval: time.Second},
	}
}

func TestScheduler_SweepEvaluatesTrackedUsers(t *testing.T) {
	registry := NewRegistry(testutil.NewMemoryLocalStore())
	registry.Track("u1")
	registry.Track("u2")
	registry.Track("u3")
	eval := &fakeEvaluator{fail: "u2"}
	metrics := testutil.NewMockMetrics()
	logger := &testutil.MockLogger{}

	s := NewScheduler(testConfig(), logger, metrics, eval, registry)
	s.Sweep()

	assert.Equal(t, 1, eval.count("u1"))
	assert.Equal(t, 1, eval.count("u2"))
	assert.Equal(t, 1, eval.count("u3"))
	assert.Equal(t, 3, metrics.Tracked)
	assert.Equal(t, 1, logger.Count("error"))
}

func TestScheduler_PersistAndRestore(t *testing.T) {
	store := testutil.NewMemoryLocalStore()
	registry := NewRegistry(store)
	registry.Track("b")
	registry.Track("a")
	metrics := testutil.NewMockMetrics()

	s := NewScheduler(testConfig(), &testutil.MockLogger{}, metrics, &fakeEvaluator{}, registry)
	require.NoError(t, s.Persist())
	assert.Equal(t, `["a","b"]`, string(store.Data[RegistryKey]))
	assert.Equal(t, 1, metrics.Get("persistence"))

	// Nothing changed, nothing written.
	require.NoError(t, s.Persist())
	assert.Equal(t, 1, metrics.Get("persistence"))

	restored := NewRegistry(store)
	s2 := NewScheduler(testConfig(), &testutil.MockLogger{}, metrics, &fakeEvaluator{}, restored)
	require.NoError(t, s2.Restore())
	assert.Equal(t, []string{"a", "b"}, restored.Users())
}

func TestScheduler_RestoreFindsStoredSchedules(t *testing.T) {
	store := testutil.NewMemoryLocalStore()
	store.Data[RegistryKey] = []byte(`["a"]`)
	store.Data[models.UserKey("b", models.KeySchedule)] = []byte(`{}`)
	store.Data[models.UserKey("c", models.KeyPreferences)] = []byte(`{}`)
	registry := NewRegistry(store)

	s := NewScheduler(testConfig(), &testutil.MockLogger{}, testutil.NewMockMetrics(), &fakeEvaluator{}, registry)
	require.NoError(t, s.Restore())
	assert.Equal(t, []string{"a", "b"}, registry.Users())

	require.NoError(t, s.Persist())
	assert.Equal(t, `["a","b"]`, string(store.Data[RegistryKey]))
}

func TestScheduler_PersistWriteError(t *testing.T) {
	store := testutil.NewMemoryLocalStore()
	store.FailSet = true
	registry := NewRegistry(store)
	registry.Track("a")

	s := NewScheduler(testConfig(), &testutil.MockLogger{}, testutil.NewMockMetrics(), &fakeEvaluator{}, registry)
	assert.Error(t, s.Persist())

	store.FailSet = false
	require.NoError(t, s.Persist())
	assert.Contains(t, store.Data, RegistryKey)
}

func TestScheduler_RestoreCorrupted(t *testing.T) {
	store := testutil.NewMemoryLocalStore()
	store.Data[RegistryKey] = []byte("not json")

	s := NewScheduler(testConfig(), &testutil.MockLogger{}, testutil.NewMockMetrics(), &fakeEvaluator{}, NewRegistry(store))
	assert.Error(t, s.Restore())
}

func TestScheduler_RestoreEmpty(t *testing.T) {
	s := NewScheduler(testConfig(), &testutil.MockLogger{}, testutil.NewMockMetrics(), &fakeEvaluator{}, NewRegistry(testutil.NewMemoryLocalStore()))
	assert.NoError(t, s.Restore())
}

func TestScheduler_StopNilCron(t *testing.T) {
	s := NewScheduler(testConfig(), &testutil.MockLogger{}, testutil.NewMockMetrics(), &fakeEvaluator{}, NewRegistry(testutil.NewMemoryLocalStore()))
	// Should not panic with nil cron
	s.Stop()
}

func TestScheduler_InitAndStop(t *testing.T) {
	s := NewScheduler(testConfig(), &testutil.MockLogger{}, testutil.NewMockMetrics(), &fakeEvaluator{}, NewRegistry(testutil.NewMemoryLocalStore()))
	s.Init()
	time.Sleep(50 * time.Millisecond)
	s.Stop()
}

func TestRegistry_TrackForget(t *testing.T) {
	r := NewRegistry(testutil.NewMemoryLocalStore())
	r.Track("u1")
	r.Track("u1")
	r.Track("u2")
	r.Forget("u1")
	r.Forget("missing")

	assert.Equal(t, []string{"u2"}, r.Users())
}
