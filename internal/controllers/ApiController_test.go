package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"tokend/internal/models"
	"tokend/internal/notify"
	"tokend/internal/providers"
	"tokend/internal/token"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- local mocks (scoped to controller tests) ---

type mockLogger struct{}

func (m *mockLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Close()                                                  {}

type mockEngine struct {
	status    *models.TokenStatus
	consume   *models.ConsumeResult
	countdown *models.Countdown
	schedule  *models.TokenSchedule
	err       error
	calls     []string
}

func (m *mockEngine) call(name, user string) error {
	m.calls = append(m.calls, name+":"+user)
	if err := token.ValidateUser(user); err != nil {
		return err
	}
	return m.err
}

func (m *mockEngine) EvaluateStatus(_ context.Context, user string) (*models.TokenStatus, error) {
	if err := m.call("evaluate", user); err != nil {
		return nil, err
	}
	return m.status, nil
}
func (m *mockEngine) ConsumeToken(_ context.Context, user string) (*models.ConsumeResult, error) {
	if err := m.call("consume", user); err != nil {
		return nil, err
	}
	return m.consume, nil
}
func (m *mockEngine) ReconcileWithRemote(_ context.Context, user string) (*models.TokenStatus, error) {
	if err := m.call("reconcile", user); err != nil {
		return nil, err
	}
	return m.status, nil
}
func (m *mockEngine) TimeUntilArrival(_ context.Context, user string) (*models.Countdown, error) {
	if err := m.call("countdown", user); err != nil {
		return nil, err
	}
	return m.countdown, nil
}
func (m *mockEngine) EnsureSchedule(_ context.Context, user string) (*models.TokenSchedule, error) {
	return m.schedule, m.call("ensure", user)
}
func (m *mockEngine) ScheduleArrival(_ context.Context, user string, _ time.Time) error {
	return m.call("schedule", user)
}
func (m *mockEngine) CancelArrivalNotifications(_ context.Context, user string) error {
	return m.call("cancel", user)
}
func (m *mockEngine) SendArrivedNow(_ context.Context, user string) error {
	return m.call("send", user)
}
func (m *mockEngine) RecordArrivalShown(_ context.Context, user string) error {
	return m.call("shown", user)
}
func (m *mockEngine) SetRemoteArrival(_ context.Context, user, clock string) (*models.TokenSchedule, error) {
	if err := m.call("set_arrival", user); err != nil {
		return nil, err
	}
	minute, err := models.ParseClock(clock)
	if err != nil {
		return nil, err
	}
	return &models.TokenSchedule{Date: "2024-01-01", UserID: user, ArrivalMinute: minute}, nil
}
func (m *mockEngine) SignOut(_ context.Context, user string) error {
	return m.call("signout", user)
}

type mockTracker struct {
	tracked   []string
	forgotten []string
}

func (m *mockTracker) Track(userID string)  { m.tracked = append(m.tracked, userID) }
func (m *mockTracker) Forget(userID string) { m.forgotten = append(m.forgotten, userID) }
func (m *mockTracker) Users() []string      { return m.tracked }

// --- helpers ---

func newTestController(engine *mockEngine) (*ApiController, *mockTracker) {
	tracker := &mockTracker{}
	return NewApiController(&mockLogger{}, engine, tracker), tracker
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

// --- status ---

func TestGetStatus_ReturnsJSON(t *testing.T) {
	engine := &mockEngine{status: &models.TokenStatus{HasToken: true, Delivered: true, ArrivalMinute: 600, ArrivalTimeLabel: "10:00 AM"}}
	ac, tracker := newTestController(engine)

	req := httptest.NewRequest(http.MethodGet, "/status?user=u1", nil)
	rr := httptest.NewRecorder()
	ac.GetStatus(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var st models.TokenStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.True(t, st.HasToken)
	assert.Equal(t, "10:00 AM", st.ArrivalTimeLabel)
	assert.Equal(t, []string{"u1"}, tracker.tracked)
}

func TestGetStatus_MissingUser(t *testing.T) {
	ac, tracker := newTestController(&mockEngine{})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	ac.GetStatus(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeError(t, rr), "invalid user id")
	assert.Empty(t, tracker.tracked)
}

func TestGetStatus_InternalError(t *testing.T) {
	ac, _ := newTestController(&mockEngine{err: errors.New("disk full")})

	req := httptest.NewRequest(http.MethodGet, "/status?user=u1", nil)
	rr := httptest.NewRecorder()
	ac.GetStatus(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// --- consume ---

func TestConsume_Success(t *testing.T) {
	ac, _ := newTestController(&mockEngine{consume: &models.ConsumeResult{Degraded: true}})

	req := httptest.NewRequest(http.MethodPost, "/consume?user=u1", nil)
	rr := httptest.NewRecorder()
	ac.Consume(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"degraded":true}`, rr.Body.String())
}

func TestConsume_NoToken(t *testing.T) {
	ac, _ := newTestController(&mockEngine{err: token.ErrNoTokenAvailable})

	req := httptest.NewRequest(http.MethodPost, "/consume?user=u1", nil)
	rr := httptest.NewRecorder()
	ac.Consume(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "no token available", decodeError(t, rr))
}

// --- reconcile ---

func TestReconcile_RemoteDown(t *testing.T) {
	ac, _ := newTestController(&mockEngine{err: token.ErrRemoteUnavailable})

	req := httptest.NewRequest(http.MethodPost, "/reconcile?user=u1", nil)
	rr := httptest.NewRecorder()
	ac.Reconcile(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestReconcile_ReturnsStatus(t *testing.T) {
	engine := &mockEngine{status: &models.TokenStatus{WillArriveToday: true, ArrivalMinute: 700}}
	ac, _ := newTestController(engine)

	req := httptest.NewRequest(http.MethodPost, "/reconcile?user=u1", nil)
	rr := httptest.NewRecorder()
	ac.Reconcile(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"reconcile:u1"}, engine.calls)
}

// --- countdown ---

func TestGetCountdown(t *testing.T) {
	engine := &mockEngine{countdown: &models.Countdown{Hours: 1, Minutes: 5, Label: "1h 5m", ArrivalTimeLabel: "11:05 AM"}}
	ac, _ := newTestController(engine)

	rr := httptest.NewRecorder()
	ac.GetCountdown(rr, httptest.NewRequest(http.MethodGet, "/countdown?user=u1", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"label":"1h 5m"`)

	engine.countdown = nil
	rr = httptest.NewRecorder()
	ac.GetCountdown(rr, httptest.NewRequest(http.MethodGet, "/countdown?user=u1", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

// --- sign out ---

func TestSignOut_ForgetsUser(t *testing.T) {
	ac, tracker := newTestController(&mockEngine{})

	rr := httptest.NewRecorder()
	ac.SignOut(rr, httptest.NewRequest(http.MethodPost, "/signout?user=u1", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{"u1"}, tracker.forgotten)
}

func TestSignOut_NotificationFailure(t *testing.T) {
	ac, tracker := newTestController(&mockEngine{err: token.ErrNotificationSchedulingFailed})

	rr := httptest.NewRecorder()
	ac.SignOut(rr, httptest.NewRequest(http.MethodPost, "/signout?user=u1", nil))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Empty(t, tracker.forgotten)
}

// --- admin ---

func TestAdminSetArrival(t *testing.T) {
	ac := NewAdminController(&mockLogger{}, &mockEngine{}, &mockPending{})

	rr := httptest.NewRecorder()
	ac.SetArrival(rr, httptest.NewRequest(http.MethodPost, "/admin/arrival?user=u1&time=13:30", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"arrivalMinute":810`)

	rr = httptest.NewRecorder()
	ac.SetArrival(rr, httptest.NewRequest(http.MethodPost, "/admin/arrival?user=u1&time=noon", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminSetArrival_OutsideWindow(t *testing.T) {
	ac := NewAdminController(&mockLogger{}, &mockEngine{err: token.ErrOutsideWindow}, &mockPending{})

	rr := httptest.NewRecorder()
	ac.SetArrival(rr, httptest.NewRequest(http.MethodPost, "/admin/arrival?user=u1&time=05:00", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type mockPending struct {
	list map[string][]notify.Pending
}

func (m *mockPending) Pending(userID string) []notify.Pending {
	return m.list[userID]
}

func TestAdminPending(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	ac := NewAdminController(&mockLogger{}, &mockEngine{}, &mockPending{list: map[string][]notify.Pending{
		"u1": {{ID: "n-1", Type: models.NotificationTypeTokenArrived, UserID: "u1", At: at}},
	}})

	rr := httptest.NewRecorder()
	ac.Pending(rr, httptest.NewRequest(http.MethodGet, "/admin/pending?user=u1", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"n-1"`)
	assert.Contains(t, rr.Body.String(), `"type":"token_arrived"`)

	rr = httptest.NewRecorder()
	ac.Pending(rr, httptest.NewRequest(http.MethodGet, "/admin/pending?user=u2", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())

	rr = httptest.NewRecorder()
	ac.Pending(rr, httptest.NewRequest(http.MethodGet, "/admin/pending", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- preferences ---

type mockPrefs struct {
	data map[string]models.Preferences
	err  error
}

func (m *mockPrefs) Get(_ context.Context, userID string) (models.Preferences, error) {
	return m.data[userID], m.err
}

func (m *mockPrefs) Set(_ context.Context, userID string, prefs models.Preferences) error {
	if m.err != nil {
		return m.err
	}
	m.data[userID] = prefs
	return nil
}

func TestPreferences_GetAndUpdate(t *testing.T) {
	prefs := &mockPrefs{data: map[string]models.Preferences{}}
	pc := NewPreferencesController(&mockLogger{}, prefs)

	body := `{"pushEnabled":true,"tokenArrivalEnabled":false}`
	rr := httptest.NewRecorder()
	pc.Update(rr, httptest.NewRequest(http.MethodPost, "/preferences?user=u1", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.Preferences{PushEnabled: true}, prefs.data["u1"])

	rr = httptest.NewRecorder()
	pc.Get(rr, httptest.NewRequest(http.MethodGet, "/preferences?user=u1", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, body, rr.Body.String())
}

func TestPreferences_InvalidBody(t *testing.T) {
	pc := NewPreferencesController(&mockLogger{}, &mockPrefs{data: map[string]models.Preferences{}})

	rr := httptest.NewRecorder()
	pc.Update(rr, httptest.NewRequest(http.MethodPost, "/preferences?user=u1", strings.NewReader("not json")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	big := `{"pushEnabled":true,"pad":"` + strings.Repeat("x", maxRequestBodySize) + `"}`
	rr = httptest.NewRecorder()
	pc.Update(rr, httptest.NewRequest(http.MethodPost, "/preferences?user=u1", strings.NewReader(big)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPreferences_InvalidUser(t *testing.T) {
	pc := NewPreferencesController(&mockLogger{}, &mockPrefs{data: map[string]models.Preferences{}})

	rr := httptest.NewRecorder()
	pc.Get(rr, httptest.NewRequest(http.MethodGet, "/preferences?user=a:b", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
