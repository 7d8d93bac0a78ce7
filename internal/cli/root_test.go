package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
	"tokend/internal/models"
	"tokend/internal/structures"
	"tokend/internal/token/interfaces"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	interfaces.EngineInterface
	calls []string
	err   error
}

func (s *stubEngine) EvaluateStatus(_ context.Context, userID string) (*models.TokenStatus, error) {
	s.calls = append(s.calls, "status:"+userID)
	return &models.TokenStatus{HasToken: true, ArrivalMinute: 600, ArrivalTimeLabel: "10:00 AM"}, s.err
}

func (s *stubEngine) ConsumeToken(_ context.Context, userID string) (*models.ConsumeResult, error) {
	s.calls = append(s.calls, "consume:"+userID)
	if s.err != nil {
		return nil, s.err
	}
	return &models.ConsumeResult{}, nil
}

func (s *stubEngine) TimeUntilArrival(_ context.Context, userID string) (*models.Countdown, error) {
	s.calls = append(s.calls, "countdown:"+userID)
	return nil, nil
}

func (s *stubEngine) SetRemoteArrival(_ context.Context, userID, clock string) (*models.TokenSchedule, error) {
	s.calls = append(s.calls, "arrival:"+userID+"@"+clock)
	return &models.TokenSchedule{UserID: userID, ArrivalMinute: 600, UpdatedAt: time.Unix(0, 0).UTC()}, nil
}

type harness struct {
	engine  *stubEngine
	flags   *structures.CliFlags
	closed  int
	served  int
	factory EngineFactory
}

func newHarness() *harness {
	h := &harness{engine: &stubEngine{}}
	h.factory = func(flags *structures.CliFlags) (interfaces.EngineInterface, func(), error) {
		h.flags = flags
		return h.engine, func() { h.closed++ }, nil
	}
	return h
}

func (h *harness) run(args ...string) (string, error) {
	cmd := NewRootCommand(h.factory, func(flags *structures.CliFlags) error {
		h.flags = flags
		h.served++
		return nil
	})
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStatusCommand(t *testing.T) {
	h := newHarness()

	out, err := h.run("status", "u1", "--config", "/etc/tokend.yml")
	require.NoError(t, err)

	var st models.TokenStatus
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.True(t, st.HasToken)
	assert.Equal(t, "10:00 AM", st.ArrivalTimeLabel)
	assert.Equal(t, []string{"status:u1"}, h.engine.calls)
	assert.Equal(t, "/etc/tokend.yml", h.flags.ConfigPath)
	assert.Equal(t, 1, h.closed)
}

func TestConsumeCommand_Error(t *testing.T) {
	h := newHarness()
	h.engine.err = errors.New("no token")

	_, err := h.run("consume", "u1")
	assert.EqualError(t, err, "no token")
	assert.Equal(t, 1, h.closed)
}

func TestCountdownCommand_Nothing(t *testing.T) {
	h := newHarness()

	out, err := h.run("countdown", "u1")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)
}

func TestSetArrivalCommand(t *testing.T) {
	h := newHarness()

	out, err := h.run("set-arrival", "u1", "10:00")
	require.NoError(t, err)
	assert.Contains(t, out, `"arrivalMinute": 600`)
	assert.Equal(t, []string{"arrival:u1@10:00"}, h.engine.calls)
}

func TestSetArrivalCommand_MissingArgs(t *testing.T) {
	h := newHarness()

	_, err := h.run("set-arrival", "u1")
	assert.Error(t, err)
	assert.Empty(t, h.engine.calls)
}

func TestServeCommand(t *testing.T) {
	h := newHarness()

	_, err := h.run("serve", "--debug")
	require.NoError(t, err)
	assert.Equal(t, 1, h.served)
	assert.True(t, h.flags.DebugMode)
	assert.Equal(t, "configs/tokend.yml", h.flags.ConfigPath)
}
