package token

import (
	"context"
	"fmt"
	"time"
	"tokend/internal/models"
	"tokend/internal/token/interfaces"

	json "github.com/goccy/go-json"
)

// mirror reads and writes the engine's fields of the shared remote user
// document. Every failure is wrapped in ErrRemoteUnavailable.
type mirror struct {
	store   interfaces.RemoteStore
	timeout time.Duration
}

func (m *mirror) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

// fetch returns nil when the document carries no schedule. A schedule that
// fails validation yields ErrInvalidSchedule.
func (m *mirror) fetch(ctx context.Context, userID string) (*models.RemoteScheduleMirror, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	doc, err := m.store.GetUserDoc(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %s", ErrRemoteUnavailable, userID, err)
	}
	raw, ok := doc[models.RemoteFieldSchedule]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var out models.RemoteScheduleMirror
	if err := json.Unmarshal(raw, &out.TokenSchedule); err != nil {
		return nil, fmt.Errorf("%w: remote schedule: %s", ErrInvalidSchedule, err)
	}
	// Admin edits may omit the owner; the document key already names it.
	if out.UserID == "" {
		out.UserID = userID
	}
	if err := out.TokenSchedule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: remote schedule: %s", ErrInvalidSchedule, err)
	}

	if raw, ok := doc[models.RemoteFieldTokenUsedDate]; ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &out.TokenUsedDate); err != nil {
			return nil, fmt.Errorf("%w: tokenUsedDate: %s", ErrInvalidSchedule, err)
		}
	}
	if raw, ok := doc[models.RemoteFieldLastTokenUsed]; ok && len(raw) > 0 {
		var at time.Time
		if err := json.Unmarshal(raw, &at); err == nil {
			out.LastTokenUsed = &at
		}
	}
	return &out, nil
}

func (m *mirror) merge(ctx context.Context, userID string, values map[string]any) error {
	fields := make(models.UserDoc, len(values))
	for name, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		fields[name] = data
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	if err := m.store.MergeUserDoc(ctx, userID, fields); err != nil {
		return fmt.Errorf("%w: merge %s: %s", ErrRemoteUnavailable, userID, err)
	}
	return nil
}

func (m *mirror) pushSchedule(ctx context.Context, s *models.TokenSchedule) error {
	return m.merge(ctx, s.UserID, map[string]any{models.RemoteFieldSchedule: s})
}

func (m *mirror) pushConsumption(ctx context.Context, userID, date string, at time.Time) error {
	return m.merge(ctx, userID, map[string]any{
		models.RemoteFieldTokenUsedDate: date,
		models.RemoteFieldLastTokenUsed: at,
	})
}
