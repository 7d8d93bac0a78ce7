package token

import (
	"context"
	"fmt"
	"tokend/internal/models"
	"tokend/internal/providers"
)

// ConsumeToken spends today's token. It fails with ErrNoTokenAvailable when
// the token has not arrived yet or was already used. The remote write is
// best effort; local consumption holds either way.
func (e *Engine) ConsumeToken(ctx context.Context, userID string) (*models.ConsumeResult, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	if e.isUnlimited(userID) {
		e.metrics.IncConsumptions("unlimited")
		return &models.ConsumeResult{Unlimited: true}, nil
	}
	unlock := e.locks.lock(userID)
	defer unlock()

	m := readClock(e.clock)
	st, err := e.evaluateLocked(ctx, userID, m)
	if err != nil {
		return nil, err
	}
	tok, err := e.local.token(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !st.HasToken || tok == nil || !tok.Available {
		e.logger.Debugf(providers.TypeEngine, "%s for %s", ErrNoTokenAvailable, userID)
		e.metrics.IncConsumptions("no_token")
		return nil, ErrNoTokenAvailable
	}

	usedAt := m.now
	tok.Available = false
	tok.UsedAt = &usedAt
	if err := e.local.saveToken(ctx, userID, tok); err != nil {
		return nil, err
	}
	e.metrics.IncConsumptions("ok")
	e.logger.Infof(providers.TypeEngine, "Token of %s consumed", userID)

	res := &models.ConsumeResult{Degraded: st.Degraded}
	if e.mirror != nil && !e.pushConsumption(ctx, userID, tok, m) {
		res.Degraded = true
	}
	return res, nil
}

// TimeUntilArrival returns the remaining time before today's token arrives,
// or nil when there is nothing to wait for.
func (e *Engine) TimeUntilArrival(ctx context.Context, userID string) (*models.Countdown, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	if e.isUnlimited(userID) {
		return nil, nil
	}
	unlock := e.locks.lock(userID)
	defer unlock()

	m := readClock(e.clock)
	s, err := e.local.schedule(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s == nil || !m.isToday(s.Date) || s.Delivered {
		return nil, nil
	}
	remaining := s.ArrivalMinute - m.minute
	if remaining <= 0 {
		return nil, nil
	}
	h, mins := remaining/60, remaining%60
	return &models.Countdown{
		Hours:            h,
		Minutes:          mins,
		Label:            models.CountdownLabel(h, mins),
		ArrivalTimeLabel: s.ArrivalLabel(),
	}, nil
}

// SetRemoteArrival writes today's schedule for userID with the given "HH:MM"
// arrival to the remote mirror only. Devices adopt it on their next
// reconciliation.
func (e *Engine) SetRemoteArrival(ctx context.Context, userID, clock string) (*models.TokenSchedule, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	minute, err := models.ParseClock(clock)
	if err != nil {
		return nil, err
	}
	if !models.ValidArrivalMinute(minute) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideWindow, clock)
	}
	if e.mirror == nil {
		return nil, fmt.Errorf("%w: remote sync disabled", ErrRemoteUnavailable)
	}

	m := readClock(e.clock)
	s := &models.TokenSchedule{
		Date:                  m.today,
		UserID:                userID,
		ArrivalMinute:         minute,
		TimezoneOffsetMinutes: m.tzOffsetMinutes(),
		UpdatedAt:             m.now,
	}
	if err := e.mirror.pushSchedule(ctx, s); err != nil {
		e.metrics.IncRemoteFailures("push_schedule")
		return nil, err
	}
	e.logger.Infof(providers.TypeSync, "Remote arrival of %s set to %s", userID, s.ArrivalLabel())
	return s, nil
}
