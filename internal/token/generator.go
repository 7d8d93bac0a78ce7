package token

import (
	"context"
	"tokend/internal/models"
	"tokend/internal/providers"
)

// EnsureSchedule returns today's schedule for userID, creating it when the
// stored one is missing, corrupt, foreign or from another day.
func (e *Engine) EnsureSchedule(ctx context.Context, userID string) (*models.TokenSchedule, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	unlock := e.locks.lock(userID)
	defer unlock()

	m := readClock(e.clock)
	s, err := e.local.schedule(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s != nil && m.isToday(s.Date) {
		return s, nil
	}
	tok, err := e.local.token(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tok != nil && !m.isToday(tok.Date) {
		tok = nil
	}
	s, _, err = e.newSchedule(ctx, userID, m, tok)
	return s, err
}

// newSchedule draws a fresh arrival minute for today, persists it locally,
// mirrors it and schedules exactly one arrival notification. When today's
// token already exists the schedule it lost is recreated as delivered at the
// token's delivery time. The returned bool is false when a best-effort step
// failed.
func (e *Engine) newSchedule(ctx context.Context, userID string, m moment, today *models.Token) (*models.TokenSchedule, bool, error) {
	s := &models.TokenSchedule{
		Date:                  m.today,
		UserID:                userID,
		ArrivalMinute:         models.ArrivalWindowStart + e.rnd(models.ArrivalWindowEnd-models.ArrivalWindowStart),
		Delivered:             false,
		TimezoneOffsetMinutes: m.tzOffsetMinutes(),
		UpdatedAt:             m.now,
	}
	if today != nil {
		s.Delivered = true
		if minute := models.MinuteOfDay(today.DeliveredAt.In(m.now.Location())); models.ValidArrivalMinute(minute) {
			s.ArrivalMinute = minute
		}
	}
	if err := e.local.saveSchedule(ctx, s); err != nil {
		return nil, false, err
	}
	e.logger.Infof(providers.TypeEngine, "Created schedule for %s on %s, arrival %s", userID, s.Date, s.ArrivalLabel())

	ok := e.mirrorSchedule(ctx, s)
	if s.Delivered {
		if !e.cancelArrival(ctx, userID) {
			ok = false
		}
		return s, ok, nil
	}
	if !e.scheduleArrival(ctx, userID, m, m.arrivalAt(s.ArrivalMinute)) {
		ok = false
	}
	return s, ok, nil
}

func (e *Engine) mirrorSchedule(ctx context.Context, s *models.TokenSchedule) bool {
	if e.mirror == nil {
		return true
	}
	if err := e.mirror.pushSchedule(ctx, s); err != nil {
		e.logger.Warnf(providers.TypeSync, "Mirror schedule: %s", err)
		e.metrics.IncRemoteFailures("push_schedule")
		e.markPending(ctx, s.UserID, s.Date, func(p *models.SyncPending) { p.Schedule = true })
		return false
	}
	return true
}
