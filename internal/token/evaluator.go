package token

import (
	"context"
	"tokend/internal/models"
	"tokend/internal/providers"
)

const unlimitedLabel = "Unlimited"

func unlimitedStatus() *models.TokenStatus {
	return &models.TokenStatus{
		HasToken:         true,
		Delivered:        true,
		ArrivalTimeLabel: unlimitedLabel,
		Unlimited:        true,
	}
}

// EvaluateStatus brings the user's local state up to date with the clock and
// reports it. Repeated calls within a minute converge on the same state and
// send at most one arrival notification.
func (e *Engine) EvaluateStatus(ctx context.Context, userID string) (*models.TokenStatus, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	if e.isUnlimited(userID) {
		return unlimitedStatus(), nil
	}
	unlock := e.locks.lock(userID)
	defer unlock()

	return e.evaluateLocked(ctx, userID, readClock(e.clock))
}

func (e *Engine) evaluateLocked(ctx context.Context, userID string, m moment) (*models.TokenStatus, error) {
	if e.isUnlimited(userID) {
		return unlimitedStatus(), nil
	}
	degraded := !e.flushPending(ctx, userID, m, true)

	s, err := e.local.schedule(ctx, userID)
	if err != nil {
		return nil, err
	}
	tok, err := e.local.token(ctx, userID)
	if err != nil {
		return nil, err
	}

	if tok != nil && !m.isToday(tok.Date) {
		e.logger.Debugf(providers.TypeEngine, "Token of %s from %s expired", userID, tok.Date)
		if err := e.local.dropToken(ctx, userID); err != nil {
			return nil, err
		}
		tok = nil
	}
	if s == nil || !m.isToday(s.Date) {
		var ok bool
		if s, ok, err = e.newSchedule(ctx, userID, m, tok); err != nil {
			return nil, err
		}
		degraded = degraded || !ok
	}

	if !s.Delivered && m.minute >= s.ArrivalMinute && models.ValidArrivalMinute(s.ArrivalMinute) {
		var ok bool
		if tok, ok, err = e.deliver(ctx, s, tok, m); err != nil {
			return nil, err
		}
		degraded = degraded || !ok
	}

	return &models.TokenStatus{
		HasToken:         tok != nil && tok.Available,
		Delivered:        s.Delivered,
		ArrivalMinute:    s.ArrivalMinute,
		ArrivalTimeLabel: s.ArrivalLabel(),
		WillArriveToday:  !s.Delivered && m.minute < s.ArrivalMinute,
		Degraded:         degraded,
	}, nil
}

// deliver flips the schedule to delivered and makes the token available.
// An existing token for today, consumed or not, is kept as is. The token is
// written before the schedule so an interrupted delivery is retried without
// losing it.
func (e *Engine) deliver(ctx context.Context, s *models.TokenSchedule, tok *models.Token, m moment) (*models.Token, bool, error) {
	if tok == nil {
		tok = &models.Token{Date: m.today, Available: true, DeliveredAt: m.now}
		if err := e.local.saveToken(ctx, s.UserID, tok); err != nil {
			return nil, false, err
		}
	}
	s.Delivered = true
	s.UpdatedAt = m.now
	if err := e.local.saveSchedule(ctx, s); err != nil {
		return nil, false, err
	}
	e.metrics.IncDeliveries("local")
	e.logger.Infof(providers.TypeEngine, "Token delivered to %s at %s (arrival %s)", s.UserID, m.now.Format("15:04"), s.ArrivalLabel())

	ok := e.mirrorSchedule(ctx, s)
	if !e.sendArrivedNow(ctx, s.UserID, m) {
		e.markPending(ctx, s.UserID, m.today, func(p *models.SyncPending) { p.Notify = true })
		ok = false
	}
	return tok, ok, nil
}
