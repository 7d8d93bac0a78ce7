package token

import (
	"context"
	"tokend/internal/models"
	"tokend/internal/providers"
)

// markPending records a failed best-effort write of day so the next
// evaluation retries it. A pending record of another day is replaced.
func (e *Engine) markPending(ctx context.Context, userID, day string, set func(p *models.SyncPending)) {
	p, err := e.local.pending(ctx, userID)
	if err != nil {
		e.logger.Warnf(providers.TypeSync, "Read pending sync of %s: %s", userID, err)
	}
	if p == nil || p.Date != day {
		p = &models.SyncPending{Date: day}
	}
	set(p)
	if err := e.local.savePending(ctx, userID, p); err != nil {
		e.logger.Warnf(providers.TypeSync, "Save pending sync of %s: %s", userID, err)
	}
}

// flushPending retries the writes recorded by markPending. With full unset
// only the consumption is pushed, so a schedule that is about to be replaced
// from the remote is not written over it first. It returns false while
// something is still pending.
func (e *Engine) flushPending(ctx context.Context, userID string, m moment, full bool) bool {
	p, err := e.local.pending(ctx, userID)
	if err != nil {
		e.logger.Warnf(providers.TypeSync, "Read pending sync of %s: %s", userID, err)
		return false
	}
	if p == nil {
		return true
	}
	if !m.isToday(p.Date) || (e.mirror == nil && !p.Notify) {
		if err := e.local.dropPending(ctx, userID); err != nil {
			e.logger.Warnf(providers.TypeSync, "Drop pending sync of %s: %s", userID, err)
		}
		return true
	}
	before := *p

	if p.Consumption {
		p.Consumption = !e.retryConsumption(ctx, userID, m)
	}
	if full && p.Schedule {
		p.Schedule = !e.retrySchedule(ctx, userID, m)
	}
	if full && p.Notify {
		p.Notify = !e.retryNotify(ctx, userID, m)
	}

	switch {
	case p.Empty():
		err = e.local.dropPending(ctx, userID)
	case *p != before:
		err = e.local.savePending(ctx, userID, p)
	}
	if err != nil {
		e.logger.Warnf(providers.TypeSync, "Update pending sync of %s: %s", userID, err)
	}
	if !full {
		return !p.Consumption
	}
	return p.Empty()
}

func (e *Engine) retryConsumption(ctx context.Context, userID string, m moment) bool {
	tok, err := e.local.token(ctx, userID)
	if err != nil {
		e.logger.Warnf(providers.TypeSync, "Read token of %s: %s", userID, err)
		return false
	}
	if !tok.Consumed(m.today) || e.mirror == nil {
		return true
	}
	return e.pushConsumption(ctx, userID, tok, m)
}

func (e *Engine) retrySchedule(ctx context.Context, userID string, m moment) bool {
	s, err := e.local.schedule(ctx, userID)
	if err != nil {
		e.logger.Warnf(providers.TypeSync, "Read schedule of %s: %s", userID, err)
		return false
	}
	if s == nil || !m.isToday(s.Date) || e.mirror == nil {
		return true
	}
	if err := e.mirror.pushSchedule(ctx, s); err != nil {
		e.logger.Warnf(providers.TypeSync, "Mirror schedule retry: %s", err)
		e.metrics.IncRemoteFailures("push_schedule")
		return false
	}
	e.logger.Infof(providers.TypeSync, "Mirrored pending schedule of %s", userID)
	return true
}

func (e *Engine) retryNotify(ctx context.Context, userID string, m moment) bool {
	s, err := e.local.schedule(ctx, userID)
	if err != nil {
		e.logger.Warnf(providers.TypeNotify, "Read schedule of %s: %s", userID, err)
		return false
	}
	tok, err := e.local.token(ctx, userID)
	if err != nil {
		e.logger.Warnf(providers.TypeNotify, "Read token of %s: %s", userID, err)
		return false
	}
	if s == nil || !m.isToday(s.Date) || !s.Delivered || tok == nil || !m.isToday(tok.Date) || !tok.Available {
		return true
	}
	return e.sendArrivedNow(ctx, userID, m)
}

// pushConsumption writes today's consumption to the remote mirror and records
// it as pending when that fails.
func (e *Engine) pushConsumption(ctx context.Context, userID string, tok *models.Token, m moment) bool {
	usedAt := m.now
	if tok.UsedAt != nil {
		usedAt = *tok.UsedAt
	}
	if err := e.mirror.pushConsumption(ctx, userID, tok.Date, usedAt); err != nil {
		e.logger.Warnf(providers.TypeSync, "Push consumption: %s", err)
		e.metrics.IncRemoteFailures("push_consumption")
		e.markPending(ctx, userID, tok.Date, func(p *models.SyncPending) { p.Consumption = true })
		return false
	}
	return true
}
