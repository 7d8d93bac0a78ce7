package token

import (
	"context"
	"errors"
	"tokend/internal/models"
	"tokend/internal/providers"
)

// ReconcileWithRemote merges the remote mirror of today's schedule into local
// state, then evaluates. A token consumed on another device is never made
// available again here.
func (e *Engine) ReconcileWithRemote(ctx context.Context, userID string) (*models.TokenStatus, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	if e.isUnlimited(userID) {
		return unlimitedStatus(), nil
	}
	unlock := e.locks.lock(userID)
	defer unlock()

	m := readClock(e.clock)
	degraded := false

	if e.mirror != nil {
		// A consumption this device could not push must land before the
		// remote is read back.
		degraded = !e.flushPending(ctx, userID, m, false)

		remote, err := e.mirror.fetch(ctx, userID)
		switch {
		case errors.Is(err, ErrInvalidSchedule):
			e.logger.Warnf(providers.TypeSync, "Ignoring remote schedule of %s: %s", userID, err)
			e.metrics.IncReconciliations("invalid")
		case err != nil:
			e.logger.Warnf(providers.TypeSync, "%s", err)
			e.metrics.IncRemoteFailures("fetch")
			e.metrics.IncReconciliations("unavailable")
			degraded = true
		case remote == nil || !m.isToday(remote.Date):
			e.logger.Debugf(providers.TypeSync, "No remote schedule for %s today", userID)
			e.metrics.IncReconciliations("not_applicable")
		case remote.UserID != userID:
			e.logger.Warnf(providers.TypeSync, "%s: remote schedule of %s names %s", ErrInvalidSchedule, userID, remote.UserID)
			e.metrics.IncReconciliations("invalid")
		default:
			ok, err := e.applyRemote(ctx, userID, remote, m)
			if err != nil {
				return nil, err
			}
			degraded = degraded || !ok
			e.metrics.IncReconciliations("applied")
		}
	}

	st, err := e.evaluateLocked(ctx, userID, m)
	if err != nil {
		return nil, err
	}
	st.Degraded = st.Degraded || degraded
	return st, nil
}

func (e *Engine) applyRemote(ctx context.Context, userID string, remote *models.RemoteScheduleMirror, m moment) (bool, error) {
	local, err := e.local.schedule(ctx, userID)
	if err != nil {
		return false, err
	}
	tok, err := e.local.token(ctx, userID)
	if err != nil {
		return false, err
	}
	if local != nil && !m.isToday(local.Date) {
		local = nil
	}
	if tok != nil && !m.isToday(tok.Date) {
		if err := e.local.dropToken(ctx, userID); err != nil {
			return false, err
		}
		tok = nil
	}

	replaced := false
	if local == nil || local.ArrivalMinute != remote.ArrivalMinute {
		from := "none"
		if local != nil {
			from = local.ArrivalLabel()
		}
		e.logger.Infof(providers.TypeSync, "%s for %s: local %s, remote %s", ErrStaleScheduleDetected, userID, from, remote.ArrivalLabel())

		if local != nil && local.Delivered {
			// Delivered stays delivered for the day; only the arrival moves.
			local.ArrivalMinute = remote.ArrivalMinute
			local.UpdatedAt = m.now
		} else {
			if err := e.local.dropMarker(ctx, userID); err != nil {
				return false, err
			}
			if tok != nil && !tok.Consumed(m.today) {
				if err := e.local.dropToken(ctx, userID); err != nil {
					return false, err
				}
				tok = nil
			}
			local = &models.TokenSchedule{
				Date:                  m.today,
				UserID:                userID,
				ArrivalMinute:         remote.ArrivalMinute,
				TimezoneOffsetMinutes: m.tzOffsetMinutes(),
				UpdatedAt:             m.now,
			}
			replaced = true
		}
	}

	wasDelivered := local.Delivered
	if remote.Delivered {
		local.Delivered = true
		if tok == nil {
			if remote.TokenUsedDate == m.today {
				usedAt := m.now
				tok = &models.Token{Date: m.today, Available: false, DeliveredAt: m.now, UsedAt: &usedAt}
				e.logger.Infof(providers.TypeSync, "Token of %s already consumed on another device today", userID)
			} else {
				tok = &models.Token{Date: m.today, Available: true, DeliveredAt: m.now}
				e.metrics.IncDeliveries("remote")
				e.logger.Infof(providers.TypeSync, "Token of %s delivered remotely", userID)
			}
			if err := e.local.saveToken(ctx, userID, tok); err != nil {
				return false, err
			}
		}
	}
	if err := e.local.saveSchedule(ctx, local); err != nil {
		return false, err
	}

	ok := true
	if tok.Consumed(m.today) && remote.TokenUsedDate != m.today {
		e.logger.Infof(providers.TypeSync, "Remote misses today's consumption of %s, pushing it", userID)
		ok = e.pushConsumption(ctx, userID, tok, m)
	}

	arrivalAt := m.arrivalAt(local.ArrivalMinute)
	switch {
	case !local.Delivered && arrivalAt.After(m.now):
		ok = e.scheduleArrival(ctx, userID, m, arrivalAt) && ok
	case replaced || (local.Delivered && !wasDelivered):
		ok = e.cancelArrival(ctx, userID) && ok
	}
	return ok, nil
}
