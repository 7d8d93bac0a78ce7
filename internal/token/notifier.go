package token

import (
	"context"
	"fmt"
	"time"
	"tokend/internal/models"
	"tokend/internal/providers"
)

func (e *Engine) notifyContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t := e.conf.Notifications.Timeout; t > 0 {
		return context.WithTimeout(ctx, t)
	}
	return context.WithCancel(ctx)
}

// ScheduleArrival replaces any pending arrival notification for userID with
// one at arrivalAt. Nothing is scheduled for a past instant or when the user
// has arrival notifications turned off.
func (e *Engine) ScheduleArrival(ctx context.Context, userID string, arrivalAt time.Time) error {
	if err := ValidateUser(userID); err != nil {
		return err
	}
	if !e.scheduleArrival(ctx, userID, readClock(e.clock), arrivalAt) {
		return ErrNotificationSchedulingFailed
	}
	return nil
}

func (e *Engine) CancelArrivalNotifications(ctx context.Context, userID string) error {
	if err := ValidateUser(userID); err != nil {
		return err
	}
	if !e.cancelArrival(ctx, userID) {
		return ErrNotificationSchedulingFailed
	}
	return nil
}

// SignOut drops pending arrival notifications so they cannot fire for the
// next user of the device. Stored records stay under the user's keys.
func (e *Engine) SignOut(ctx context.Context, userID string) error {
	if err := e.CancelArrivalNotifications(ctx, userID); err != nil {
		return err
	}
	e.logger.Infof(providers.TypeEngine, "Signed out %s, arrival notifications cancelled", userID)
	return nil
}

// SendArrivedNow shows the arrival notification immediately, at most once per day.
func (e *Engine) SendArrivedNow(ctx context.Context, userID string) error {
	if err := ValidateUser(userID); err != nil {
		return err
	}
	unlock := e.locks.lock(userID)
	defer unlock()

	if !e.sendArrivedNow(ctx, userID, readClock(e.clock)) {
		return ErrNotificationSchedulingFailed
	}
	return nil
}

// RecordArrivalShown is called when a scheduled arrival notification fired on
// the device. It writes today's dedup marker and evaluates, so the delivery
// that follows does not notify a second time.
func (e *Engine) RecordArrivalShown(ctx context.Context, userID string) error {
	if err := ValidateUser(userID); err != nil {
		return err
	}
	unlock := e.locks.lock(userID)
	defer unlock()

	m := readClock(e.clock)
	if err := e.local.saveMarker(ctx, userID, &models.NotificationDedupMarker{Date: m.today, SentAt: m.now}); err != nil {
		return err
	}
	e.logger.Debugf(providers.TypeNotify, "Arrival notification shown for %s on %s", userID, m.today)
	_, err := e.evaluateLocked(ctx, userID, m)
	return err
}

func (e *Engine) cancelArrival(ctx context.Context, userID string) bool {
	nctx, cancel := e.notifyContext(ctx)
	defer cancel()
	if err := e.notifier.CancelAllOfType(nctx, userID, models.NotificationTypeTokenArrived); err != nil {
		e.notificationFailed("cancel", userID, err)
		return false
	}
	e.metrics.IncNotifications("cancel", "ok")
	return true
}

func (e *Engine) arrivalAllowed(ctx context.Context, userID string) (bool, error) {
	prefs, err := e.prefs.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("read preferences: %w", err)
	}
	return prefs.ArrivalAllowed(), nil
}

func (e *Engine) scheduleArrival(ctx context.Context, userID string, m moment, arrivalAt time.Time) bool {
	if !e.cancelArrival(ctx, userID) {
		return false
	}
	if !arrivalAt.After(m.now) {
		return true
	}

	allowed, err := e.arrivalAllowed(ctx, userID)
	if err != nil {
		e.notificationFailed("schedule", userID, err)
		return false
	}
	if !allowed {
		e.logger.Debugf(providers.TypeNotify, "Arrival notifications disabled for %s, not scheduling", userID)
		e.metrics.IncNotifications("schedule", "disabled")
		return true
	}

	nctx, cancel := e.notifyContext(ctx)
	defer cancel()
	id, err := e.notifier.Schedule(nctx, models.NewTokenArrivedNotification(userID), arrivalAt)
	if err != nil {
		e.notificationFailed("schedule", userID, err)
		return false
	}
	e.metrics.IncNotifications("schedule", "ok")
	e.logger.Infof(providers.TypeNotify, "Scheduled arrival notification %s for %s at %s (in %s)",
		id, userID, arrivalAt.Format(time.RFC3339), arrivalAt.Sub(m.now).Round(time.Minute))
	return true
}

func (e *Engine) sendArrivedNow(ctx context.Context, userID string, m moment) bool {
	marker, err := e.local.marker(ctx, userID)
	if err != nil {
		e.notificationFailed("send_now", userID, err)
		return false
	}
	if marker != nil && m.isToday(marker.Date) {
		e.metrics.IncNotifications("send_now", "deduplicated")
		return true
	}
	// A clock or zone anomaly must never wake the user before the window opens.
	if m.now.Hour()*60 < models.ArrivalWindowStart {
		e.logger.Warnf(providers.TypeNotify, "Refusing arrival notification for %s at %s, before window", userID, m.now.Format("15:04"))
		e.metrics.IncNotifications("send_now", "refused")
		return true
	}

	allowed, err := e.arrivalAllowed(ctx, userID)
	if err != nil {
		e.notificationFailed("send_now", userID, err)
		return false
	}
	if !allowed {
		e.metrics.IncNotifications("send_now", "disabled")
		return true
	}

	nctx, cancel := e.notifyContext(ctx)
	defer cancel()
	if err := e.notifier.SendNow(nctx, models.NewTokenArrivedNotification(userID)); err != nil {
		e.notificationFailed("send_now", userID, err)
		return false
	}
	if err := e.local.saveMarker(ctx, userID, &models.NotificationDedupMarker{Date: m.today, SentAt: m.now}); err != nil {
		e.notificationFailed("send_now", userID, err)
		return false
	}
	e.metrics.IncNotifications("send_now", "ok")
	e.logger.Infof(providers.TypeNotify, "Sent arrival notification to %s", userID)
	return true
}

func (e *Engine) notificationFailed(kind, userID string, err error) {
	e.metrics.IncNotifications(kind, "failed")
	e.logger.Warnf(providers.TypeNotify, "%s: %s for %s: %s", ErrNotificationSchedulingFailed, kind, userID, err)
}
