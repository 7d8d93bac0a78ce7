package token

import "errors"

var (
	ErrInvalidSchedule              = errors.New("invalid schedule")
	ErrRemoteUnavailable            = errors.New("remote unavailable")
	ErrNoTokenAvailable             = errors.New("no token available")
	ErrStaleScheduleDetected        = errors.New("stale schedule detected")
	ErrNotificationSchedulingFailed = errors.New("notification scheduling failed")
	ErrInvalidUser                  = errors.New("invalid user id")
	ErrOutsideWindow                = errors.New("arrival outside delivery window")
)
