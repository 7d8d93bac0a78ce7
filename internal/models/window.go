package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// ArrivalWindowStart is 06:00 in minutes since midnight.
	ArrivalWindowStart = 6 * 60
	// ArrivalWindowEnd is 18:00, exclusive.
	ArrivalWindowEnd = 18 * 60

	DateLayout = "2006-01-02"
)

var ErrInvalidClock = errors.New("invalid clock time")

// ValidArrivalMinute reports whether m lies in [ArrivalWindowStart, ArrivalWindowEnd).
func ValidArrivalMinute(m int) bool {
	return m >= ArrivalWindowStart && m < ArrivalWindowEnd
}

// DateKey returns the calendar date of t in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

func ValidDateKey(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// MinuteOfDay returns minutes since local midnight of t.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ArrivalLabel renders minutes since midnight as "h:mm AM".
func ArrivalLabel(m int) string {
	hours := m / 60
	mins := m % 60
	period := "AM"
	if hours >= 12 {
		period = "PM"
	}
	display := hours
	switch {
	case hours > 12:
		display = hours - 12
	case hours == 0:
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, mins, period)
}

// ParseClock parses a 24h "HH:MM" string into minutes since midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return h*60 + m, nil
}

// CountdownLabel renders a remaining duration as "2h 5m" or "5m".
func CountdownLabel(hours, minutes int) string {
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
