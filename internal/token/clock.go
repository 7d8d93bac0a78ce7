package token

import (
	"time"
	"tokend/internal/models"
	"tokend/internal/token/interfaces"
)

// SystemClock reads wall time in a fixed location.
type SystemClock struct {
	loc *time.Location
}

func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return &SystemClock{loc: loc}
}

func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// moment is one reading of the clock with the derived day values every
// operation needs. Every day-boundary decision goes through it.
type moment struct {
	now    time.Time
	today  string
	minute int
}

func readClock(c interfaces.Clock) moment {
	now := c.Now()
	return moment{
		now:    now,
		today:  models.DateKey(now),
		minute: models.MinuteOfDay(now),
	}
}

// arrivalAt is the wall time of minute m on the moment's day.
func (m moment) arrivalAt(minute int) time.Time {
	return time.Date(m.now.Year(), m.now.Month(), m.now.Day(), minute/60, minute%60, 0, 0, m.now.Location())
}

func (m moment) tzOffsetMinutes() int {
	_, offset := m.now.Zone()
	return offset / 60
}

func (m moment) isToday(date string) bool {
	return date == m.today
}
