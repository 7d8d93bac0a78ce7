package models

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

var ErrInvalidRecord = errors.New("invalid record")

// TokenSchedule is the per-user, per-day plan for when the token arrives.
type TokenSchedule struct {
	Date                  string    `json:"date"`
	UserID                string    `json:"userId"`
	ArrivalMinute         int       `json:"arrivalMinute"`
	Delivered             bool      `json:"delivered"`
	TimezoneOffsetMinutes int       `json:"timezoneOffsetMinutes"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func (s *TokenSchedule) Validate() error {
	if !ValidDateKey(s.Date) {
		return fmt.Errorf("%w: schedule date %q", ErrInvalidRecord, s.Date)
	}
	if s.UserID == "" {
		return fmt.Errorf("%w: schedule without user", ErrInvalidRecord)
	}
	if !ValidArrivalMinute(s.ArrivalMinute) {
		return fmt.Errorf("%w: arrival minute %d outside [%d,%d)", ErrInvalidRecord, s.ArrivalMinute, ArrivalWindowStart, ArrivalWindowEnd)
	}
	return nil
}

func (s *TokenSchedule) ArrivalLabel() string {
	return ArrivalLabel(s.ArrivalMinute)
}

func DecodeSchedule(data []byte) (*TokenSchedule, error) {
	var s TokenSchedule
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecord, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
