package models

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// Token is the daily posting token. It exists only after delivery.
type Token struct {
	Date        string     `json:"date"`
	Available   bool       `json:"available"`
	DeliveredAt time.Time  `json:"deliveredAt"`
	UsedAt      *time.Time `json:"usedAt,omitempty"`
}

func (t *Token) Validate() error {
	if !ValidDateKey(t.Date) {
		return fmt.Errorf("%w: token date %q", ErrInvalidRecord, t.Date)
	}
	if t.Available && t.UsedAt != nil {
		return fmt.Errorf("%w: token both available and used", ErrInvalidRecord)
	}
	if !t.Available && t.UsedAt == nil {
		return fmt.Errorf("%w: unavailable token without usedAt", ErrInvalidRecord)
	}
	return nil
}

// Consumed reports whether the token was used on day.
func (t *Token) Consumed(day string) bool {
	return t != nil && t.Date == day && !t.Available
}

func DecodeToken(data []byte) (*Token, error) {
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecord, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
