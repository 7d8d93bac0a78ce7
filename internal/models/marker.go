package models

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// NotificationDedupMarker records that the arrival notification went out on Date.
type NotificationDedupMarker struct {
	Date   string    `json:"date"`
	SentAt time.Time `json:"sentAt"`
}

func DecodeMarker(data []byte) (*NotificationDedupMarker, error) {
	var m NotificationDedupMarker
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecord, err)
	}
	if !ValidDateKey(m.Date) {
		return nil, fmt.Errorf("%w: marker date %q", ErrInvalidRecord, m.Date)
	}
	return &m, nil
}
