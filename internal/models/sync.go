package models

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// SyncPending lists the best-effort writes of Date that failed and are
// retried on the next evaluation.
type SyncPending struct {
	Date        string `json:"date"`
	Schedule    bool   `json:"schedule,omitempty"`
	Consumption bool   `json:"consumption,omitempty"`
	Notify      bool   `json:"notify,omitempty"`
}

func (p *SyncPending) Empty() bool {
	return !p.Schedule && !p.Consumption && !p.Notify
}

func DecodeSyncPending(data []byte) (*SyncPending, error) {
	var p SyncPending
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecord, err)
	}
	if !ValidDateKey(p.Date) {
		return nil, fmt.Errorf("%w: sync date %q", ErrInvalidRecord, p.Date)
	}
	return &p, nil
}
