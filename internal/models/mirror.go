package models

import "time"

// Field names of the shared per-user remote document. Writes touch only these
// fields; sibling fields belong to other parts of the host app.
const (
	RemoteFieldSchedule      = "tokenSchedule"
	RemoteFieldTokenUsedDate = "tokenUsedDate"
	RemoteFieldLastTokenUsed = "lastTokenUsed"
)

// RemoteScheduleMirror is the cross-device copy of today's schedule plus the
// last day on which a token was consumed on any device.
type RemoteScheduleMirror struct {
	TokenSchedule
	TokenUsedDate string     `json:"tokenUsedDate,omitempty"`
	LastTokenUsed *time.Time `json:"lastTokenUsed,omitempty"`
}

// UserDoc is a raw view of the remote user document: field name to JSON value.
type UserDoc map[string][]byte
