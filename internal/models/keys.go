package models

// Local store key names. Every key is scoped to one user with UserKey.
const (
	KeySchedule    = "hub_token_schedule"
	KeyToken       = "hub_posting_token"
	KeyMarker      = "hub_token_notification_sent"
	KeySyncPending = "hub_token_sync_pending"
	KeyPreferences = "notificationPreferences"
)

// UserKey scopes a local store key to one user.
func UserKey(userID, name string) string {
	return "u:" + userID + ":" + name
}
