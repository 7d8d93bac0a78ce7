package models

const NotificationTypeTokenArrived = "token_arrived"

type Notification struct {
	ID     string            `json:"id"`
	Type   string            `json:"type"`
	UserID string            `json:"userId"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

func NewTokenArrivedNotification(userID string) Notification {
	return Notification{
		Type:   NotificationTypeTokenArrived,
		UserID: userID,
		Title:  "Your Token Has Arrived",
		Body:   "Time to share something with the world! Head to the Hub and post something meaningful.",
		Data:   map[string]string{"type": NotificationTypeTokenArrived},
	}
}
