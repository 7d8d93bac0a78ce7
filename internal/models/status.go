package models

// TokenStatus is what the host sees after every evaluation.
type TokenStatus struct {
	HasToken         bool   `json:"hasToken"`
	Delivered        bool   `json:"delivered"`
	ArrivalMinute    int    `json:"arrivalMinute"`
	ArrivalTimeLabel string `json:"arrivalTimeLabel"`
	WillArriveToday  bool   `json:"willArriveToday"`
	Unlimited        bool   `json:"unlimited,omitempty"`
	// Degraded is set when a remote or notification call failed and the
	// result reflects local state only.
	Degraded bool `json:"degraded,omitempty"`
}

type Countdown struct {
	Hours            int    `json:"hours"`
	Minutes          int    `json:"minutes"`
	Label            string `json:"label"`
	ArrivalTimeLabel string `json:"arrivalTimeLabel"`
}

type ConsumeResult struct {
	Unlimited bool `json:"unlimited,omitempty"`
	Degraded  bool `json:"degraded,omitempty"`
}
