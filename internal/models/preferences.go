package models

type Preferences struct {
	PushEnabled         bool `json:"pushEnabled"`
	TokenArrivalEnabled bool `json:"tokenArrivalEnabled"`
}

// ArrivalAllowed reports whether token arrival notifications may be shown.
func (p Preferences) ArrivalAllowed() bool {
	return p.PushEnabled && p.TokenArrivalEnabled
}
