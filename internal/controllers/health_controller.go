package controllers

import (
	"fmt"
	"net/http"
	"time"
	"tokend/internal/structures"
)

// UserLister reports the users tracked by the sweep.
type UserLister interface {
	Users() []string
}

type HealthController struct {
	users     UserLister
	conf      *structures.Config
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	TrackedUsers  int     `json:"tracked_users"`
	LocalStore    string  `json:"local_store"`
	RemoteSync    bool    `json:"remote_sync"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		TrackedUsers:  len(hc.users.Users()),
		LocalStore:    hc.conf.LocalStore.Driver,
		RemoteSync:    hc.conf.Remote.Enabled,
	})
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(users UserLister, conf *structures.Config) *HealthController {
	return &HealthController{
		users:     users,
		conf:      conf,
		startTime: time.Now(),
	}
}
