package controllers

import (
	"net/http"
	"tokend/internal/notify"
	"tokend/internal/providers"
	"tokend/internal/token"
	"tokend/internal/token/interfaces"
)

// PendingLister reports the notifications waiting to fire for a user.
type PendingLister interface {
	Pending(userID string) []notify.Pending
}

// AdminController edits the shared remote schedule the way the admin
// console does. Devices pick the change up on their next reconcile.
type AdminController struct {
	logger  providers.Logger
	engine  interfaces.EngineInterface
	pending PendingLister
}

func NewAdminController(logger providers.Logger, engine interfaces.EngineInterface, pending PendingLister) *AdminController {
	return &AdminController{logger: logger, engine: engine, pending: pending}
}

func (ac *AdminController) SetArrival(w http.ResponseWriter, r *http.Request) {
	s, err := ac.engine.SetRemoteArrival(r.Context(), getUser(r), r.URL.Query().Get("time"))
	if err != nil {
		writeError(w, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Pending lists the user's scheduled notifications, soonest first.
func (ac *AdminController) Pending(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)
	if err := token.ValidateUser(user); err != nil {
		writeError(w, ac.logger, err)
		return
	}
	list := ac.pending.Pending(user)
	if list == nil {
		list = []notify.Pending{}
	}
	writeJSON(w, http.StatusOK, list)
}
