package controllers

import (
	"errors"
	"net/http"
	"tokend/internal/models"
	"tokend/internal/providers"
	"tokend/internal/token"
	"tokend/internal/token/interfaces"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 16

// UserTracker records which users the periodic sweep should evaluate.
type UserTracker interface {
	Track(userID string)
	Forget(userID string)
}

type ApiController struct {
	logger  providers.Logger
	engine  interfaces.EngineInterface
	tracker UserTracker
}

func NewApiController(logger providers.Logger, engine interfaces.EngineInterface, tracker UserTracker) *ApiController {
	return &ApiController{
		logger:  logger,
		engine:  engine,
		tracker: tracker,
	}
}

func getUser(r *http.Request) string {
	return r.URL.Query().Get("user")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, logger providers.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, token.ErrInvalidUser), errors.Is(err, token.ErrOutsideWindow), errors.Is(err, models.ErrInvalidClock):
		status = http.StatusBadRequest
	case errors.Is(err, token.ErrNoTokenAvailable):
		status = http.StatusConflict
	case errors.Is(err, token.ErrRemoteUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, token.ErrNotificationSchedulingFailed):
		status = http.StatusBadGateway
	default:
		logger.Errorf(providers.TypeApp, "Request failed: %s", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (ac *ApiController) GetStatus(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)
	st, err := ac.engine.EvaluateStatus(r.Context(), user)
	if err != nil {
		writeError(w, ac.logger, err)
		return
	}
	ac.tracker.Track(user)
	writeJSON(w, http.StatusOK, st)
}

func (ac *ApiController) Consume(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)
	res, err := ac.engine.ConsumeToken(r.Context(), user)
	if err != nil {
		writeError(w, ac.logger, err)
		return
	}
	ac.tracker.Track(user)
	writeJSON(w, http.StatusOK, res)
}

func (ac *ApiController) Reconcile(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)
	st, err := ac.engine.ReconcileWithRemote(r.Context(), user)
	if err != nil {
		writeError(w, ac.logger, err)
		return
	}
	ac.tracker.Track(user)
	writeJSON(w, http.StatusOK, st)
}

// GetCountdown answers 204 when there is nothing left to wait for today.
func (ac *ApiController) GetCountdown(w http.ResponseWriter, r *http.Request) {
	cd, err := ac.engine.TimeUntilArrival(r.Context(), getUser(r))
	if err != nil {
		writeError(w, ac.logger, err)
		return
	}
	if cd == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, cd)
}

func (ac *ApiController) SignOut(w http.ResponseWriter, r *http.Request) {
	user := getUser(r)
	if err := ac.engine.SignOut(r.Context(), user); err != nil {
		writeError(w, ac.logger, err)
		return
	}
	ac.tracker.Forget(user)
	w.WriteHeader(http.StatusNoContent)
}
