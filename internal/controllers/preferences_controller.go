package controllers

import (
	"context"
	"net/http"
	"tokend/internal/models"
	"tokend/internal/providers"
	"tokend/internal/token"

	json "github.com/goccy/go-json"
)

type PreferenceStore interface {
	Get(ctx context.Context, userID string) (models.Preferences, error)
	Set(ctx context.Context, userID string, prefs models.Preferences) error
}

type PreferencesController struct {
	logger providers.Logger
	prefs  PreferenceStore
}

func NewPreferencesController(logger providers.Logger, prefs PreferenceStore) *PreferencesController {
	return &PreferencesController{logger: logger, prefs: prefs}
}

func (pc *PreferencesController) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := pc.user(w, r)
	if !ok {
		return
	}
	prefs, err := pc.prefs.Get(r.Context(), user)
	if err != nil {
		writeError(w, pc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (pc *PreferencesController) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := pc.user(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.Preferences
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := pc.prefs.Set(r.Context(), user, payload); err != nil {
		writeError(w, pc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (pc *PreferencesController) user(w http.ResponseWriter, r *http.Request) (string, bool) {
	user := getUser(r)
	if err := token.ValidateUser(user); err != nil {
		writeError(w, pc.logger, err)
		return "", false
	}
	return user, true
}
