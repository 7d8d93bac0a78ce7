package providers

import (
	"context"
	"fmt"
	"tokend/internal/models"
	"tokend/internal/structures"
	"tokend/internal/token/interfaces"

	json "github.com/goccy/go-json"
)

// PreferenceProvider serves per-user notification preferences from the local
// store, falling back to the configured defaults. Reads go through the cache.
type PreferenceProvider struct {
	store    interfaces.LocalStore
	cache    CacheProviderInterface
	logger   Logger
	defaults models.Preferences
}

func NewPreferenceProvider(conf *structures.Config, logger Logger, cache CacheProviderInterface, store interfaces.LocalStore) *PreferenceProvider {
	return &PreferenceProvider{
		store:  store,
		cache:  cache,
		logger: logger,
		defaults: models.Preferences{
			PushEnabled:         conf.Notifications.PushEnabled,
			TokenArrivalEnabled: conf.Notifications.TokenArrivalEnabled,
		},
	}
}

func (p *PreferenceProvider) Get(ctx context.Context, userID string) (models.Preferences, error) {
	key := models.UserKey(userID, models.KeyPreferences)
	if data, ok := p.cache.Get(key); ok {
		if prefs, err := p.decode(data); err == nil {
			return prefs, nil
		}
		p.cache.Del(key)
	}

	data, found, err := p.store.Get(ctx, key)
	if err != nil {
		return p.defaults, fmt.Errorf("read %s: %w", key, err)
	}
	if !found {
		return p.defaults, nil
	}
	prefs, err := p.decode(data)
	if err != nil {
		p.logger.Warnf(TypeNotify, "Bad preferences for %s, using defaults: %s", userID, err)
		return p.defaults, nil
	}
	p.cache.Set(key, data)
	return prefs, nil
}

func (p *PreferenceProvider) Set(ctx context.Context, userID string, prefs models.Preferences) error {
	key := models.UserKey(userID, models.KeyPreferences)
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	p.cache.Del(key)
	p.logger.Infof(TypeNotify, "Preferences of %s updated: push=%t arrival=%t", userID, prefs.PushEnabled, prefs.TokenArrivalEnabled)
	return nil
}

func (p *PreferenceProvider) decode(data []byte) (models.Preferences, error) {
	var prefs models.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return models.Preferences{}, err
	}
	return prefs, nil
}
