package token

import (
	"context"
	"errors"
	"fmt"
	"tokend/internal/models"
	"tokend/internal/providers"
	"tokend/internal/token/interfaces"

	json "github.com/goccy/go-json"
)

// localState is the typed view of the engine's keys in the local store.
// Corrupt records are logged, deleted and reported as missing.
type localState struct {
	store  interfaces.LocalStore
	logger providers.Logger
}

func loadRecord[T any](ctx context.Context, l *localState, key string, decode func([]byte) (*T, error)) (*T, error) {
	data, found, err := l.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !found {
		return nil, nil
	}
	rec, err := decode(data)
	if err != nil {
		if errors.Is(err, models.ErrInvalidRecord) {
			l.logger.Warnf(providers.TypeEngine, "%s: discarding %s: %s", ErrInvalidSchedule, key, err)
			if derr := l.store.Delete(ctx, key); derr != nil {
				return nil, fmt.Errorf("delete %s: %w", key, derr)
			}
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func (l *localState) save(ctx context.Context, key string, rec any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := l.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (l *localState) drop(ctx context.Context, key string) error {
	if err := l.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (l *localState) schedule(ctx context.Context, userID string) (*models.TokenSchedule, error) {
	s, err := loadRecord(ctx, l, models.UserKey(userID, models.KeySchedule), models.DecodeSchedule)
	if err != nil || s == nil {
		return nil, err
	}
	if s.UserID != userID {
		l.logger.Warnf(providers.TypeEngine, "schedule under %s belongs to %s, ignoring", userID, s.UserID)
		return nil, nil
	}
	return s, nil
}

func (l *localState) saveSchedule(ctx context.Context, s *models.TokenSchedule) error {
	return l.save(ctx, models.UserKey(s.UserID, models.KeySchedule), s)
}

func (l *localState) token(ctx context.Context, userID string) (*models.Token, error) {
	return loadRecord(ctx, l, models.UserKey(userID, models.KeyToken), models.DecodeToken)
}

func (l *localState) saveToken(ctx context.Context, userID string, t *models.Token) error {
	return l.save(ctx, models.UserKey(userID, models.KeyToken), t)
}

func (l *localState) dropToken(ctx context.Context, userID string) error {
	return l.drop(ctx, models.UserKey(userID, models.KeyToken))
}

func (l *localState) marker(ctx context.Context, userID string) (*models.NotificationDedupMarker, error) {
	return loadRecord(ctx, l, models.UserKey(userID, models.KeyMarker), models.DecodeMarker)
}

func (l *localState) saveMarker(ctx context.Context, userID string, m *models.NotificationDedupMarker) error {
	return l.save(ctx, models.UserKey(userID, models.KeyMarker), m)
}

func (l *localState) dropMarker(ctx context.Context, userID string) error {
	return l.drop(ctx, models.UserKey(userID, models.KeyMarker))
}

func (l *localState) pending(ctx context.Context, userID string) (*models.SyncPending, error) {
	return loadRecord(ctx, l, models.UserKey(userID, models.KeySyncPending), models.DecodeSyncPending)
}

func (l *localState) savePending(ctx context.Context, userID string, p *models.SyncPending) error {
	return l.save(ctx, models.UserKey(userID, models.KeySyncPending), p)
}

func (l *localState) dropPending(ctx context.Context, userID string) error {
	return l.drop(ctx, models.UserKey(userID, models.KeySyncPending))
}
