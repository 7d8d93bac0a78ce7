package interfaces

import (
	"context"
	"time"
	"tokend/internal/models"
)

// LocalStore is durable per-device key-value storage. Get returns found=false
// for a missing key.
type LocalStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// RemoteStore is the cloud document store. MergeUserDoc only touches the given
// fields and never replaces the whole document.
type RemoteStore interface {
	GetUserDoc(ctx context.Context, userID string) (models.UserDoc, error)
	MergeUserDoc(ctx context.Context, userID string, fields models.UserDoc) error
}

type NotificationScheduler interface {
	Schedule(ctx context.Context, n models.Notification, at time.Time) (string, error)
	CancelAllOfType(ctx context.Context, userID, notificationType string) error
	SendNow(ctx context.Context, n models.Notification) error
}

type PreferenceSource interface {
	Get(ctx context.Context, userID string) (models.Preferences, error)
}

type Clock interface {
	Now() time.Time
}

// EngineInterface is the surface the host application talks to.
type EngineInterface interface {
	EvaluateStatus(ctx context.Context, userID string) (*models.TokenStatus, error)
	ConsumeToken(ctx context.Context, userID string) (*models.ConsumeResult, error)
	ReconcileWithRemote(ctx context.Context, userID string) (*models.TokenStatus, error)
	TimeUntilArrival(ctx context.Context, userID string) (*models.Countdown, error)
	EnsureSchedule(ctx context.Context, userID string) (*models.TokenSchedule, error)
	ScheduleArrival(ctx context.Context, userID string, arrivalAt time.Time) error
	CancelArrivalNotifications(ctx context.Context, userID string) error
	SendArrivedNow(ctx context.Context, userID string) error
	RecordArrivalShown(ctx context.Context, userID string) error
	SetRemoteArrival(ctx context.Context, userID, clock string) (*models.TokenSchedule, error)
	SignOut(ctx context.Context, userID string) error
}
