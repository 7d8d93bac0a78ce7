package token

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"tokend/internal/providers"
	"tokend/internal/structures"
	"tokend/internal/token/interfaces"
)

// Engine owns the daily token lifecycle of every user on this device. All of
// its state lives behind the local and remote stores; the engine itself only
// holds per-user locks.
type Engine struct {
	local     *localState
	mirror    *mirror
	notifier  interfaces.NotificationScheduler
	prefs     interfaces.PreferenceSource
	clock     interfaces.Clock
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	conf      *structures.Config
	rnd       func(n int) int
	unlimited map[string]struct{}
	locks     *userLocks
}

// NewEngine wires the engine. remote may be nil when cross-device sync is disabled.
func NewEngine(
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	local interfaces.LocalStore,
	remote interfaces.RemoteStore,
	notifier interfaces.NotificationScheduler,
	prefs interfaces.PreferenceSource,
	clock interfaces.Clock,
) *Engine {
	e := &Engine{
		local:     &localState{store: local, logger: logger},
		notifier:  notifier,
		prefs:     prefs,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		conf:      conf,
		rnd:       rand.IntN,
		unlimited: make(map[string]struct{}, len(conf.Engine.UnlimitedUsers)),
		locks:     &userLocks{locks: make(map[string]*userLock)},
	}
	if remote != nil {
		e.mirror = &mirror{store: remote, timeout: conf.Remote.Timeout}
	}
	for _, u := range conf.Engine.UnlimitedUsers {
		if name := strings.ToLower(strings.TrimSpace(u)); name != "" {
			e.unlimited[name] = struct{}{}
		}
	}
	return e
}

var _ interfaces.EngineInterface = (*Engine)(nil)

// isUnlimited matches a configured name exactly or as a prefix followed by
// a space or an underscore, ignoring case.
func (e *Engine) isUnlimited(userID string) bool {
	id := strings.ToLower(strings.TrimSpace(userID))
	if _, ok := e.unlimited[id]; ok {
		return true
	}
	for name := range e.unlimited {
		if strings.HasPrefix(id, name+" ") || strings.HasPrefix(id, name+"_") {
			return true
		}
	}
	return false
}

// ValidateUser rejects ids that are empty or would break out of a scoped key.
func ValidateUser(userID string) error {
	if strings.TrimSpace(userID) == "" || strings.ContainsAny(userID, ": \t\n") {
		return fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	return nil
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// userLocks serialises read-check-write sequences per user so overlapping
// triggers (foreground + timer) behave like sequential calls.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
