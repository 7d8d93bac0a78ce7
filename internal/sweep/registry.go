package sweep

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"tokend/internal/models"
	"tokend/internal/token/interfaces"

	json "github.com/goccy/go-json"
)

// RegistryKey is the local store key holding the tracked user list.
const RegistryKey = "tokend:tracked_users"

// Store is a local store whose keys can be listed.
type Store interface {
	interfaces.LocalStore
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Registry is the set of users the sweep evaluates. It is filled by API
// traffic and persisted to the local store.
type Registry struct {
	mu    sync.RWMutex
	users map[string]struct{}
	dirty bool
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{users: make(map[string]struct{}), store: store}
}

func (r *Registry) Track(userID string) {
	r.mu.RLock()
	_, ok := r.users[userID]
	r.mu.RUnlock()
	if ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		r.users[userID] = struct{}{}
		r.dirty = true
	}
}

func (r *Registry) Forget(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; ok {
		delete(r.users, userID)
		r.dirty = true
	}
}

// Users returns the tracked users, sorted.
func (r *Registry) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.users))
	for u := range r.users {
		out = append(out, u)
	}
	slices.Sort(out)
	return out
}

// Load restores the saved user list and adds every user that has a schedule
// in the local store, so users survive a lost or stale registry record.
func (r *Registry) Load(ctx context.Context) error {
	var users []string
	data, found, err := r.store.Get(ctx, RegistryKey)
	if err != nil {
		return err
	}
	if found {
		if err := json.Unmarshal(data, &users); err != nil {
			return fmt.Errorf("parse %s: %w", RegistryKey, err)
		}
	}
	keys, err := r.store.Keys(ctx, "u:")
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range users {
		r.users[u] = struct{}{}
	}
	for _, key := range keys {
		user, name, ok := strings.Cut(strings.TrimPrefix(key, "u:"), ":")
		if !ok || name != models.KeySchedule {
			continue
		}
		if _, known := r.users[user]; !known {
			r.users[user] = struct{}{}
			r.dirty = true
		}
	}
	return nil
}

// Save writes the registry if it changed since the last save.
func (r *Registry) Save(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.dirty {
		return false, nil
	}
	users := make([]string, 0, len(r.users))
	for u := range r.users {
		users = append(users, u)
	}
	slices.Sort(users)
	data, err := json.Marshal(users)
	if err != nil {
		return false, err
	}
	if err := r.store.Set(ctx, RegistryKey, data); err != nil {
		return false, err
	}
	r.dirty = false
	return true, nil
}
