package testutil

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"tokend/internal/models"
)

var ErrInjected = errors.New("injected failure")

// MemoryLocalStore is an in-memory interfaces.LocalStore.
type MemoryLocalStore struct {
	mu      sync.Mutex
	Data    map[string][]byte
	FailSet bool
}

func NewMemoryLocalStore() *MemoryLocalStore {
	return &MemoryLocalStore{Data: make(map[string][]byte)}
}

func (s *MemoryLocalStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.Data[key]
	return v, ok, nil
}

func (s *MemoryLocalStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSet {
		return ErrInjected
	}
	s.Data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryLocalStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Data, key)
	return nil
}

func (s *MemoryLocalStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.Data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *MemoryLocalStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Data[key]
	return ok
}

// MemoryRemoteStore is an in-memory interfaces.RemoteStore with merge
// semantics and switchable failures.
type MemoryRemoteStore struct {
	mu         sync.Mutex
	Docs       map[string]models.UserDoc
	FailGet    bool
	FailMerge  bool
	MergeCalls int
}

func NewMemoryRemoteStore() *MemoryRemoteStore {
	return &MemoryRemoteStore{Docs: make(map[string]models.UserDoc)}
}

func (s *MemoryRemoteStore) GetUserDoc(_ context.Context, userID string) (models.UserDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailGet {
		return nil, ErrInjected
	}
	return maps.Clone(s.Docs[userID]), nil
}

func (s *MemoryRemoteStore) MergeUserDoc(_ context.Context, userID string, fields models.UserDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MergeCalls++
	if s.FailMerge {
		return ErrInjected
	}
	doc, ok := s.Docs[userID]
	if !ok {
		doc = make(models.UserDoc)
		s.Docs[userID] = doc
	}
	for k, v := range fields {
		doc[k] = append([]byte(nil), v...)
	}
	return nil
}

// Field returns the raw JSON of one document field.
func (s *MemoryRemoteStore) Field(userID, field string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.Docs[userID][field])
}

// PutField writes a raw JSON field as another device or an admin would.
func (s *MemoryRemoteStore) PutField(userID, field, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.Docs[userID]
	if !ok {
		doc = make(models.UserDoc)
		s.Docs[userID] = doc
	}
	doc[field] = []byte(raw)
}

type ScheduledCall struct {
	Notification models.Notification
	At           time.Time
}

// RecordingNotifier is an interfaces.NotificationScheduler that records calls.
type RecordingNotifier struct {
	mu        sync.Mutex
	Scheduled []ScheduledCall
	Cancels   int
	Sent      []models.Notification
	FailAll   bool
	seq       int
}

func (n *RecordingNotifier) Schedule(_ context.Context, notif models.Notification, at time.Time) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailAll {
		return "", ErrInjected
	}
	n.seq++
	n.Scheduled = append(n.Scheduled, ScheduledCall{Notification: notif, At: at})
	return "n-" + strconv.Itoa(n.seq), nil
}

func (n *RecordingNotifier) CancelAllOfType(_ context.Context, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailAll {
		return ErrInjected
	}
	n.Cancels++
	return nil
}

func (n *RecordingNotifier) SendNow(_ context.Context, notif models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailAll {
		return ErrInjected
	}
	n.Sent = append(n.Sent, notif)
	return nil
}

func (n *RecordingNotifier) SentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Sent)
}

func (n *RecordingNotifier) ScheduledCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Scheduled)
}

func (n *RecordingNotifier) CancelCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Cancels
}

func (n *RecordingNotifier) SetFail(fail bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.FailAll = fail
}

// FakePrefs is an interfaces.PreferenceSource returning the same preferences
// for every user.
type FakePrefs struct {
	Prefs models.Preferences
	Err   error
}

func AllowAllPrefs() *FakePrefs {
	return &FakePrefs{Prefs: models.Preferences{PushEnabled: true, TokenArrivalEnabled: true}}
}

func (p *FakePrefs) Get(_ context.Context, _ string) (models.Preferences, error) {
	return p.Prefs, p.Err
}

// FakeClock is a settable interfaces.Clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
