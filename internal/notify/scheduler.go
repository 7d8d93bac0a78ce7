package notify

import (
	"context"
	"sort"
	"sync"
	"time"
	"tokend/internal/models"
	"tokend/internal/providers"
	"tokend/internal/structures"

	"github.com/google/uuid"
)

// FiredHook is called after a scheduled notification was delivered.
type FiredHook func(ctx context.Context, n models.Notification)

type pending struct {
	n     models.Notification
	at    time.Time
	timer *time.Timer
}

// Pending describes a notification waiting for its time.
type Pending struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

// Scheduler keeps scheduled notifications as in-process timers and hands
// them to a Sink when they fire.
type Scheduler struct {
	mu      sync.Mutex
	pending map[string]*pending
	sink    Sink
	logger  providers.Logger
	timeout time.Duration
	onFired FiredHook
	now     func() time.Time
}

func NewScheduler(conf *structures.Config, logger providers.Logger, sink Sink) *Scheduler {
	return &Scheduler{
		pending: make(map[string]*pending),
		sink:    sink,
		logger:  logger,
		timeout: conf.Notifications.Timeout,
		now:     time.Now,
	}
}

// OnFired registers the hook run after each scheduled delivery.
func (s *Scheduler) OnFired(hook FiredHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFired = hook
}

func (s *Scheduler) Schedule(_ context.Context, n models.Notification, at time.Time) (string, error) {
	n.ID = uuid.NewString()
	delay := at.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := &pending{n: n, at: at}
	p.timer = time.AfterFunc(delay, func() { s.fire(n.ID) })
	s.pending[n.ID] = p

	s.logger.Debugf(providers.TypeNotify, "Scheduled %s %s for %s in %s", n.Type, n.ID, n.UserID, delay.Round(time.Second))
	return n.ID, nil
}

func (s *Scheduler) CancelAllOfType(_ context.Context, userID, notificationType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.pending {
		if p.n.UserID == userID && p.n.Type == notificationType {
			p.timer.Stop()
			delete(s.pending, id)
			s.logger.Debugf(providers.TypeNotify, "Cancelled %s %s for %s", p.n.Type, id, userID)
		}
	}
	return nil
}

func (s *Scheduler) SendNow(ctx context.Context, n models.Notification) error {
	n.ID = uuid.NewString()
	return s.sink.Deliver(ctx, n)
}

// Pending lists the notifications waiting for userID, soonest first.
func (s *Scheduler) Pending(userID string) []Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Pending
	for id, p := range s.pending {
		if p.n.UserID == userID {
			out = append(out, Pending{ID: id, Type: p.n.Type, UserID: p.n.UserID, At: p.at})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// Stop drops every pending notification.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
}

func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	hook := s.onFired
	s.mu.Unlock()
	if !ok {
		return
	}

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.sink.Deliver(ctx, p.n); err != nil {
		s.logger.Warnf(providers.TypeNotify, "Delivering %s %s to %s failed: %s", p.n.Type, id, p.n.UserID, err)
		return
	}
	if hook != nil {
		hook(ctx, p.n)
	}
}
