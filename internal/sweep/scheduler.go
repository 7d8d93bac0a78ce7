package sweep

import (
	"context"
	"sync"
	"time"
	"tokend/internal/models"
	"tokend/internal/providers"
	"tokend/internal/structures"
	"tokend/internal/sweep/interfaces"

	"github.com/roylee0704/gron"
)

// Evaluator is the part of the engine the sweep drives.
type Evaluator interface {
	EvaluateStatus(ctx context.Context, userID string) (*models.TokenStatus, error)
}

// Scheduler is the periodic trigger: it evaluates every tracked user each
// evaluate interval and persists the registry each save interval.
type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	engine   Evaluator
	registry *Registry
	cron     *gron.Cron
	opsMu    sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Engine.EvaluateInterval), s.Sweep)
	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		if err := s.Persist(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting registry: %s", err)
		}
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep evaluates every tracked user once.
func (s *Scheduler) Sweep() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	users := s.registry.Users()
	s.metrics.SetTrackedUsers(len(users))

	ctx := context.Background()
	delivered := 0
	for _, u := range users {
		st, err := s.engine.EvaluateStatus(ctx, u)
		if err != nil {
			s.logger.Errorf(providers.TypeEngine, "Sweep evaluation of %s failed: %s", u, err)
			continue
		}
		if st.HasToken {
			delivered++
		}
	}
	s.logger.Debugf(providers.TypeEngine, "Swept %d users, %d holding a token", len(users), delivered)
}

func (s *Scheduler) Restore() error {
	if err := s.registry.Load(context.Background()); err != nil {
		return err
	}
	s.logger.Infof(providers.TypeApp, "Restored %d tracked users", len(s.registry.Users()))
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	saved, err := s.registry.Save(context.Background())
	if err != nil {
		return err
	}
	if saved {
		s.metrics.ObservePersistenceDuration(time.Since(start))
		s.logger.Infof(providers.TypeApp, "Persisted tracked users")
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, engine Evaluator, registry *Registry) interfaces.SchedulerInterface {
	return &Scheduler{
		config:   config,
		logger:   logger,
		metrics:  metrics,
		engine:   engine,
		registry: registry,
	}
}
