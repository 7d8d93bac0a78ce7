package di

import (
	"context"
	"tokend/internal/models"
	"tokend/internal/notify"
	"tokend/internal/providers"
	"tokend/internal/storage"
	"tokend/internal/structures"
	"tokend/internal/token"
	"tokend/internal/token/interfaces"
)

func provideLogger(conf *structures.Config) (providers.Logger, func(), error) {
	logger, err := providers.NewLogProvider(conf)
	if err != nil {
		return nil, nil, err
	}
	return logger, logger.Close, nil
}

func provideLocalStore(conf *structures.Config, logger providers.Logger) (storage.LocalStoreInterface, func(), error) {
	store, err := storage.NewLocalStore(conf, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Errorf(providers.TypeApp, "Close local store: %s", err)
		}
	}, nil
}

func provideRemoteStore(conf *structures.Config, logger providers.Logger) (storage.RemoteStoreInterface, func(), error) {
	store, err := storage.NewRemoteStore(conf, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if store == nil {
			return
		}
		if err := store.Close(); err != nil {
			logger.Errorf(providers.TypeApp, "Close remote store: %s", err)
		}
	}, nil
}

func provideNotifier(conf *structures.Config, logger providers.Logger, sink notify.Sink) (*notify.Scheduler, func()) {
	n := notify.NewScheduler(conf, logger, sink)
	return n, n.Stop
}

func provideClock(conf *structures.Config) *token.SystemClock {
	return token.NewSystemClock(conf.Location())
}

// provideEngine builds the engine and routes fired arrival notifications back
// into it so the dedup marker is recorded.
func provideEngine(
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	local storage.LocalStoreInterface,
	remote storage.RemoteStoreInterface,
	notifier *notify.Scheduler,
	prefs *providers.PreferenceProvider,
	clock *token.SystemClock,
) *token.Engine {
	var r interfaces.RemoteStore
	if remote != nil {
		r = remote
	}
	engine := token.NewEngine(conf, logger, metrics, local, r, notifier, prefs, clock)
	notifier.OnFired(func(ctx context.Context, n models.Notification) {
		if n.Type != models.NotificationTypeTokenArrived {
			return
		}
		if err := engine.RecordArrivalShown(ctx, n.UserID); err != nil {
			logger.Warnf(providers.TypeNotify, "Record arrival for %s: %s", n.UserID, err)
		}
	})
	return engine
}
