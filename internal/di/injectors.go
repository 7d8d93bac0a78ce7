//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"tokend/internal"
	"tokend/internal/controllers"
	"tokend/internal/notify"
	"tokend/internal/providers"
	"tokend/internal/storage"
	"tokend/internal/structures"
	"tokend/internal/sweep"
	"tokend/internal/token"
	"tokend/internal/token/interfaces"
)

var engineSet = wire.NewSet(
	providers.NewConfigProvider,
	provideLogger,
	providers.NewMetricsProvider,
	providers.NewInstrumentedCacheProvider,
	provideLocalStore,
	provideRemoteStore,
	notify.NewSink,
	provideNotifier,
	providers.NewPreferenceProvider,
	provideClock,
	provideEngine,
	wire.Bind(new(interfaces.LocalStore), new(storage.LocalStoreInterface)),
	wire.Bind(new(interfaces.EngineInterface), new(*token.Engine)),
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		engineSet,
		sweep.NewRegistry,
		wire.Bind(new(sweep.Store), new(storage.LocalStoreInterface)),
		wire.Bind(new(sweep.Evaluator), new(*token.Engine)),
		sweep.NewScheduler,
		wire.Bind(new(controllers.UserTracker), new(*sweep.Registry)),
		wire.Bind(new(controllers.UserLister), new(*sweep.Registry)),
		wire.Bind(new(controllers.PreferenceStore), new(*providers.PreferenceProvider)),
		wire.Bind(new(controllers.PendingLister), new(*notify.Scheduler)),
		controllers.NewApiController,
		controllers.NewAdminController,
		controllers.NewPreferencesController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}

func InitEngine(cfg *structures.CliFlags) (interfaces.EngineInterface, func(), error) {

	wire.Build(engineSet)

	return nil, nil, nil
}
