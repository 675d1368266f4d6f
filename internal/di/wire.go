//go:build wireinject
// +build wireinject

package di

import (
	"CPIReg/internal/usecase"
	"CPIReg/pkg/config"
	"CPIReg/pkg/server"

	"github.com/google/wire"
)

var serviceSet = wire.NewSet(
	// Ambient
	ProvideLogger,
	ProvideMetrics,

	// Index provider
	ProvideHTTPClient,
	ProvideIndexProvider,

	// Storage, archive and events
	ProvideCache,
	ProvideReportStore,
	ProvideClickHouseClient,
	ProvideRunArchive,
	ProvideKafkaProducer,
	ProvideEventPublisher,

	// Use cases
	ProvidePipelineConfig,
	ProvidePipeline,
	usecase.NewRegressionService,
)

// InitializeApp wires up the web application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		serviceSet,
		ProvideLimiter,
		ProvideWebHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeRegressor wires up the one-shot command.
func InitializeRegressor(cfg *config.Config) (*Regressor, error) {
	wire.Build(
		serviceSet,
		ProvideRegressor,
	)
	return &Regressor{}, nil
}
