package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CPIReg/internal/usecase"
	"CPIReg/pkg/cache"
	"CPIReg/pkg/config"
	xhttp "CPIReg/pkg/http"
	applogger "CPIReg/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	httpServer *xhttp.Server
	svc        *usecase.RegressionService
	cache      cache.Service
	log        *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	httpServer *xhttp.Server,
	svc *usecase.RegressionService,
	c cache.Service,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:        cfg,
		httpServer: httpServer,
		svc:        svc,
		cache:      c,
		log:        log,
	}
}

// Run starts the HTTP server and blocks until interrupted or the listener fails.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("application started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Bool("live_key_configured", a.cfg.HasAPIKey()),
		applogger.Bool("archive", a.cfg.Archive.Enabled),
		applogger.Bool("events", a.cfg.Events.Enabled),
	)

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case runErr = <-a.httpServer.Errors():
	}

	if err := a.shutdown(context.Background()); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// shutdown stops the server first, then flushes logs and releases clients.
func (a *App) shutdown(ctx context.Context) error {
	a.log.Info("shutting down")

	err := a.httpServer.Stop(ctx)
	if err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// Aggregated logs go out through the event producer, so flush before closing it.
	a.log.RemoveCollector()

	if cerr := a.svc.Close(); cerr != nil {
		a.log.Warn("service close error", applogger.Error(cerr))
	}
	if a.cache != nil {
		if cerr := a.cache.Close(); cerr != nil {
			a.log.Warn("cache close error", applogger.Error(cerr))
		}
	}

	a.log.Info("shutdown complete")
	return err
}
