package service

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"restpki-batch/internal/config"
	deliveryhttp "restpki-batch/internal/delivery/http"
	"restpki-batch/internal/infrastructure/database"
	"restpki-batch/internal/infrastructure/document"
	"restpki-batch/internal/infrastructure/httpclient"
	"restpki-batch/internal/infrastructure/logger"
	"restpki-batch/internal/infrastructure/metrics"
	"restpki-batch/internal/infrastructure/redis"
	"restpki-batch/internal/infrastructure/repository"
	"restpki-batch/internal/server"
	"restpki-batch/internal/usecase"
)

// EventLogger routes fx lifecycle events through the application logger
var EventLogger = fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: log.Named("fx")}
})

// Options wires every module of the service
func Options() fx.Option {
	return fx.Options(
		// Configuration
		config.Module,

		// Infrastructure
		logger.Module,
		metrics.Module,
		database.Module,
		redis.Module,
		document.Module,
		httpclient.Module,
		repository.Module,

		// Business Logic
		usecase.Module,

		// Delivery
		deliveryhttp.Module,

		// Server
		server.Module,
	)
}

// Application wraps the fx.App for service management
type Application struct {
	app      *fx.App
	ctx      context.Context
	cancel   context.CancelFunc
	doneChan chan struct{}
}

// NewApplication creates a new Application instance
func NewApplication() *Application {
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		ctx:      ctx,
		cancel:   cancel,
		doneChan: make(chan struct{}),
	}
}

// Run starts the application and blocks until a signal or Shutdown
func (a *Application) Run() error {
	defer close(a.doneChan)

	a.app = fx.New(Options(), EventLogger)

	// Start the application
	if err := a.app.Start(a.ctx); err != nil {
		return err
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		a.Shutdown()
	case <-a.ctx.Done():
		// Context was cancelled
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (a *Application) Shutdown() {
	a.cancel()
	if a.app != nil {
		ctx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
		defer cancel()
		a.app.Stop(ctx)
	}
}

// Wait blocks until the application exits
func (a *Application) Wait() {
	<-a.doneChan
}
