package service

import (
	"context"
	"os"

	"go.uber.org/fx"

	"knot-api/internal/config"
	deliveryhttp "knot-api/internal/delivery/http"
	"knot-api/internal/infrastructure/logger"
	"knot-api/internal/server"
	"knot-api/internal/usecase"
)

// Options assembles the relay's dependency graph.
func Options(extra ...fx.Option) fx.Option {
	return fx.Options(
		logger.WithFxLogger,

		// Configuration
		config.Module,

		// Infrastructure
		logger.Module,

		// Business Logic
		usecase.Module,

		// Delivery
		deliveryhttp.Module,

		// Server
		server.Module,

		fx.Options(extra...),
	)
}

// Application wraps the fx.App for process management
type Application struct {
	app    *fx.App
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApplication creates a new Application instance
func NewApplication() *Application {
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run starts the relay and blocks until SIGINT, SIGTERM, a fatal server
// error or Shutdown. It returns the process exit code.
func (a *Application) Run() int {
	a.app = fx.New(Options())
	if err := a.app.Err(); err != nil {
		return 1
	}

	startCtx, cancel := context.WithTimeout(a.ctx, a.app.StartTimeout())
	defer cancel()
	if err := a.app.Start(startCtx); err != nil {
		return 1
	}

	exitCode := 0
	select {
	case signal := <-a.app.Wait():
		exitCode = signal.ExitCode
	case <-a.ctx.Done():
	}

	if err := a.stop(); err != nil && exitCode == 0 {
		exitCode = 1
	}
	return exitCode
}

// Shutdown asks a running application to stop
func (a *Application) Shutdown() {
	a.cancel()
}

func (a *Application) stop() error {
	a.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), a.app.StopTimeout())
	defer cancel()
	return a.app.Stop(ctx)
}

// Main runs the application and exits the process with its code.
func Main() {
	os.Exit(NewApplication().Run())
}
