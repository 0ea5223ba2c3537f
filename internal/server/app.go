// Package server initializes and runs the agentdesk HTTP service and its
// optional gRPC health endpoint.
// It builds the dependency graph, serves the API and shuts down gracefully
// on SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/agentdesk/internal/logging"
	"github.com/dmitrijs2005/agentdesk/internal/server/bootstrap"
	"github.com/dmitrijs2005/agentdesk/internal/server/config"
	"github.com/dmitrijs2005/agentdesk/internal/server/grpc"
	"github.com/dmitrijs2005/agentdesk/internal/server/httpapi"
)

type App struct {
	config *config.Config
	logger logging.Logger
	deps   *bootstrap.Deps
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(c.LogLevel))

	deps, err := bootstrap.New(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	return &App{config: c, logger: logger, deps: deps}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) httpServer() *httpapi.Server {
	d := app.deps
	return httpapi.NewServer(app.config.HTTPAddr, httpapi.Services{
		Auth:          d.Auth,
		Conversations: d.Conversations,
		Email:         d.Email,
		Planner:       d.Planner,
		Research:      d.Research,
		Export:        d.Export,
	}, d.Metrics, app.logger, app.config.SecretKey, app.config.AccessTokenValidityDuration, app.config.RecentLimit)
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer().Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := grpc.NewHealthServer(app.config.GRPCAddr, app.deps.Repos, grpc.DefaultProbeInterval, app.logger)
	if err := srv.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a shutdown signal arrives or the server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.deps.Close(context.Background()); err != nil {
		app.logger.Error(ctx, "closing store failed", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
