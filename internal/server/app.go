// Package server wires storage, the authorization engine and both transports
// together and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/enigma/internal/logging"
	"github.com/dmitrijs2005/enigma/internal/server/backup"
	"github.com/dmitrijs2005/enigma/internal/server/config"
	"github.com/dmitrijs2005/enigma/internal/server/httpapi"
	"github.com/dmitrijs2005/enigma/internal/server/metrics"
	"github.com/dmitrijs2005/enigma/internal/server/services"
	"github.com/dmitrijs2005/enigma/internal/server/storage"
	"github.com/dmitrijs2005/enigma/internal/server/sweeper"

	gs "github.com/dmitrijs2005/enigma/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	metrics    *metrics.Prometheus
	authorizer *services.Authorizer
	exporter   *backup.Exporter
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, rm, err := storage.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := metrics.NewPrometheus()
	a := services.NewAuthorizer(db, rm, logger, services.WithRecorder(m))

	app := &App{config: c, logger: logger, db: db, metrics: m, authorizer: a}

	if c.S3Bucket != "" {
		app.exporter = backup.NewExporter(a, backup.Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
		}, logger)
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	// A nil *backup.Exporter must not reach the server as a non-nil interface.
	var exp interface {
		Export(ctx context.Context) (*backup.Result, error)
	}
	if app.exporter != nil {
		exp = app.exporter
	}

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authorizer, exp, app.metrics,
		app.config.SecretKey, app.config.AdminTokenValidityDuration)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.authorizer, app.metrics, app.metrics.Handler())

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or a transport fails, then waits for
// every component to stop and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		sweeper.New(app.authorizer, app.config.SweepInterval, app.logger).Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
